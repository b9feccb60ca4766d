package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/converter"
	"github.com/gnana997/tsxify/pkg/diagnostics"
	"github.com/gnana997/tsxify/pkg/util"
)

// Orchestrator converts batches of units with bounded parallelism.
//
// Thread Safety: safe for concurrent use; each ConvertAll call keeps its
// own results and shares only the converter.
type Orchestrator struct {
	converter *converter.Converter
	limit     int
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator over conv. A limit of zero
// derives the parallelism from the CPU count. Logger can be nil.
func NewOrchestrator(conv *converter.Converter, limit int, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		converter: conv,
		limit:     util.GetOptimalPoolSizeWithOverride(limit),
		logger:    logger,
	}
}

// outcome is the per-unit slot filled by a worker.
type outcome struct {
	result    *converter.Result
	err       error
	cancelled bool
}

// ConvertAll converts units in parallel and merges the results in input
// order. A unit that fails to parse is reported in Failed and does not
// affect the others.
//
// When ctx is cancelled, units that have not started are reported in
// Failed with a cancelled diagnostic, and ctx's error is returned together
// with the partial result.
func (o *Orchestrator) ConvertAll(ctx context.Context, units []converter.SourceUnit, cfg config.ConversionConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	start := time.Now()
	outcomes := make([]outcome, len(units))

	var g errgroup.Group
	g.SetLimit(o.limit)

	for i := range units {
		if ctx.Err() != nil {
			outcomes[i].cancelled = true
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				outcomes[i].cancelled = true
				return nil
			}
			result, err := o.converter.Convert(units[i], cfg)
			outcomes[i] = outcome{result: result, err: err}
			return nil
		})
	}
	// Workers never return errors; failures live in outcomes.
	_ = g.Wait()

	result := &Result{}
	for i, out := range outcomes {
		unit := units[i]
		switch {
		case out.cancelled:
			result.Failed = append(result.Failed, FailedFile{
				Name: unit.Name,
				Diagnostics: []diagnostics.Diagnostic{{
					Severity: diagnostics.SeverityError,
					Code:     diagnostics.CodeCancelled,
					Message:  "conversion cancelled before this file started",
				}},
			})
		case out.err != nil:
			result.Failed = append(result.Failed, engineFailure(unit.Name, out.err))
		case out.result.Fatal():
			result.Failed = append(result.Failed, FailedFile{
				Name:        unit.Name,
				Diagnostics: out.result.Diagnostics,
			})
		default:
			result.Converted = append(result.Converted, ConvertedFile{
				Name:        unit.Name,
				OutputName:  out.result.OutputName,
				Code:        out.result.Code,
				Diagnostics: out.result.Diagnostics,
			})
		}
	}

	if len(result.Converted) > 1 {
		archive, err := buildArchive(result.Converted)
		if err != nil {
			return result, err
		}
		result.Archive = archive
	}

	o.logger.Info("batch conversion finished",
		"units", len(units),
		"converted", len(result.Converted),
		"failed", len(result.Failed),
		"duration", time.Since(start))

	return result, ctx.Err()
}

// engineFailure reports a unit whose conversion returned an error rather
// than diagnostics.
func engineFailure(name string, err error) FailedFile {
	return FailedFile{
		Name: name,
		Diagnostics: []diagnostics.Diagnostic{{
			Severity: diagnostics.SeverityError,
			Code:     diagnostics.CodeInternal,
			Message:  err.Error(),
		}},
	}
}
