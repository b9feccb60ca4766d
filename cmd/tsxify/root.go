package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/converter"
	"github.com/gnana997/tsxify/pkg/scanner"
	"github.com/gnana997/tsxify/pkg/util"
)

// app is the state shared by subcommands once flags are parsed.
type app struct {
	flags globalFlags

	logger  *slog.Logger
	project *config.File
	conv    config.ConversionConfig
	scan    scanner.ScanConfig
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tsxify",
		Short: "Convert untyped React components (JSX) to typed TSX",
		Long: "tsxify infers prop types for React components from destructuring defaults and usage,\n" +
			"emits an interface per component and annotates the component with it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	a.flags.register(root.PersistentFlags())

	root.AddCommand(
		newConvertCmd(a),
		newBatchCmd(a),
		newWatchCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
		newInitCmd(a),
		newSetupCmd(),
		newVersionCmd(),
	)
	return root
}

// setup builds the logger and resolves configuration: defaults, then the
// project file, then explicitly set flags.
func (a *app) setup(cmd *cobra.Command) error {
	a.logger = util.NewLogger(util.LoggerConfig{
		Level:  util.ParseLogLevel(a.flags.logLevel),
		Format: util.LogFormat(a.flags.logFormat),
		Output: cmd.ErrOrStderr(),
	})

	project, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	a.project = project
	if project != nil {
		a.logger.Debug("loaded project configuration", "path", a.flags.configPath)
	}

	if a.conv, err = resolveConversion(cmd.Flags(), &a.flags, project); err != nil {
		return err
	}
	a.scan = resolveScan(&a.flags, project)
	return nil
}

// newConverter creates a converter with a result cache sized for
// long-running commands.
func (a *app) newConverter(cacheSize int) *converter.Converter {
	return converter.New(converter.Options{
		Logger:    a.logger,
		PoolSize:  a.flags.workers,
		CacheSize: cacheSize,
	})
}
