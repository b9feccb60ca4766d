package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsxify/pkg/converter"
	"github.com/gnana997/tsxify/pkg/scanner"
	"github.com/gnana997/tsxify/pkg/util"
	"github.com/gnana997/tsxify/pkg/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		outDir   string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Convert files again whenever they change",
		Long: "Watch a directory and write the converted version of every changed file\n" +
			"under --out, mirroring the source layout. Stops on interrupt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = ".tsxify/out"
				if a.project != nil && a.project.OutDir != "" {
					outDir = a.project.OutDir
				}
			}

			files := util.NewFileCache(&util.FileCacheConfig{Logger: a.logger})
			defer files.Close()

			conv := a.newConverter(converter.DefaultCacheSize)
			defer conv.Close()

			stderr := cmd.ErrOrStderr()
			var mu sync.Mutex
			handler := func(rel string, result *converter.Result) {
				mu.Lock()
				defer mu.Unlock()
				printDiagnostics(stderr, rel, result.Diagnostics)
				if result.Fatal() {
					return
				}
				path := filepath.Join(outDir, filepath.FromSlash(result.OutputName))
				if err := writeFile(path, []byte(result.Code)); err != nil {
					fmt.Fprintln(stderr, err)
					return
				}
				fmt.Fprintf(stderr, "%s -> %s\n", rel, path)
			}

			w, err := watcher.New(conv, scanner.NewScanner(files, a.logger), watcher.Options{
				Scan:       a.watchScan(args[0], outDir),
				Conversion: a.conv,
				Debounce:   debounce,
				Logger:     a.logger,
			}, handler)
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := w.Start(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(stderr, "watching %s (writing to %s)\n", args[0], outDir)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default: the project out_dir or .tsxify/out)")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "delay before converting a changed file")
	return cmd
}

// watchScan excludes the output directory when it lies inside the
// watched one, so written results do not trigger conversions.
func (a *app) watchScan(root, outDir string) scanner.ScanConfig {
	cfg := a.scan
	absRoot, err1 := filepath.Abs(root)
	absOut, err2 := filepath.Abs(outDir)
	if err1 != nil || err2 != nil {
		return cfg
	}
	rel, err := filepath.Rel(absRoot, absOut)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return cfg
	}
	cfg.Exclude = append(append([]string(nil), cfg.Exclude...), filepath.ToSlash(rel)+"/**")
	return cfg
}
