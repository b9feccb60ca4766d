package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsxify/pkg/batch"
	"github.com/gnana997/tsxify/pkg/scanner"
	"github.com/gnana997/tsxify/pkg/util"
)

func newBatchCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "batch <path>...",
		Short: "Convert files and directories, saving one file or an archive",
		Long: "Convert every selected file under the given paths. A single converted file\n" +
			"is saved as is; several are packaged into " + batch.ArchiveName + ".\n" +
			"Files that fail are reported and do not stop the others.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.runBatch(ctx, cmd, args, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default: the project out_dir or the current directory)")
	return cmd
}

func (a *app) runBatch(ctx context.Context, cmd *cobra.Command, paths []string, output string) error {
	stderr := cmd.ErrOrStderr()

	files := util.NewFileCache(&util.FileCacheConfig{Logger: a.logger})
	defer files.Close()

	units, loadErrors, stats, err := scanner.NewScanner(files, a.logger).Collect(paths, a.scan)
	if err != nil {
		return err
	}
	for _, le := range loadErrors {
		fmt.Fprintf(stderr, "skipped %s\n", le.Error())
	}
	if len(units) == 0 {
		return fmt.Errorf("no files to convert (discovered %d)", stats.FilesDiscovered)
	}

	conv := a.newConverter(0)
	defer conv.Close()

	result, err := batch.NewOrchestrator(conv, a.flags.workers, a.logger).ConvertAll(ctx, units, a.conv)
	if result == nil {
		return err
	}

	for _, f := range result.Converted {
		printDiagnostics(stderr, f.Name, f.Diagnostics)
	}
	for _, f := range result.Failed {
		printDiagnostics(stderr, f.Name, f.Diagnostics)
	}
	fmt.Fprintf(stderr, "converted %d, failed %d\n", len(result.Converted), len(result.Failed))
	if err != nil {
		return err
	}

	artifact := result.Artifact()
	if artifact == nil {
		return fmt.Errorf("no file could be converted")
	}
	path := a.artifactPath(output, artifact.Name)
	if err := writeFile(path, artifact.Data); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "wrote %s\n", path)
	return nil
}

// artifactPath places the artifact at output, inside output when it names
// a directory, or in the project out_dir.
func (a *app) artifactPath(output, name string) string {
	name = filepath.Base(name)
	switch {
	case output == "":
		if a.project != nil && a.project.OutDir != "" {
			return filepath.Join(a.project.OutDir, name)
		}
		return name
	case isDir(output), strings.HasSuffix(output, "/"), strings.HasSuffix(output, string(filepath.Separator)):
		return filepath.Join(output, name)
	}
	return output
}
