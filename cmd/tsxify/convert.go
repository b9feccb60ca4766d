package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsxify/pkg/converter"
	"github.com/gnana997/tsxify/pkg/diagnostics"
)

func newConvertCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert one file and print the result",
		Long: "Convert one file. The converted code goes to stdout, or to --output;\n" +
			"diagnostics go to stderr. Use - to read from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := readUnit(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			conv := a.newConverter(0)
			defer conv.Close()

			result, err := conv.Convert(unit, a.conv)
			if err != nil {
				return err
			}
			printDiagnostics(cmd.ErrOrStderr(), result.Name, result.Diagnostics)
			if result.Fatal() {
				return fmt.Errorf("%s could not be converted", result.Name)
			}

			if output == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), result.Code)
				return err
			}
			if isDir(output) {
				output = filepath.Join(output, filepath.Base(result.OutputName))
			}
			if err := writeFile(output, []byte(result.Code)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to this file or directory")
	return cmd
}

// readUnit reads a file, or stdin for "-", as a source unit named by its
// base name.
func readUnit(stdin io.Reader, path string) (converter.SourceUnit, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return converter.SourceUnit{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return converter.SourceUnit{Name: "stdin.jsx", Text: string(data)}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return converter.SourceUnit{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return converter.SourceUnit{Name: filepath.Base(path), Text: string(data)}, nil
}

func printDiagnostics(w io.Writer, name string, ds []diagnostics.Diagnostic) {
	for _, d := range ds {
		fmt.Fprintf(w, "%s:%s (%s)\n", name, d, d.Code)
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
