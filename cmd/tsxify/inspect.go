package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsxify/pkg/validator"
)

func newInspectCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize the components a file renders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := readUnit(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			conv := a.newConverter(0)
			defer conv.Close()

			summary := conv.Validator().Summarize(unit.Name, unit.Text)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

// printSummary prints a human-readable summary.
func printSummary(w io.Writer, s *validator.UnitSummary) {
	fmt.Fprintf(w, "%s  (%d lines, %d elements)\n", s.FilePath, s.LineCount, s.Elements)
	if s.ParseError != "" {
		fmt.Fprintf(w, "  parse error: %s\n", s.ParseError)
		return
	}

	fmt.Fprintln(w)
	if len(s.Imports) == 0 {
		fmt.Fprintln(w, "Imports  (none)")
	} else {
		fmt.Fprintln(w, "Imports")
		for _, imp := range s.Imports {
			fmt.Fprintf(w, "  %s\n", imp)
		}
	}

	fmt.Fprintln(w)
	if len(s.Components) == 0 {
		fmt.Fprintln(w, "Components  (none)")
		return
	}
	fmt.Fprintln(w, "Components")
	width := 0
	for _, c := range s.Components {
		width = max(width, len(c.Name))
	}
	for _, c := range s.Components {
		line := fmt.Sprintf("  %s%s  line %d", c.Name, strings.Repeat(" ", width-len(c.Name)), c.Line)
		if len(c.Attributes) > 0 {
			line += "  " + strings.Join(c.Attributes, ", ")
		}
		if c.Children > 0 {
			line += fmt.Sprintf("  (%d children)", c.Children)
		}
		fmt.Fprintln(w, line)
	}
}
