package main

import (
	"github.com/spf13/cobra"

	"github.com/gnana997/tsxify/pkg/converter"
	"github.com/gnana997/tsxify/pkg/mcp"
	"github.com/gnana997/tsxify/pkg/mcplog"
)

func newServeCmd(a *app) *cobra.Command {
	var callLog string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversion tools over MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := mcplog.NewLogger(callLog)
			if err != nil {
				return err
			}
			defer logger.Close()

			conv := a.newConverter(converter.DefaultCacheSize)
			defer conv.Close()

			srv := mcp.NewServer(conv, mcp.Options{
				Defaults:   a.conv,
				Version:    version,
				BatchLimit: a.flags.workers,
				CallLog:    logger,
				Logger:     a.logger,
			})
			return srv.ServeStdio()
		},
	}
	cmd.Flags().StringVar(&callLog, "log-calls", "", "append a JSONL entry per tool call to this file")
	cmd.Flags().Lookup("log-calls").NoOptDefVal = mcplog.DefaultPath
	return cmd
}
