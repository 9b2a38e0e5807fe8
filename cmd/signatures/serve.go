package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/server"
)

func newServeCmd(c *cli) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}
			zap.ReplaceGlobals(c.logger)
			a, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return server.Run(cmd.Context(), a)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config and PORT)")
	return cmd
}
