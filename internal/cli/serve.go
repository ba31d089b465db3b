package cli

import (
	"nburates/internal/app"

	"github.com/spf13/cobra"
)

func serveCmd(opts *options) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rate tables over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, cleanup, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if cmd.Flags().Changed("port") {
				cfg.HTTPServer.Port = port
			}

			a, err := app.New(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "HTTP port (default from config)")
	return cmd
}
