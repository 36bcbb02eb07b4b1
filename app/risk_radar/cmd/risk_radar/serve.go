package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/conf"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `serve starts the HTTP API:

  GET /health                          liveness probe
  GET /api/v1/scan?query=&company=     risk assessment for a company`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("conf")
			bc, err := conf.Load(path)
			if err != nil {
				return err
			}

			app, cleanup, err := initApp(bc, os.Stdout)
			if err != nil {
				return err
			}
			defer cleanup()

			return app.Run()
		},
	}
}
