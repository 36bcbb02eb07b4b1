package main

import (
	"github.com/spf13/cobra"

	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/conf"
	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/service"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <query>",
		Short: "Run a single risk scan and print the JSON result",
		Long: `scan runs the same pipeline as GET /api/v1/scan once, including the
configured cache, and writes the JSON assessment to stdout. Logs go to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("conf")
			company, _ := cmd.Flags().GetString("company")

			bc, err := conf.Load(path)
			if err != nil {
				return err
			}

			c, cleanup, err := newComponents(bc, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer cleanup()

			body, err := c.service.Scan(cmd.Context(), &service.ScanRequest{Query: args[0], Company: company})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := out.Write(body); err != nil {
				return err
			}
			_, err = out.Write([]byte("\n"))
			return err
		},
	}
	cmd.Flags().String("company", "", "company name used for scoring (default: the query)")
	return cmd
}
