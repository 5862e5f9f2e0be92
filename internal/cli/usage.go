package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"commitscribe/internal/config"
	"commitscribe/internal/cost"
)

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show recorded model usage and estimated cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			file, err := cost.NewLedger(cfg.UsagePath()).Snapshot()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cost.FormatLedger(file))
			return nil
		},
	}
}
