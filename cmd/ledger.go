package main

import (
	"fmt"

	"MediChain/ledger"

	"github.com/spf13/cobra"
)

func newLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Audit ledger commands",
	}
	cmd.AddCommand(newLedgerVerifyCommand())
	return cmd
}

func newLedgerVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Recompute every block hash and report the first broken link",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			chain, err := ledger.Open(cfg.LedgerPath)
			if err != nil {
				return fmt.Errorf("failed to open ledger: %w", err)
			}
			defer chain.Close()

			report, err := chain.Verify()
			if err != nil {
				return fmt.Errorf("failed to verify ledger: %w", err)
			}

			out := cmd.OutOrStdout()
			if !report.Valid {
				fmt.Fprintf(out, "ledger broken at block %d of %d: %s\n", report.BrokenAt, report.Height, report.Reason)
				return fmt.Errorf("ledger verification failed")
			}
			fmt.Fprintf(out, "ledger valid: %d blocks after genesis\n", report.Height)
			return nil
		},
	}
}
