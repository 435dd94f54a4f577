package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tradie-match-server/config"
	"tradie-match-server/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		if config.IsConfigurationError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// cli carries what every subcommand needs once the root has loaded it.
type cli struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "tradie-match-server",
		Short:         "Job lifecycle and availability API for tradies and their admirers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Env)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			c.cfg, c.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.AddCommand(c.serveCmd(), c.migrateCmd(), c.seedCmd())
	return root
}
