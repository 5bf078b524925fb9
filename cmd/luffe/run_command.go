package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ebreen/luffe/internal/daemon"
	"github.com/ebreen/luffe/internal/logging"
	"github.com/ebreen/luffe/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}

			d, err := daemon.New(cfg, st, logger)
			if err != nil {
				_ = st.Close()
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return fmt.Errorf("start daemon: %w", err)
			}

			<-runCtx.Done()
			return nil
		},
	}
}
