package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"greenroom/internal/config"
	"greenroom/internal/content"
	"greenroom/internal/ingest"
	"greenroom/internal/intake"
	"greenroom/internal/logging"
	"greenroom/internal/media"
	"greenroom/internal/notifications"
	"greenroom/internal/review"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the submission intake server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *content.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("configure logging: %w", err)
				}

				notifier := notifications.NewService(cfg)
				fetcher := media.NewFetcher(cfg)
				ingestor := ingest.New(store, fetcher, notifier, logger, cfg.Intake.MaxSpeakers)
				reviewer := review.New(store, notifier, logger)
				server := intake.New(cfg, store, ingestor, reviewer, logger)

				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				if err := server.Start(runCtx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Intake server listening on %s\n", server.Addr())

				<-runCtx.Done()
				server.Stop()
				return nil
			})
		},
	}
}
