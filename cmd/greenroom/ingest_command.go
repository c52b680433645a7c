package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"greenroom/internal/config"
	"greenroom/internal/content"
	"greenroom/internal/forms"
	"greenroom/internal/ingest"
	"greenroom/internal/logging"
	"greenroom/internal/media"
	"greenroom/internal/notifications"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <submission.json>",
		Short: "Process a submission document from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *content.Store) error {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open submission file: %w", err)
				}
				defer file.Close()

				sub, err := forms.DecodeSubmission(file)
				if err != nil {
					return err
				}

				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("configure logging: %w", err)
				}
				notifier := notifications.NewService(cfg)
				fetcher := media.NewFetcher(cfg)
				ingestor := ingest.New(store, fetcher, notifier, logger, cfg.Intake.MaxSpeakers)

				result, err := ingestor.Process(cmd.Context(), sub)
				out := cmd.OutOrStdout()
				switch {
				case errors.Is(err, ingest.ErrAlreadyProcessed):
					fmt.Fprintf(out, "Submission %s already processed (session record %d)\n", sub.ID, result.SessionID)
					return nil
				case err != nil:
					return err
				}

				fmt.Fprintf(out, "Ingested submission %s: session record %d", sub.ID, result.SessionID)
				if len(result.SpeakerIDs) > 0 {
					fmt.Fprintf(out, ", speaker records %v", result.SpeakerIDs)
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}
}
