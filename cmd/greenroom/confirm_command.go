package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"greenroom/internal/config"
	"greenroom/internal/content"
	"greenroom/internal/logging"
	"greenroom/internal/notifications"
	"greenroom/internal/review"
)

func newConfirmCommand(ctx *commandContext) *cobra.Command {
	var decline bool
	var technology, videoRelease, specialRequests, arrival, unavailability string

	cmd := &cobra.Command{
		Use:   "confirm <speaker-id>",
		Short: "Record a speaker's confirmation or decline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speakerID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid speaker id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *content.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("configure logging: %w", err)
				}
				reviewer := review.New(store, notifications.NewService(cfg), logger)

				confirmationID, err := reviewer.ConfirmationID(cmd.Context(), speakerID)
				if err != nil {
					return err
				}

				decision := review.DecisionConfirm
				if decline {
					decision = review.DecisionDecline
				}
				speaker, err := reviewer.ProcessConfirmation(cmd.Context(), confirmationID, review.Response{
					Decision:        decision,
					Technology:      technology,
					VideoRelease:    videoRelease,
					SpecialRequests: specialRequests,
					Arrival:         arrival,
					Unavailability:  unavailability,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", speaker.Title, speaker.Status)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&decline, "decline", false, "Record a decline instead of a confirmation")
	cmd.Flags().StringVar(&technology, "technology", "", "Technology needs noted by the speaker")
	cmd.Flags().StringVar(&videoRelease, "video-release", "", "Video release answer")
	cmd.Flags().StringVar(&specialRequests, "special-requests", "", "Special requests")
	cmd.Flags().StringVar(&arrival, "arrival", "", "Arrival details")
	cmd.Flags().StringVar(&unavailability, "unavailability", "", "Schedule unavailability")
	return cmd
}
