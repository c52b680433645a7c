package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"greenroom/internal/config"
	"greenroom/internal/content"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show store location and record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *content.Store) error {
				out := cmd.OutOrStdout()

				if err := store.CheckHealth(cmd.Context()); err != nil {
					fmt.Fprintf(out, "Store:   %s (unhealthy: %v)\n", store.Path(), err)
				} else {
					fmt.Fprintf(out, "Store:   %s\n", store.Path())
				}
				fmt.Fprintf(out, "Logs:    %s\n", cfg.Paths.LogDir)
				fmt.Fprintf(out, "API:     %s\n", cfg.Paths.APIBind)

				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				var rows [][]string
				for _, recordType := range []content.RecordType{content.TypeSession, content.TypeSpeaker} {
					for _, status := range content.AllStatuses() {
						count := stats[recordType][status]
						if count == 0 {
							continue
						}
						rows = append(rows, []string{
							displayCaser.String(string(recordType)),
							displayCaser.String(string(status)),
							strconv.Itoa(count),
						})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No records yet")
					return nil
				}
				fmt.Fprint(out, renderTable(out, []string{"Type", "Status", "Count"}, rows))
				return nil
			})
		},
	}
}
