package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"greenroom/internal/config"
	"greenroom/internal/content"
)

var displayCaser = cases.Title(language.Und)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect session and speaker records",
	}
	recordsCmd.AddCommand(newRecordsListCommand(ctx))
	recordsCmd.AddCommand(newRecordsShowCommand(ctx))
	return recordsCmd
}

func newRecordsListCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, optionally filtered by type and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *content.Store) error {
				recordType, err := parseRecordType(typeFlag)
				if err != nil {
					return err
				}
				var statuses []content.Status
				for _, value := range statusFlags {
					status, ok := content.ParseStatus(value)
					if !ok {
						return fmt.Errorf("unknown status %q", value)
					}
					statuses = append(statuses, status)
				}

				records, err := store.ListRecords(cmd.Context(), recordType, statuses...)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No records found")
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, record := range records {
					rows = append(rows, []string{
						strconv.FormatInt(record.ID, 10),
						record.Title,
						displayCaser.String(string(record.Status)),
						record.SubmissionID,
						record.CreatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprint(out, renderTable(out, []string{"ID", "Title", "Status", "Submission", "Created"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "session", "Record type (session or speaker)")
	cmd.Flags().StringArrayVarP(&statusFlags, "status", "s", nil, "Filter by status (repeatable)")
	return cmd
}

func newRecordsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record with metadata, terms, and linkage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid record id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *content.Store) error {
				record, err := store.GetRecord(cmd.Context(), id)
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("record %d not found", id)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s %d: %s\n", displayCaser.String(string(record.Type)), record.ID, record.Title)
				fmt.Fprintf(out, "  Status:     %s\n", record.Status)
				if record.SubmissionID != "" {
					fmt.Fprintf(out, "  Submission: %s\n", record.SubmissionID)
				}
				fmt.Fprintf(out, "  Created:    %s\n", record.CreatedAt.Local().Format(time.DateTime))
				if record.Body != "" {
					fmt.Fprintf(out, "  Body:       %s\n", record.Body)
				}

				meta, err := store.Metadata(cmd.Context(), record.ID)
				if err != nil {
					return err
				}
				if len(meta) > 0 {
					fmt.Fprintln(out, "  Metadata:")
					keys := make([]string, 0, len(meta))
					for key := range meta {
						keys = append(keys, key)
					}
					sort.Strings(keys)
					for _, key := range keys {
						fmt.Fprintf(out, "    %s: %s\n", key, strings.Join(meta[key], ", "))
					}
				}

				if record.Type == content.TypeSession {
					for _, taxonomy := range []string{content.TaxonomyCategories, content.TaxonomyLevels, content.TaxonomyEventTypes} {
						terms, err := store.Classification(cmd.Context(), record.ID, taxonomy)
						if err != nil {
							return err
						}
						if len(terms) == 0 {
							continue
						}
						names := make([]string, 0, len(terms))
						for _, term := range terms {
							names = append(names, term.Name)
						}
						fmt.Fprintf(out, "  %s: %s\n", displayCaser.String(strings.ReplaceAll(taxonomy, "_", " ")), strings.Join(names, ", "))
					}

					speakers, err := store.Speakers(cmd.Context(), record.ID)
					if err != nil {
						return err
					}
					if len(speakers) > 0 {
						fmt.Fprintf(out, "  Speakers:   %v\n", speakers)
					}
				}
				return nil
			})
		},
	}
}

func parseRecordType(value string) (content.RecordType, error) {
	switch content.RecordType(strings.ToLower(strings.TrimSpace(value))) {
	case content.TypeSession, "":
		return content.TypeSession, nil
	case content.TypeSpeaker:
		return content.TypeSpeaker, nil
	default:
		return "", fmt.Errorf("unknown record type %q", value)
	}
}
