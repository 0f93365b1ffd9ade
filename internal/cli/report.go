package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsbot/opsbot/internal/analytics"
	"github.com/opsbot/opsbot/internal/storage"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		date   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize one day of the question transcript log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.TranscriptLogPath == "" {
				return errors.New("TRANSCRIPT_LOG_PATH is not set")
			}
			day := time.Now().UTC()
			if date != "" {
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				day = d
			}

			events, err := storage.ReadEvents(a.cfg.TranscriptLogPath)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			stats := analytics.AnalyzeDay(events, day)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			fmt.Fprint(cmd.OutOrStdout(), analytics.FormatReport(stats))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to report, YYYY-MM-DD (default today, UTC)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}
