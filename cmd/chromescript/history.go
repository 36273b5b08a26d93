package main

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/chromescript/internal/journal"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded profile correlations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.JournalFile == "" {
				return errors.New("journal disabled: set CHROMESCRIPT_JOURNAL_FILE")
			}
			entries, err := journal.ReadEntries(a.cfg.JournalFile)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Time.Format(time.RFC3339), formatProfilePIDs(e.Profiles), strconv.Itoa(e.Failures)})
			}
			return printTable(cmd.OutOrStdout(), []string{"TIME", "PROFILES", "FAILURES"}, rows)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show only the most recent entries (0 for all)")
	return cmd
}

// formatProfilePIDs renders "Name=pid,pid Other=pid" in name order.
func formatProfilePIDs(profiles map[string][]int) string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+joinInts(profiles[name]))
	}
	return strings.Join(parts, " ")
}
