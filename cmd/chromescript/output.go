package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/chromescript/internal/discovery"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable writes tab-separated rows aligned under header.
func printTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func joinInts(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	return strings.Join(parts, ",")
}

// selectorFlags binds --pid, --path and --profile.
type selectorFlags struct {
	pid     int
	path    string
	profile string
}

func (f *selectorFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.pid, "pid", 0, "select the browser process by PID")
	cmd.Flags().StringVar(&f.path, "path", "", "select the browser process by config directory")
	cmd.Flags().StringVar(&f.profile, "profile", "", "select the browser process owning this profile's windows")
	cmd.MarkFlagsMutuallyExclusive("pid", "path", "profile")
}

func (f *selectorFlags) selector() discovery.Selector {
	return discovery.Selector{PID: f.pid, Path: f.path, Profile: f.profile}
}
