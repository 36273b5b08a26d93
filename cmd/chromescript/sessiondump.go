package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/chromescript/internal/profile"
	"github.com/dgnsrekt/chromescript/internal/snss"
)

type dumpCommand struct {
	ID     uint16      `json:"id"`
	Length uint16      `json:"length"`
	Fields snss.Fields `json:"fields,omitempty"`
}

type dumpWindow struct {
	ID   int   `json:"id"`
	Tabs []int `json:"tabs"`
}

type sessionDump struct {
	Version  int32         `json:"version"`
	Commands []dumpCommand `json:"commands,omitempty"`
	Windows  []dumpWindow  `json:"windows"`
}

func newSessionDumpCmd(a *app) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "session-dump FILE",
		Short: "Decode a session-state log",
		Long: "Decode a session-state log (for example <profile>/Current Session) and print\n" +
			"its commands and the window-to-tab map they describe.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dump, err := readSessionDump(args[0], !summary)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), dump)
			}
			return printSessionDump(cmd.OutOrStdout(), dump)
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print only the window-to-tab map")
	return cmd
}

func readSessionDump(path string, withCommands bool) (*sessionDump, error) {
	f, err := snss.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	dump := &sessionDump{Version: f.Header().Version}
	tabs := make(profile.WindowTabMap)
	for cmd, err := range f.All() {
		if err != nil {
			return nil, err
		}
		if withCommands {
			dump.Commands = append(dump.Commands, dumpCommand{ID: cmd.ID, Length: cmd.Length, Fields: cmd.Fields})
		}
		if window, tab, ok := cmd.TabWindow(); ok {
			tabs.Add(int(window), int(tab))
		}
	}
	dump.Windows = make([]dumpWindow, 0, len(tabs))
	for _, id := range tabs.WindowIDs() {
		dump.Windows = append(dump.Windows, dumpWindow{ID: id, Tabs: tabs.Tabs(id)})
	}
	return dump, nil
}

func printSessionDump(w io.Writer, dump *sessionDump) error {
	if _, err := fmt.Fprintf(w, "version %d, %d commands\n\n", dump.Version, len(dump.Commands)); err != nil {
		return err
	}
	if len(dump.Commands) > 0 {
		rows := make([][]string, 0, len(dump.Commands))
		for _, c := range dump.Commands {
			fields := ""
			if window, ok := c.Fields[snss.FieldWindowID]; ok {
				fields = fmt.Sprintf("window=%v tab=%v", window, c.Fields[snss.FieldTabIndex])
			}
			rows = append(rows, []string{strconv.Itoa(int(c.ID)), strconv.Itoa(int(c.Length)), fields})
		}
		if err := printTable(w, []string{"ID", "LENGTH", "FIELDS"}, rows); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	rows := make([][]string, 0, len(dump.Windows))
	for _, win := range dump.Windows {
		rows = append(rows, []string{strconv.Itoa(win.ID), joinInts(win.Tabs)})
	}
	return printTable(w, []string{"WINDOW", "TABS"}, rows)
}
