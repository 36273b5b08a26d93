package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newProcessesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "processes",
		Short: "List running browser processes and their profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			procs, err := svc.ListProcesses(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), procs)
			}
			rows := make([][]string, 0, len(procs))
			for _, p := range procs {
				rows = append(rows, []string{strconv.Itoa(p.PID), p.ConfigDir, strings.Join(p.Profiles, ", ")})
			}
			return printTable(cmd.OutOrStdout(), []string{"PID", "CONFIG DIR", "PROFILES"}, rows)
		},
	}
}

func newProfilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "Map profiles with open windows to the processes hosting them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			result, err := svc.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			var rows [][]string
			for _, p := range result.Profiles {
				for _, proc := range p.Processes {
					rows = append(rows, []string{p.Name, strconv.Itoa(proc.PID), joinInts(proc.WindowIDs)})
				}
			}
			for _, f := range result.Failures {
				name := f.Profile
				if name == "" {
					name = "-"
				}
				rows = append(rows, []string{name, strconv.Itoa(f.PID), "error: " + f.Error})
			}
			return printTable(cmd.OutOrStdout(), []string{"PROFILE", "PID", "WINDOWS"}, rows)
		},
	}
}

func newWindowsCmd(a *app) *cobra.Command {
	var sel selectorFlags
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List live windows of the selected browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			windows, err := svc.ListWindows(cmd.Context(), sel.selector())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), windows)
			}
			rows := make([][]string, 0, len(windows))
			for _, w := range windows {
				rows = append(rows, []string{strconv.Itoa(w.ID), strconv.FormatBool(w.Minimized), w.URL})
			}
			return printTable(cmd.OutOrStdout(), []string{"WINDOW", "MINIMIZED", "URL"}, rows)
		},
	}
	sel.bind(cmd)
	return cmd
}
