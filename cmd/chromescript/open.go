package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/chromescript/internal/controller"
)

func newOpenCmd(a *app) *cobra.Command {
	var (
		sel       selectorFlags
		newTab    bool
		newWindow bool
	)
	cmd := &cobra.Command{
		Use:   "open URL",
		Short: "Open a URL in the selected browser",
		Long: "Open a URL in the selected browser. With --profile the URL goes to a window\n" +
			"of that profile; otherwise to the first window of the process.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			result, err := svc.Open(cmd.Context(), controller.OpenRequest{
				URL:       args[0],
				NewTab:    newTab,
				NewWindow: newWindow,
				Selector:  sel.selector(),
			})
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s window %d: %s\n", result.Mode, result.WindowID, result.URL)
			return err
		},
	}
	sel.bind(cmd)
	cmd.Flags().BoolVar(&newTab, "new-tab", false, "open in a new tab instead of navigating the active tab")
	cmd.Flags().BoolVar(&newWindow, "new-window", false, "open in a new window")
	cmd.MarkFlagsMutuallyExclusive("new-tab", "new-window")
	return cmd
}

func newActivateCmd(a *app) *cobra.Command {
	var (
		sel    selectorFlags
		reload bool
	)
	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Bring the selected window to the front",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			info, err := svc.Activate(cmd.Context(), sel.selector())
			if err != nil {
				return err
			}
			if reload {
				if _, err := svc.Reload(cmd.Context(), sel.selector()); err != nil {
					return err
				}
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), info)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "activated window %d %s\n", info.ID, info.URL)
			return err
		},
	}
	sel.bind(cmd)
	cmd.Flags().BoolVar(&reload, "reload", false, "reload the active tab after activating")
	return cmd
}
