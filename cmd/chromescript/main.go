package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/chromescript/internal/cdpcontrol"
	"github.com/dgnsrekt/chromescript/internal/config"
	"github.com/dgnsrekt/chromescript/internal/discovery"
	"github.com/dgnsrekt/chromescript/internal/journal"
	"github.com/dgnsrekt/chromescript/internal/locator"
	"github.com/dgnsrekt/chromescript/internal/notify"
	"github.com/dgnsrekt/chromescript/internal/types"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		slog.Error("chromescript command failed", "error", err)
		if _, writeErr := io.WriteString(os.Stderr, "error: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}
}

// app carries the wiring shared by subcommands.
type app struct {
	cfg     *config.Config
	jsonOut bool

	enum    *cdpcontrol.Enumerator
	journal *journal.Writer
	session *discovery.Session
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "chromescript",
		Short:         "Find running Chrome profiles and drive their windows",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return setupLogger(cfg.LogLevel, cfg.LogFile)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of tables")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newProcessesCmd(a))
	root.AddCommand(newProfilesCmd(a))
	root.AddCommand(newWindowsCmd(a))
	root.AddCommand(newOpenCmd(a))
	root.AddCommand(newActivateCmd(a))
	root.AddCommand(newSessionDumpCmd(a))
	root.AddCommand(newHistoryCmd(a))

	return root
}

// openSession builds the discovery session on first use.
func (a *app) openSession() (*discovery.Session, error) {
	if a.session != nil {
		return a.session, nil
	}

	var (
		loc types.ProcessLocator
		err error
	)
	if len(a.cfg.ConfigDirs) > 0 {
		slog.Info("using static config dirs", "config_dirs", a.cfg.ConfigDirs)
		loc = locator.NewStatic(a.cfg.ConfigDirs)
	} else if loc, err = locator.New(a.cfg.ProcessPattern); err != nil {
		return nil, err
	}

	a.enum = cdpcontrol.NewEnumerator(a.cfg.CDPHost, time.Duration(a.cfg.CDPTimeoutMS)*time.Millisecond)

	var opts []discovery.Option
	if a.cfg.JournalFile != "" {
		w, err := journal.NewWriter(a.cfg.JournalFile, a.cfg.JournalMaxMB)
		if err != nil {
			return nil, err
		}
		a.journal = w
		opts = append(opts, discovery.WithRecorder(w))
	}
	if a.cfg.NotifyURL != "" {
		opts = append(opts, discovery.WithRecorder(notify.NewNotifier(nil, a.cfg.NotifyURL)))
	}

	a.session = discovery.NewSession(loc, a.enum, opts...)
	return a.session, nil
}

func (a *app) close() error {
	if a.enum != nil {
		if err := a.enum.Close(); err != nil {
			slog.Debug("enumerator close failed", "error", err)
		}
	}
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}
