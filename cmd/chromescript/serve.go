package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/chromescript/internal/api"
	"github.com/dgnsrekt/chromescript/internal/netutil"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			slog.Info("chromescript config loaded",
				"bind_addr", cfg.BindAddr,
				"port_auto_fallback", cfg.PortAutoFallback,
				"port_candidates", cfg.PortCandidates,
				"config_dirs", cfg.ConfigDirs,
				"cdp_host", cfg.CDPHost,
				"cdp_timeout_ms", cfg.CDPTimeoutMS,
				"journal_file", cfg.JournalFile,
				"log_level", cfg.LogLevel,
				"log_file", cfg.LogFile,
			)

			bindAddr, err := netutil.SelectBindAddr(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
			if err != nil {
				slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
				return err
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(svc)}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("chromescript listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				slog.Error("chromescript server failed", "error", err)
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("chromescript shutdown failed", "error", err)
				return err
			}
			return nil
		},
	}
}
