package cdpcontrol

import (
	"context"
	"log/slog"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/target"

	"github.com/dgnsrekt/chromescript/internal/types"
)

// cdpWindow is a browser window seen at enumeration time. tabs[0] is the
// active tab.
type cdpWindow struct {
	enum *Enumerator
	cdp  *rawCDP
	id   browser.WindowID
	tabs []target.ID
}

func (w *cdpWindow) ID() int { return int(w.id) }

func (w *cdpWindow) activeTab() (target.ID, error) {
	if len(w.tabs) == 0 {
		return "", types.NewError(types.CodeNotFound, "window has no tabs", nil)
	}
	return w.tabs[0], nil
}

func (w *cdpWindow) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, w.enum.timeout)
}

func (w *cdpWindow) URL(ctx context.Context) (string, error) {
	tab, err := w.activeTab()
	if err != nil {
		return "", err
	}
	ctx, cancel := w.withTimeout(ctx)
	defer cancel()

	info, err := w.cdp.targetInfo(ctx, tab)
	if err != nil {
		return "", types.NewError(types.CodeCommandFailed, "read tab url", err)
	}
	return info.URL, nil
}

func (w *cdpWindow) SetURL(ctx context.Context, url string) error {
	tab, err := w.activeTab()
	if err != nil {
		return err
	}
	ctx, cancel := w.withTimeout(ctx)
	defer cancel()

	if err := w.cdp.navigate(ctx, tab, url); err != nil {
		return types.NewError(types.CodeCommandFailed, "navigate to "+url, err)
	}
	slog.Debug("cdpcontrol navigated", "window_id", w.id, "target_id", tab)
	return nil
}

func (w *cdpWindow) Minimized(ctx context.Context) (bool, error) {
	ctx, cancel := w.withTimeout(ctx)
	defer cancel()

	bounds, err := w.cdp.windowBounds(ctx, w.id)
	if err != nil {
		return false, types.NewError(types.CodeCommandFailed, "read window bounds", err)
	}
	return bounds.WindowState == browser.WindowStateMinimized, nil
}

// OpenTab focuses this window first so the browser places the new tab in it.
func (w *cdpWindow) OpenTab(ctx context.Context, url string) (types.LiveWindow, error) {
	tab, err := w.activeTab()
	if err != nil {
		return nil, err
	}
	ctx, cancel := w.withTimeout(ctx)
	defer cancel()

	if err := w.cdp.activateTarget(ctx, tab); err != nil {
		return nil, types.NewError(types.CodeCommandFailed, "focus window", err)
	}
	opened, err := w.enum.openTarget(ctx, w.cdp, url, false)
	if err != nil {
		return nil, err
	}
	if opened.id != w.id {
		slog.Warn("cdpcontrol tab opened in another window", "want_window_id", w.id, "got_window_id", opened.id)
	}
	return opened, nil
}

// Activate restores a minimized window and brings its active tab to the front.
func (w *cdpWindow) Activate(ctx context.Context) error {
	tab, err := w.activeTab()
	if err != nil {
		return err
	}
	ctx, cancel := w.withTimeout(ctx)
	defer cancel()

	bounds, err := w.cdp.windowBounds(ctx, w.id)
	if err == nil && bounds.WindowState == browser.WindowStateMinimized {
		if err := w.cdp.setWindowState(ctx, w.id, browser.WindowStateNormal); err != nil {
			return types.NewError(types.CodeCommandFailed, "restore window", err)
		}
	}
	if err := w.cdp.activateTarget(ctx, tab); err != nil {
		return types.NewError(types.CodeCommandFailed, "activate window", err)
	}
	return nil
}

func (w *cdpWindow) Reload(ctx context.Context) error {
	tab, err := w.activeTab()
	if err != nil {
		return err
	}
	ctx, cancel := w.withTimeout(ctx)
	defer cancel()

	if err := w.cdp.reload(ctx, tab); err != nil {
		return types.NewError(types.CodeCommandFailed, "reload", err)
	}
	return nil
}
