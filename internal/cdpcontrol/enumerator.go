package cdpcontrol

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/target"

	"github.com/dgnsrekt/chromescript/internal/types"
)

const minTimeout = 500 * time.Millisecond

// Enumerator lists browser windows over DevTools. One connection is kept per
// browser endpoint and reused across calls.
type Enumerator struct {
	host    string
	timeout time.Duration

	mu    sync.Mutex
	conns map[string]*rawCDP
}

// NewEnumerator returns an Enumerator dialing DevTools endpoints on host.
// Every browser round trip is bounded by timeout.
func NewEnumerator(host string, timeout time.Duration) *Enumerator {
	if host == "" {
		host = "127.0.0.1"
	}
	if timeout < minTimeout {
		timeout = minTimeout
	}
	return &Enumerator{
		host:    host,
		timeout: timeout,
		conns:   make(map[string]*rawCDP),
	}
}

// Close drops every open browser connection.
func (e *Enumerator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, cdp := range e.conns {
		cdp.close()
		delete(e.conns, key)
	}
	return nil
}

func (e *Enumerator) client(ctx context.Context, proc types.ProcessInfo) (*rawCDP, error) {
	ep, err := ReadDevToolsActivePort(proc.ConfigDir)
	if err != nil {
		return nil, err
	}

	base := ep.HTTPBase(e.host)
	key := base + ep.Path
	e.mu.Lock()
	cdp, ok := e.conns[key]
	if !ok {
		cdp = newRawCDP(base, ep.WebSocketURL(e.host))
		e.conns[key] = cdp
	}
	e.mu.Unlock()

	if err := cdp.connect(ctx); err != nil {
		return nil, types.NewError(types.CodeCDPUnavailable, "connect to "+base, err)
	}
	return cdp, nil
}

// Windows implements types.WindowEnumerator. Windows are sorted by ID; within
// a window, tabs keep the browser's most-recently-active-first order.
func (e *Enumerator) Windows(ctx context.Context, proc types.ProcessInfo) ([]types.LiveWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cdp, err := e.client(ctx, proc)
	if err != nil {
		return nil, err
	}
	targets, err := cdp.listTargets(ctx)
	if err != nil {
		return nil, types.NewError(types.CodeCDPUnavailable, "failed to list targets", err)
	}

	byID := make(map[browser.WindowID]*cdpWindow)
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		res, err := cdp.windowForTarget(ctx, t.TargetID)
		if err != nil {
			// The tab may have closed between listing and lookup.
			slog.Debug("cdpcontrol window lookup failed", "target_id", t.TargetID, "error", err)
			continue
		}
		w, ok := byID[res.WindowID]
		if !ok {
			w = &cdpWindow{enum: e, cdp: cdp, id: res.WindowID}
			byID[res.WindowID] = w
		}
		w.tabs = append(w.tabs, t.TargetID)
	}

	out := make([]types.LiveWindow, 0, len(byID))
	for _, w := range byID {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })

	slog.Debug("cdpcontrol windows enumerated", "pid", proc.PID, "targets", len(targets), "windows", len(out))
	return out, nil
}

// OpenWindow implements types.WindowOpener.
func (e *Enumerator) OpenWindow(ctx context.Context, proc types.ProcessInfo, url string) (types.LiveWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cdp, err := e.client(ctx, proc)
	if err != nil {
		return nil, err
	}
	return e.openTarget(ctx, cdp, url, true)
}

func (e *Enumerator) openTarget(ctx context.Context, cdp *rawCDP, url string, newWindow bool) (*cdpWindow, error) {
	targetID, err := cdp.createTarget(ctx, url, newWindow)
	if err != nil {
		return nil, types.NewError(types.CodeCommandFailed, "open "+url, err)
	}
	res, err := cdp.windowForTarget(ctx, targetID)
	if err != nil {
		return nil, types.NewError(types.CodeCommandFailed, "locate window of new tab", err)
	}
	slog.Info("cdpcontrol target opened", "target_id", targetID, "window_id", res.WindowID, "new_window", newWindow)
	return &cdpWindow{enum: e, cdp: cdp, id: res.WindowID, tabs: []target.ID{targetID}}, nil
}
