package cdpcontrol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/target"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// rawCDP is a minimal browser-level CDP client. It never enables domains or
// auto-attaches, so talking to a user's everyday browser leaves no trace
// beyond the commands actually sent.
type rawCDP struct {
	httpBase string // e.g. "http://127.0.0.1:9222"
	wsURL    string // browser endpoint; resolved from /json/version when empty

	mu   sync.Mutex
	conn net.Conn
	seq  atomic.Int64

	pending   map[int64]chan json.RawMessage
	pendingMu sync.Mutex
}

func newRawCDP(httpBase, wsURL string) *rawCDP {
	return &rawCDP{
		httpBase: strings.TrimRight(httpBase, "/"),
		wsURL:    wsURL,
		pending:  make(map[int64]chan json.RawMessage),
	}
}

// connect dials the browser-level WebSocket endpoint. It is a no-op while a
// connection is open.
func (r *rawCDP) connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return nil
	}

	wsURL := r.wsURL
	if wsURL == "" {
		var err error
		if wsURL, err = r.browserWSURL(ctx); err != nil {
			return fmt.Errorf("rawcdp: browser ws url: %w", err)
		}
	}

	slog.Debug("rawcdp connecting", "ws_url", wsURL)
	conn, _, _, err := ws.Dial(ctx, wsURL)
	if err != nil {
		return fmt.Errorf("rawcdp: dial: %w", err)
	}

	r.conn = conn
	r.pendingMu.Lock()
	r.pending = make(map[int64]chan json.RawMessage)
	r.pendingMu.Unlock()
	go r.readLoop(conn)
	return nil
}

func (r *rawCDP) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}

// readLoop dispatches responses to waiters until conn fails. A failed
// connection is dropped so the next connect dials again.
func (r *rawCDP) readLoop(conn net.Conn) {
	for {
		data, err := wsutil.ReadServerText(conn)
		if err != nil {
			slog.Debug("rawcdp read loop exit", "error", err)
			r.mu.Lock()
			if r.conn == conn {
				r.conn.Close()
				r.conn = nil
			}
			r.mu.Unlock()
			r.closeAllPending()
			return
		}

		var msg struct {
			ID int64 `json:"id"`
		}
		if json.Unmarshal(data, &msg) != nil || msg.ID <= 0 {
			// Events are never subscribed to; anything without an id is noise.
			continue
		}
		r.pendingMu.Lock()
		ch, ok := r.pending[msg.ID]
		if ok {
			delete(r.pending, msg.ID)
		}
		r.pendingMu.Unlock()
		if ok {
			ch <- json.RawMessage(data)
		}
	}
}

func (r *rawCDP) closeAllPending() {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	for id, ch := range r.pending {
		close(ch)
		delete(r.pending, id)
	}
}

func (r *rawCDP) deletePending(id int64) {
	r.pendingMu.Lock()
	delete(r.pending, id)
	r.pendingMu.Unlock()
}

// sendRaw marshals an envelope, sends it over the WebSocket, and waits for
// the response keyed by the given id.
func (r *rawCDP) sendRaw(ctx context.Context, id int64, envelope any) (json.RawMessage, error) {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("rawcdp: not connected")
	}

	ch := make(chan json.RawMessage, 1)
	r.pendingMu.Lock()
	r.pending[id] = ch
	r.pendingMu.Unlock()

	data, err := json.Marshal(envelope)
	if err != nil {
		r.deletePending(id)
		return nil, fmt.Errorf("rawcdp: marshal: %w", err)
	}

	r.mu.Lock()
	err = wsutil.WriteClientText(conn, data)
	r.mu.Unlock()
	if err != nil {
		r.deletePending(id)
		return nil, fmt.Errorf("rawcdp: send: %w", err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("rawcdp: connection closed")
		}
		return resp, nil
	case <-ctx.Done():
		r.deletePending(id)
		return nil, ctx.Err()
	}
}

// call sends a command, on a flat session when sessionID is set, and decodes
// the "result" member into out (which may be nil).
func (r *rawCDP) call(ctx context.Context, sessionID, method string, params, out any) error {
	id := r.seq.Add(1)
	req := struct {
		ID        int64  `json:"id"`
		Method    string `json:"method"`
		SessionID string `json:"sessionId,omitempty"`
		Params    any    `json:"params,omitempty"`
	}{ID: id, Method: method, SessionID: sessionID, Params: params}

	resp, err := r.sendRaw(ctx, id, req)
	if err != nil {
		return err
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp, &envelope); err != nil {
		return fmt.Errorf("rawcdp: %s: unmarshal: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("rawcdp: %s: %s", method, envelope.Error.Message)
	}
	if out == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("rawcdp: %s: unmarshal result: %w", method, err)
	}
	return nil
}

// attachToTarget attaches a flat session to the given target.
func (r *rawCDP) attachToTarget(ctx context.Context, targetID target.ID) (string, error) {
	params := struct {
		TargetID target.ID `json:"targetId"`
		Flatten  bool      `json:"flatten"`
	}{TargetID: targetID, Flatten: true}

	var out struct {
		SessionID string `json:"sessionId"`
	}
	if err := r.call(ctx, "", "Target.attachToTarget", params, &out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

// detachFromTarget detaches from a session without closing the target.
func (r *rawCDP) detachFromTarget(ctx context.Context, sessionID string) error {
	params := struct {
		SessionID string `json:"sessionId"`
	}{SessionID: sessionID}
	return r.call(ctx, "", "Target.detachFromTarget", params, nil)
}

// withSession runs fn on a flat session attached to targetID and detaches
// afterwards.
func (r *rawCDP) withSession(ctx context.Context, targetID target.ID, fn func(sessionID string) error) error {
	sessionID, err := r.attachToTarget(ctx, targetID)
	if err != nil {
		return err
	}
	defer func() {
		detachCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := r.detachFromTarget(detachCtx, sessionID); err != nil {
			slog.Debug("rawcdp detach failed", "target_id", targetID, "error", err)
		}
	}()
	return fn(sessionID)
}

// windowForTarget returns the browser window hosting a target.
func (r *rawCDP) windowForTarget(ctx context.Context, targetID target.ID) (browser.GetWindowForTargetReturns, error) {
	params := struct {
		TargetID target.ID `json:"targetId"`
	}{TargetID: targetID}

	var out browser.GetWindowForTargetReturns
	err := r.call(ctx, "", "Browser.getWindowForTarget", params, &out)
	return out, err
}

func (r *rawCDP) windowBounds(ctx context.Context, windowID browser.WindowID) (browser.Bounds, error) {
	params := struct {
		WindowID browser.WindowID `json:"windowId"`
	}{WindowID: windowID}

	var out struct {
		Bounds browser.Bounds `json:"bounds"`
	}
	err := r.call(ctx, "", "Browser.getWindowBounds", params, &out)
	return out.Bounds, err
}

func (r *rawCDP) setWindowState(ctx context.Context, windowID browser.WindowID, state browser.WindowState) error {
	params := struct {
		WindowID browser.WindowID `json:"windowId"`
		Bounds   struct {
			WindowState browser.WindowState `json:"windowState"`
		} `json:"bounds"`
	}{WindowID: windowID}
	params.Bounds.WindowState = state
	return r.call(ctx, "", "Browser.setWindowBounds", params, nil)
}

func (r *rawCDP) activateTarget(ctx context.Context, targetID target.ID) error {
	params := struct {
		TargetID target.ID `json:"targetId"`
	}{TargetID: targetID}
	return r.call(ctx, "", "Target.activateTarget", params, nil)
}

// createTarget opens url in a new tab of the last focused window, or in a new
// window when newWindow is set.
func (r *rawCDP) createTarget(ctx context.Context, url string, newWindow bool) (target.ID, error) {
	params := struct {
		URL       string `json:"url"`
		NewWindow bool   `json:"newWindow,omitempty"`
	}{URL: url, NewWindow: newWindow}

	var out struct {
		TargetID target.ID `json:"targetId"`
	}
	if err := r.call(ctx, "", "Target.createTarget", params, &out); err != nil {
		return "", err
	}
	return out.TargetID, nil
}

func (r *rawCDP) targetInfo(ctx context.Context, targetID target.ID) (*target.Info, error) {
	params := struct {
		TargetID target.ID `json:"targetId"`
	}{TargetID: targetID}

	var out struct {
		TargetInfo *target.Info `json:"targetInfo"`
	}
	if err := r.call(ctx, "", "Target.getTargetInfo", params, &out); err != nil {
		return nil, err
	}
	if out.TargetInfo == nil {
		return nil, fmt.Errorf("rawcdp: Target.getTargetInfo: empty target info")
	}
	return out.TargetInfo, nil
}

func (r *rawCDP) navigate(ctx context.Context, targetID target.ID, url string) error {
	return r.withSession(ctx, targetID, func(sessionID string) error {
		params := struct {
			URL string `json:"url"`
		}{URL: url}

		var out struct {
			ErrorText string `json:"errorText"`
		}
		if err := r.call(ctx, sessionID, "Page.navigate", params, &out); err != nil {
			return err
		}
		if out.ErrorText != "" {
			return fmt.Errorf("rawcdp: Page.navigate: %s", out.ErrorText)
		}
		return nil
	})
}

func (r *rawCDP) reload(ctx context.Context, targetID target.ID) error {
	return r.withSession(ctx, targetID, func(sessionID string) error {
		return r.call(ctx, sessionID, "Page.reload", nil, nil)
	})
}

// listTargets fetches open targets via the HTTP /json/list endpoint. Chrome
// lists page targets most recently activated first.
func (r *rawCDP) listTargets(ctx context.Context) ([]*target.Info, error) {
	listCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(listCtx, http.MethodGet, r.httpBase+"/json/list", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rawcdp: /json/list: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var entries []struct {
		ID    string `json:"id"`
		Type  string `json:"type"`
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, err
	}

	out := make([]*target.Info, 0, len(entries))
	for _, e := range entries {
		out = append(out, &target.Info{
			TargetID: target.ID(e.ID),
			Type:     e.Type,
			Title:    e.Title,
			URL:      e.URL,
		})
	}
	return out, nil
}

// browserWSURL fetches the WebSocket debugger URL from /json/version.
func (r *rawCDP) browserWSURL(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.httpBase+"/json/version", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("rawcdp: /json/version: HTTP %d", resp.StatusCode)
	}

	var info struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	if info.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("empty webSocketDebuggerUrl")
	}
	return info.WebSocketDebuggerURL, nil
}
