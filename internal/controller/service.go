package controller

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dgnsrekt/chromescript/internal/discovery"
	"github.com/dgnsrekt/chromescript/internal/types"
)

// ProcessInfo describes a discovered browser process.
type ProcessInfo struct {
	PID       int      `json:"pid"`
	ConfigDir string   `json:"config_dir"`
	Profiles  []string `json:"profiles"`
}

// ProfilesResult is the current correlation.
type ProfilesResult struct {
	Profiles []discovery.ProfileSummary `json:"profiles"`
	Failures []discovery.Failure        `json:"failures"`
}

// WindowInfo describes a live browser window.
type WindowInfo struct {
	ID        int    `json:"id"`
	URL       string `json:"url"`
	Minimized bool   `json:"minimized"`
}

// OpenRequest asks for url to be shown in the selected browser.
type OpenRequest struct {
	URL       string
	NewTab    bool
	NewWindow bool
	Selector  discovery.Selector
}

// OpenResult reports where a URL was opened.
type OpenResult struct {
	WindowID int    `json:"window_id"`
	URL      string `json:"url"`
	Mode     string `json:"mode"`
}

const (
	ModeNavigate  = "navigate"
	ModeNewTab    = "new_tab"
	ModeNewWindow = "new_window"
)

// Service wraps discovery and window control operations.
type Service struct {
	session *discovery.Session
}

func NewService(session *discovery.Session) *Service {
	return &Service{session: session}
}

func (s *Service) requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &types.CodedError{Code: types.CodeValidation, Message: fieldName + " is required"}
	}
	return nil
}

func (s *Service) requireURL(raw string) (string, error) {
	if err := s.requireNonEmpty(raw, "url"); err != nil {
		return "", err
	}
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "", &types.CodedError{Code: types.CodeValidation, Message: "url must be absolute: " + raw, Cause: err}
	}
	return raw, nil
}

func (s *Service) ListProcesses(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := s.session.Processes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		out = append(out, ProcessInfo{PID: p.PID, ConfigDir: p.ConfigDir, Profiles: p.Catalog.Names()})
	}
	return out, nil
}

func (s *Service) ListProfiles(ctx context.Context) (ProfilesResult, error) {
	corr, err := s.session.Correlation(ctx)
	if err != nil {
		return ProfilesResult{}, err
	}
	out := ProfilesResult{Profiles: corr.Summary(), Failures: corr.Failures}
	if out.Failures == nil {
		out.Failures = []discovery.Failure{}
	}
	return out, nil
}

// Refresh rebuilds the discovery snapshot and returns the new correlation.
func (s *Service) Refresh(ctx context.Context) (ProfilesResult, error) {
	if err := s.session.Refresh(ctx); err != nil {
		return ProfilesResult{}, err
	}
	return s.ListProfiles(ctx)
}

func (s *Service) ListWindows(ctx context.Context, sel discovery.Selector) ([]WindowInfo, error) {
	windows, err := s.session.LiveWindows(ctx, sel)
	if err != nil {
		return nil, err
	}
	out := make([]WindowInfo, 0, len(windows))
	for _, w := range windows {
		info := WindowInfo{ID: w.ID()}
		if info.URL, err = w.URL(ctx); err != nil {
			slog.Warn("controller window url failed", "window_id", w.ID(), "error", err)
		}
		if info.Minimized, err = w.Minimized(ctx); err != nil {
			slog.Warn("controller window state failed", "window_id", w.ID(), "error", err)
		}
		out = append(out, info)
	}
	return out, nil
}

func (s *Service) Open(ctx context.Context, req OpenRequest) (OpenResult, error) {
	target, err := s.requireURL(req.URL)
	if err != nil {
		return OpenResult{}, err
	}
	if err := req.Selector.Validate(); err != nil {
		return OpenResult{}, err
	}
	if req.NewTab && req.NewWindow {
		return OpenResult{}, &types.CodedError{Code: types.CodeValidation, Message: "new_tab and new_window are mutually exclusive"}
	}

	var (
		w    types.LiveWindow
		mode string
	)
	switch {
	case req.NewWindow:
		mode = ModeNewWindow
		w, err = s.session.OpenWindow(ctx, target, req.Selector)
	case req.NewTab:
		mode = ModeNewTab
		w, err = s.session.OpenURL(ctx, target, true, req.Selector)
	default:
		mode = ModeNavigate
		w, err = s.session.OpenURL(ctx, target, false, req.Selector)
	}
	if err != nil {
		return OpenResult{}, err
	}
	return OpenResult{WindowID: w.ID(), URL: target, Mode: mode}, nil
}

func (s *Service) Activate(ctx context.Context, sel discovery.Selector) (WindowInfo, error) {
	w, err := s.session.Activate(ctx, sel)
	if err != nil {
		return WindowInfo{}, err
	}
	info := WindowInfo{ID: w.ID()}
	if u, err := w.URL(ctx); err == nil {
		info.URL = u
	}
	return info, nil
}

func (s *Service) Reload(ctx context.Context, sel discovery.Selector) (WindowInfo, error) {
	w, err := s.session.Window(ctx, sel)
	if err != nil {
		return WindowInfo{}, err
	}
	if err := w.Reload(ctx); err != nil {
		return WindowInfo{}, err
	}
	return WindowInfo{ID: w.ID()}, nil
}
