package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dgnsrekt/chromescript/internal/profile"
	"github.com/dgnsrekt/chromescript/internal/types"
)

// Recorder receives every correlation a Session builds.
type Recorder interface {
	Record(c *Correlation) error
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder sends each refreshed correlation to r. Recorders run in the
// order they were added.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorders = append(s.recorders, r) }
}

// Session caches discovered processes and their correlation for one batch of
// queries. Nothing is invalidated automatically; call Refresh for fresh data.
type Session struct {
	locator    types.ProcessLocator
	windows    types.WindowEnumerator
	correlator *Correlator
	recorders  []Recorder
	catalogs   func(configRoot string) (profile.Catalog, error)

	mu     sync.Mutex
	loaded bool
	procs  []*ChromeProcess
	byPID  map[int]*ChromeProcess
	byPath map[string]*ChromeProcess
	corr   *Correlation
}

// NewSession returns an empty Session. The first query triggers a Refresh.
func NewSession(locator types.ProcessLocator, windows types.WindowEnumerator, opts ...Option) *Session {
	s := &Session{
		locator:    locator,
		windows:    windows,
		correlator: NewCorrelator(windows),
		catalogs:   profile.LoadCatalog,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh rediscovers processes, reloads their catalogs and rebuilds the
// correlation. A process whose config cannot be read is excluded and
// recorded as a failure.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	infos, err := s.locator.Find(ctx, 0)
	if err != nil {
		slog.Error("discovery locate processes failed", "error", err)
		return err
	}

	var failures []Failure
	procs := make([]*ChromeProcess, 0, len(infos))
	byPID := make(map[int]*ChromeProcess, len(infos))
	byPath := make(map[string]*ChromeProcess, len(infos))
	for _, info := range infos {
		if _, dup := byPID[info.PID]; dup {
			continue
		}
		catalog, err := s.catalogs(info.ConfigDir)
		if err != nil {
			slog.Warn("discovery process excluded", "pid", info.PID, "config_dir", info.ConfigDir, "error", err)
			failures = append(failures, newFailure(info, "", err))
			continue
		}
		proc := &ChromeProcess{ProcessInfo: info, Catalog: catalog}
		procs = append(procs, proc)
		byPID[info.PID] = proc
		byPath[cleanPath(info.ConfigDir)] = proc
	}
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })

	corr := s.correlator.Build(ctx, procs)
	corr.Failures = append(failures, corr.Failures...)

	s.procs, s.byPID, s.byPath, s.corr = procs, byPID, byPath, corr
	s.loaded = true

	slog.Info("discovery refresh done",
		"processes", len(procs), "profiles", corr.Len(), "failures", len(corr.Failures))

	for _, r := range s.recorders {
		if err := r.Record(corr); err != nil {
			slog.Warn("discovery recorder failed", "recorder", fmt.Sprintf("%T", r), "error", err)
		}
	}
	return nil
}

func (s *Session) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.refreshLocked(ctx)
}

// Processes returns the discovered processes by ascending PID.
func (s *Session) Processes(ctx context.Context) ([]*ChromeProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	out := make([]*ChromeProcess, len(s.procs))
	copy(out, s.procs)
	return out, nil
}

// Correlation returns the current correlation snapshot.
func (s *Session) Correlation(ctx context.Context) (*Correlation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return s.corr, nil
}

// Resolve finds the process a selector names.
func (s *Session) Resolve(ctx context.Context, sel Selector) (*ChromeProcess, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	sel = sel.normalized()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	switch {
	case sel.Profile != "":
		return s.corr.Resolve(sel.Profile)
	case sel.Path != "":
		if proc, ok := s.byPath[cleanPath(sel.Path)]; ok {
			return proc, nil
		}
	default:
		if proc, ok := s.byPID[sel.PID]; ok {
			return proc, nil
		}
	}
	return nil, types.NewError(types.CodeNotFound, "no browser process for "+sel.String(), nil)
}

// LiveWindows lists the live windows of the selected process.
func (s *Session) LiveWindows(ctx context.Context, sel Selector) ([]types.LiveWindow, error) {
	proc, err := s.Resolve(ctx, sel)
	if err != nil {
		return nil, err
	}
	return s.windows.Windows(ctx, proc.ProcessInfo)
}

// Window resolves a selector to one live window. For a profile selector it is
// the lowest-ID live window owned by that profile; otherwise the process's
// first window.
func (s *Session) Window(ctx context.Context, sel Selector) (types.LiveWindow, error) {
	sel = sel.normalized()
	proc, err := s.Resolve(ctx, sel)
	if err != nil {
		return nil, err
	}
	windows, err := s.windows.Windows(ctx, proc.ProcessInfo)
	if err != nil {
		return nil, err
	}

	if sel.Profile == "" {
		if len(windows) == 0 {
			return nil, types.NewError(types.CodeNotFound, "no open window for "+sel.String(), nil)
		}
		return windows[0], nil
	}

	s.mu.Lock()
	owned := s.corr.Windows(proc.PID, sel.Profile)
	s.mu.Unlock()
	for _, id := range owned {
		for _, w := range windows {
			if w.ID() == id {
				return w, nil
			}
		}
	}
	return nil, types.NewError(types.CodeNotFound, "profile "+sel.Profile+" has no open window", nil)
}

// OpenURL opens url in a new tab of the selected window, or navigates its
// active tab when newTab is false. The returned window holds the new tab.
func (s *Session) OpenURL(ctx context.Context, url string, newTab bool, sel Selector) (types.LiveWindow, error) {
	w, err := s.Window(ctx, sel)
	if err != nil {
		return nil, err
	}
	if newTab {
		opened, err := w.OpenTab(ctx, url)
		if err != nil {
			return nil, err
		}
		slog.Info("discovery opened tab", "selector", sel.String(), "window_id", w.ID(), "url", url)
		return opened, nil
	}
	if err := w.SetURL(ctx, url); err != nil {
		return nil, err
	}
	slog.Info("discovery navigated window", "selector", sel.String(), "window_id", w.ID(), "url", url)
	return w, nil
}

// OpenWindow opens url in a new top-level window of the selected process.
func (s *Session) OpenWindow(ctx context.Context, url string, sel Selector) (types.LiveWindow, error) {
	opener, ok := s.windows.(types.WindowOpener)
	if !ok {
		return nil, types.NewError(types.CodeValidation, "window enumerator cannot open windows", nil)
	}
	proc, err := s.Resolve(ctx, sel)
	if err != nil {
		return nil, err
	}
	return opener.OpenWindow(ctx, proc.ProcessInfo, url)
}

// Activate brings the selected window to the front.
func (s *Session) Activate(ctx context.Context, sel Selector) (types.LiveWindow, error) {
	w, err := s.Window(ctx, sel)
	if err != nil {
		return nil, err
	}
	return w, w.Activate(ctx)
}
