package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/chromescript/internal/profile"
	"github.com/dgnsrekt/chromescript/internal/snss"
	"github.com/dgnsrekt/chromescript/internal/types"
)

type fakeWindow struct {
	id        int
	url       string
	minimized bool
	opened    []string
	activated int
	reloaded  int
}

func (w *fakeWindow) ID() int { return w.id }

func (w *fakeWindow) URL(context.Context) (string, error) { return w.url, nil }

func (w *fakeWindow) SetURL(_ context.Context, url string) error {
	w.url = url
	return nil
}

func (w *fakeWindow) Minimized(context.Context) (bool, error) { return w.minimized, nil }

func (w *fakeWindow) OpenTab(_ context.Context, url string) (types.LiveWindow, error) {
	w.opened = append(w.opened, url)
	return &fakeWindow{id: w.id, url: url}, nil
}

func (w *fakeWindow) Activate(context.Context) error {
	w.activated++
	return nil
}

func (w *fakeWindow) Reload(context.Context) error {
	w.reloaded++
	return nil
}

type fakeEnumerator struct {
	windows map[int][]types.LiveWindow
	errs    map[int]error
	calls   int
}

func (e *fakeEnumerator) Windows(_ context.Context, proc types.ProcessInfo) ([]types.LiveWindow, error) {
	e.calls++
	if err := e.errs[proc.PID]; err != nil {
		return nil, err
	}
	return e.windows[proc.PID], nil
}

type fakeLocator struct {
	procs []types.ProcessInfo
	err   error
	calls int
}

func (l *fakeLocator) Find(_ context.Context, pid int) ([]types.ProcessInfo, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	if pid == 0 {
		return l.procs, nil
	}
	var out []types.ProcessInfo
	for _, p := range l.procs {
		if p.PID == pid {
			out = append(out, p)
		}
	}
	return out, nil
}

func windowsOf(ids ...int) []types.LiveWindow {
	out := make([]types.LiveWindow, 0, len(ids))
	for _, id := range ids {
		out = append(out, &fakeWindow{id: id})
	}
	return out
}

// writeConfigRoot lays out a browser config root with one profile directory
// per entry of sessions, keyed by profile display name. A nil window slice
// leaves that profile without a session file.
func writeConfigRoot(t *testing.T, sessions map[string][]uint32) string {
	t.Helper()
	root := t.TempDir()

	cache := make(map[string]map[string]string, len(sessions))
	i := 0
	for name, windows := range sessions {
		dir := "Profile " + string(rune('1'+i))
		i++
		cache[dir] = map[string]string{"name": name}
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("os.MkdirAll() failed: %v", err)
		}
		if windows == nil {
			continue
		}
		var buf bytes.Buffer
		w, err := snss.NewWriter(&buf, 1)
		if err != nil {
			t.Fatalf("snss.NewWriter() error = %v", err)
		}
		for _, id := range windows {
			if err := w.Write(snss.NewTabWindow(id, 0, nil)); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
		}
		if err := os.WriteFile(filepath.Join(root, dir, profile.SessionFile), buf.Bytes(), 0o644); err != nil {
			t.Fatalf("os.WriteFile() failed: %v", err)
		}
	}

	state, err := json.Marshal(map[string]any{"profile": map[string]any{"info_cache": cache}})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, profile.LocalStateFile), state, 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	return root
}
