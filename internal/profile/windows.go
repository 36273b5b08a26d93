package profile

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dgnsrekt/chromescript/internal/snss"
)

// SessionFile is the session-state log inside a profile directory.
const SessionFile = "Current Session"

// WindowTabMap maps a window ID to the set of tab indices seen in it.
type WindowTabMap map[int]map[int]struct{}

// Add records that tab belongs to window. Repeated pairs are no-ops.
func (m WindowTabMap) Add(window, tab int) {
	tabs, ok := m[window]
	if !ok {
		tabs = make(map[int]struct{})
		m[window] = tabs
	}
	tabs[tab] = struct{}{}
}

// Has reports whether window appears in the map.
func (m WindowTabMap) Has(window int) bool {
	_, ok := m[window]
	return ok
}

// WindowIDs returns the window IDs in ascending order.
func (m WindowTabMap) WindowIDs() []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Tabs returns the tab indices of window in ascending order.
func (m WindowTabMap) Tabs(window int) []int {
	tabs := make([]int, 0, len(m[window]))
	for tab := range m[window] {
		tabs = append(tabs, tab)
	}
	sort.Ints(tabs)
	return tabs
}

// BuildWindowTabMap drains r and collects every set-tab-window command. The
// map models tabs ever seen in the session, not tabs currently open.
func BuildWindowTabMap(r *snss.Reader) (WindowTabMap, error) {
	m := make(WindowTabMap)
	for r.Next() {
		if window, tab, ok := r.Command().TabWindow(); ok {
			m.Add(int(window), int(tab))
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// SessionPath returns the path of the profile's session-state log.
func (p Profile) SessionPath() string {
	return filepath.Join(p.Path, SessionFile)
}

// WindowTabMap decodes the profile's session-state log.
func (p Profile) WindowTabMap() (WindowTabMap, error) {
	f, err := snss.Open(p.SessionPath())
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	defer func() { _ = f.Close() }()

	m, err := BuildWindowTabMap(f.Reader)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return m, nil
}
