// Package discovery correlates live browser processes with the profiles whose
// session logs own their windows.
package discovery

import (
	"context"
	"log/slog"
	"sort"

	"github.com/dgnsrekt/chromescript/internal/profile"
	"github.com/dgnsrekt/chromescript/internal/types"
)

// ChromeProcess is a live browser process with its resolved profile catalog.
type ChromeProcess struct {
	types.ProcessInfo
	Catalog profile.Catalog
}

// Failure records a process or profile that could not take part in a
// correlation. Profile is empty for process-level failures.
type Failure struct {
	PID       int    `json:"pid"`
	ConfigDir string `json:"config_dir"`
	Profile   string `json:"profile,omitempty"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}

func newFailure(info types.ProcessInfo, profileName string, err error) Failure {
	return Failure{
		PID:       info.PID,
		ConfigDir: info.ConfigDir,
		Profile:   profileName,
		Code:      types.CodeOf(err),
		Error:     err.Error(),
	}
}

// Correlation is a snapshot of profile ownership across processes. A process
// is listed under a profile only when at least one of its live window IDs
// appears in that profile's session log.
type Correlation struct {
	profiles map[string][]*ChromeProcess
	windows  map[int]map[string][]int
	Failures []Failure
}

func newCorrelation() *Correlation {
	return &Correlation{
		profiles: make(map[string][]*ChromeProcess),
		windows:  make(map[int]map[string][]int),
	}
}

// Len returns the number of profiles with at least one owning process.
func (c *Correlation) Len() int { return len(c.profiles) }

// ProfileNames returns the correlated profile names in sorted order.
func (c *Correlation) ProfileNames() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Processes returns the processes owning windows of a profile, by ascending PID.
func (c *Correlation) Processes(profileName string) []*ChromeProcess {
	return c.profiles[profileName]
}

// Windows returns the live window IDs of pid that belong to a profile.
func (c *Correlation) Windows(pid int, profileName string) []int {
	return c.windows[pid][profileName]
}

// Resolve picks the lowest-PID process owning the profile. Several processes
// hosting one profile is unusual; the choice among them is arbitrary but stable.
func (c *Correlation) Resolve(profileName string) (*ChromeProcess, error) {
	procs := c.profiles[profileName]
	if len(procs) == 0 {
		return nil, types.NewError(types.CodeNotFound, "no live window for profile "+profileName, nil)
	}
	return procs[0], nil
}

func (c *Correlation) add(proc *ChromeProcess, profileName string, windowIDs []int) {
	c.profiles[profileName] = append(c.profiles[profileName], proc)
	byProfile, ok := c.windows[proc.PID]
	if !ok {
		byProfile = make(map[string][]int)
		c.windows[proc.PID] = byProfile
	}
	byProfile[profileName] = windowIDs
}

// ProfileSummary is a serialisable view of one correlated profile.
type ProfileSummary struct {
	Name      string           `json:"name"`
	Processes []ProcessWindows `json:"processes"`
}

// ProcessWindows lists the live windows a process hosts for a profile.
type ProcessWindows struct {
	PID       int    `json:"pid"`
	ConfigDir string `json:"config_dir"`
	WindowIDs []int  `json:"window_ids"`
}

// Summary returns every correlated profile sorted by name.
func (c *Correlation) Summary() []ProfileSummary {
	out := make([]ProfileSummary, 0, len(c.profiles))
	for _, name := range c.ProfileNames() {
		s := ProfileSummary{Name: name}
		for _, proc := range c.profiles[name] {
			s.Processes = append(s.Processes, ProcessWindows{
				PID:       proc.PID,
				ConfigDir: proc.ConfigDir,
				WindowIDs: c.Windows(proc.PID, name),
			})
		}
		out = append(out, s)
	}
	return out
}

// Correlator builds correlations from live window enumeration and profile
// session logs.
type Correlator struct {
	windows types.WindowEnumerator
	tabMaps func(profile.Profile) (profile.WindowTabMap, error)
}

// NewCorrelator returns a Correlator reading session logs from disk.
func NewCorrelator(windows types.WindowEnumerator) *Correlator {
	return &Correlator{
		windows: windows,
		tabMaps: profile.Profile.WindowTabMap,
	}
}

// Build correlates procs. A process whose windows cannot be listed, or a
// profile whose session log is missing or corrupt, is recorded in Failures
// and skipped; the rest of the batch still correlates.
func (c *Correlator) Build(ctx context.Context, procs []*ChromeProcess) *Correlation {
	corr := newCorrelation()

	sorted := make([]*ChromeProcess, len(procs))
	copy(sorted, procs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PID < sorted[j].PID })

	for _, proc := range sorted {
		live, err := c.liveWindowIDs(ctx, proc.ProcessInfo)
		if err != nil {
			slog.Warn("discovery live windows failed", "pid", proc.PID, "error", err)
			corr.Failures = append(corr.Failures, newFailure(proc.ProcessInfo, "", err))
			continue
		}

		for _, name := range proc.Catalog.Names() {
			tabMap, err := c.tabMaps(proc.Catalog[name])
			if err != nil {
				slog.Debug("discovery profile session skipped", "pid", proc.PID, "profile", name, "error", err)
				corr.Failures = append(corr.Failures, newFailure(proc.ProcessInfo, name, err))
				continue
			}
			if matched := intersect(live, tabMap); len(matched) > 0 {
				corr.add(proc, name, matched)
			}
		}
	}

	slog.Debug("discovery correlation built",
		"processes", len(procs), "profiles", corr.Len(), "failures", len(corr.Failures))
	return corr
}

func (c *Correlator) liveWindowIDs(ctx context.Context, info types.ProcessInfo) ([]int, error) {
	windows, err := c.windows.Windows(ctx, info)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(windows))
	for _, w := range windows {
		ids = append(ids, w.ID())
	}
	return ids, nil
}

// intersect returns the sorted, de-duplicated live IDs present in tabMap.
func intersect(live []int, tabMap profile.WindowTabMap) []int {
	seen := make(map[int]struct{}, len(live))
	var out []int
	for _, id := range live {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if tabMap.Has(id) {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
