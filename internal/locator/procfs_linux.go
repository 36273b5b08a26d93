//go:build linux

package locator

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"regexp"

	"github.com/prometheus/procfs"

	"github.com/dgnsrekt/chromescript/internal/types"
)

// Procfs locates processes by walking /proc and reading their fd links.
type Procfs struct {
	fs      procfs.FS
	pattern *regexp.Regexp
}

// NewProcfs opens the proc filesystem at mountPoint, or the default mount
// when mountPoint is empty.
func NewProcfs(mountPoint string, pattern *regexp.Regexp) (*Procfs, error) {
	if mountPoint == "" {
		mountPoint = procfs.DefaultMountPoint
	}
	pfs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, types.NewError(types.CodeLocatorUnavailable, "open "+mountPoint, err)
	}
	return &Procfs{fs: pfs, pattern: pattern}, nil
}

// Find implements types.ProcessLocator.
func (p *Procfs) Find(ctx context.Context, pid int) ([]types.ProcessInfo, error) {
	var procs procfs.Procs
	if pid > 0 {
		proc, err := p.fs.Proc(pid)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, types.NewError(types.CodeLocatorUnavailable, "read process", err)
		}
		procs = procfs.Procs{proc}
	} else {
		all, err := p.fs.AllProcs()
		if err != nil {
			return nil, types.NewError(types.CodeLocatorUnavailable, "list processes", err)
		}
		procs = all
	}

	found := collector{}
	for _, proc := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		comm, err := proc.Comm()
		if err != nil || !p.pattern.MatchString(comm) {
			continue
		}
		targets, err := proc.FileDescriptorTargets()
		if err != nil {
			// Other users' processes are unreadable; skip them.
			slog.Debug("locator fd targets unreadable", "pid", proc.PID, "error", err)
			continue
		}
		for _, target := range targets {
			found.add(proc.PID, target)
		}
	}

	out := found.result()
	slog.Debug("locator procfs done", "scanned", len(procs), "processes", len(out))
	return out, nil
}
