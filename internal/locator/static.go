package locator

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dgnsrekt/chromescript/internal/types"
)

// SingletonLock is the symlink a running browser keeps in its config root.
// Its target has the form "<hostname>-<pid>".
const SingletonLock = "SingletonLock"

// Static reports a fixed list of config roots. A root counts as live only
// while its SingletonLock names a process.
type Static struct {
	roots []string
}

// NewStatic returns a locator over roots. Blank entries are dropped.
func NewStatic(roots []string) *Static {
	s := &Static{}
	for _, r := range roots {
		if r = strings.TrimSpace(r); r != "" {
			s.roots = append(s.roots, filepath.Clean(r))
		}
	}
	return s
}

// Find implements types.ProcessLocator.
func (s *Static) Find(_ context.Context, pid int) ([]types.ProcessInfo, error) {
	seen := make(map[int]bool, len(s.roots))
	var out []types.ProcessInfo
	for _, root := range s.roots {
		lockPID, err := lockOwner(root)
		if err != nil {
			slog.Debug("locator static root not running", "config_dir", root, "error", err)
			continue
		}
		if seen[lockPID] {
			continue
		}
		seen[lockPID] = true
		out = append(out, types.ProcessInfo{PID: lockPID, ConfigDir: root})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return filterPID(out, pid), nil
}

func lockOwner(root string) (int, error) {
	target, err := os.Readlink(filepath.Join(root, SingletonLock))
	if err != nil {
		return 0, err
	}
	i := strings.LastIndexByte(target, '-')
	pid, err := strconv.Atoi(target[i+1:])
	if err != nil || pid <= 0 {
		return 0, types.NewError(types.CodeValidation, "malformed lock target "+strconv.Quote(target), err)
	}
	return pid, nil
}
