package locator

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/dgnsrekt/chromescript/internal/types"
)

// Lsof locates processes through the lsof utility.
type Lsof struct {
	pattern *regexp.Regexp
	run     func(ctx context.Context, args ...string) ([]byte, error)
}

// NewLsof returns a locator running lsof from PATH.
func NewLsof(pattern *regexp.Regexp) *Lsof {
	return &Lsof{pattern: pattern, run: runLsof}
}

func runLsof(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "lsof", args...).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		// lsof exits 1 when nothing matched.
		return out, nil
	}
	return out, err
}

// Find implements types.ProcessLocator.
func (l *Lsof) Find(ctx context.Context, pid int) ([]types.ProcessInfo, error) {
	args := []string{"-F", "pn", "-b", "-w"}
	if pid > 0 {
		args = append(args, "-p", strconv.Itoa(pid))
	} else {
		args = append(args, "-c", "/"+l.pattern.String()+"/")
	}

	out, err := l.run(ctx, args...)
	if err != nil {
		return nil, types.NewError(types.CodeLocatorUnavailable, "run lsof", err)
	}
	procs := filterPID(parseLsof(out), pid)
	slog.Debug("locator lsof done", "processes", len(procs))
	return procs, nil
}
