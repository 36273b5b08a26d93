package types

import "context"

// ProcessInfo identifies a live browser process and the config root
// (user data directory) holding its active session.
type ProcessInfo struct {
	PID       int    `json:"pid"`
	ConfigDir string `json:"config_dir"`
}

// ProcessLocator enumerates live browser processes. A pid of 0 means all
// processes; otherwise the result is restricted to that pid.
type ProcessLocator interface {
	Find(ctx context.Context, pid int) ([]ProcessInfo, error)
}
