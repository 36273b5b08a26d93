package discovery

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgnsrekt/chromescript/internal/types"
)

// Selector picks a process by PID, config path or profile name. Exactly one
// field must be set.
type Selector struct {
	PID     int    `json:"pid,omitempty"`
	Path    string `json:"path,omitempty"`
	Profile string `json:"profile,omitempty"`
}

// ByPID selects a process by PID.
func ByPID(pid int) Selector {
	return Selector{PID: pid}
}

// ByPath selects a process by its config directory.
func ByPath(path string) Selector {
	return Selector{Path: path}
}

// ByProfile selects the process owning a profile's live windows.
func ByProfile(name string) Selector {
	return Selector{Profile: name}
}

// Validate checks that exactly one selector field is set.
func (s Selector) Validate() error {
	set := 0
	if s.PID != 0 {
		set++
	}
	if strings.TrimSpace(s.Path) != "" {
		set++
	}
	if strings.TrimSpace(s.Profile) != "" {
		set++
	}
	switch {
	case set == 0:
		return types.NewError(types.CodeValidation, "one of pid, path or profile is required", nil)
	case set > 1:
		return types.NewError(types.CodeValidation, "only one of pid, path or profile may be set", nil)
	case s.PID < 0:
		return types.NewError(types.CodeValidation, fmt.Sprintf("invalid pid %d", s.PID), nil)
	}
	return nil
}

func (s Selector) String() string {
	switch {
	case s.Profile != "":
		return "profile=" + s.Profile
	case s.Path != "":
		return "path=" + s.Path
	default:
		return fmt.Sprintf("pid=%d", s.PID)
	}
}

func cleanPath(p string) string {
	return filepath.Clean(strings.TrimSpace(p))
}

func (s Selector) normalized() Selector {
	s.Path = strings.TrimSpace(s.Path)
	s.Profile = strings.TrimSpace(s.Profile)
	return s
}
