// Package profile reads a browser config root: its named profiles and the
// windows each profile's session-state log records.
package profile

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dgnsrekt/chromescript/internal/types"
)

// LocalStateFile is the top-level config file inside a config root.
const LocalStateFile = "Local State"

// Profile is a named browser identity with its own storage directory.
type Profile struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
	Path string `json:"path"`
}

// Catalog maps profile display names to profiles.
type Catalog map[string]Profile

// Names returns the profile names in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type localState struct {
	Profile *struct {
		InfoCache map[string]struct {
			Name *string `json:"name"`
		} `json:"info_cache"`
	} `json:"profile"`
}

// LoadCatalog reads <configRoot>/Local State. Storage paths are not checked
// for existence.
func LoadCatalog(configRoot string) (Catalog, error) {
	path := filepath.Join(configRoot, LocalStateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewError(types.CodeConfigUnavailable, "read "+path, err)
	}

	var state localState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, types.NewError(types.CodeConfigUnavailable, "parse "+path, err)
	}
	if state.Profile == nil || state.Profile.InfoCache == nil {
		return nil, types.NewError(types.CodeConfigUnavailable, path+": missing profile.info_cache", nil)
	}

	dirs := make([]string, 0, len(state.Profile.InfoCache))
	for dir := range state.Profile.InfoCache {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	catalog := make(Catalog, len(dirs))
	for _, dir := range dirs {
		entry := state.Profile.InfoCache[dir]
		if entry.Name == nil {
			return nil, types.NewError(types.CodeConfigUnavailable, path+": profile "+dir+" has no name", nil)
		}
		name := *entry.Name
		if prev, ok := catalog[name]; ok {
			slog.Debug("duplicate profile name, keeping first directory",
				"name", name, "kept", prev.Dir, "skipped", dir)
			continue
		}
		catalog[name] = Profile{Name: name, Dir: dir, Path: filepath.Join(configRoot, dir)}
	}

	slog.Debug("profile catalog loaded", "config_root", configRoot, "profiles", len(catalog))
	return catalog, nil
}
