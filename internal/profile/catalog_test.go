package profile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dgnsrekt/chromescript/internal/types"
)

func writeLocalState(t *testing.T, root, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, LocalStateFile), []byte(content), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	root := t.TempDir()
	writeLocalState(t, root, `{
		"browser": {"enabled_labs_experiments": []},
		"profile": {
			"last_used": "Profile 1",
			"info_cache": {
				"Default": {"name": "Person 1", "is_using_default_name": true},
				"Profile 1": {"name": "Work", "avatar_icon": "chrome://theme/IDR_PROFILE_AVATAR_26"}
			}
		}
	}`)

	catalog, err := LoadCatalog(root)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if got, want := catalog.Names(), []string{"Person 1", "Work"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v; want %v", got, want)
	}
	work := catalog["Work"]
	if work.Dir != "Profile 1" || work.Path != filepath.Join(root, "Profile 1") {
		t.Fatalf("catalog[Work] = %+v", work)
	}
	if got := work.SessionPath(); got != filepath.Join(root, "Profile 1", "Current Session") {
		t.Fatalf("SessionPath() = %q", got)
	}
}

func TestLoadCatalogDuplicateNamesKeepFirstDir(t *testing.T) {
	root := t.TempDir()
	writeLocalState(t, root, `{"profile": {"info_cache": {
		"Profile 2": {"name": "Work"},
		"Profile 1": {"name": "Work"}
	}}}`)

	catalog, err := LoadCatalog(root)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(catalog) != 1 || catalog["Work"].Dir != "Profile 1" {
		t.Fatalf("catalog = %+v; want single Work entry in Profile 1", catalog)
	}
}

func TestLoadCatalogEmptyInfoCache(t *testing.T) {
	root := t.TempDir()
	writeLocalState(t, root, `{"profile": {"info_cache": {}}}`)

	catalog, err := LoadCatalog(root)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(catalog) != 0 {
		t.Fatalf("len(catalog) = %d; want 0", len(catalog))
	}
}

func TestLoadCatalogConfigUnavailable(t *testing.T) {
	cases := map[string]string{
		"missing info_cache": `{"profile": {"last_used": "Default"}}`,
		"missing profile":    `{"browser": {}}`,
		"malformed json":     `{"profile": `,
		"entry without name": `{"profile": {"info_cache": {"Default": {"avatar_icon": "x"}}}}`,
		"wrong shape":        `{"profile": {"info_cache": []}}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeLocalState(t, root, content)
			catalog, err := LoadCatalog(root)
			if !types.HasCode(err, types.CodeConfigUnavailable) {
				t.Fatalf("LoadCatalog() error = %v; want %s", err, types.CodeConfigUnavailable)
			}
			if catalog != nil {
				t.Fatalf("LoadCatalog() catalog = %v; want nil", catalog)
			}
		})
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(t.TempDir())
	if !types.HasCode(err, types.CodeConfigUnavailable) {
		t.Fatalf("LoadCatalog() error = %v; want %s", err, types.CodeConfigUnavailable)
	}
}
