package cdpcontrol

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/chromescript/internal/types"
)

func writePortFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ActivePortFile), []byte(content), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
}

func TestReadDevToolsActivePort(t *testing.T) {
	dir := t.TempDir()
	writePortFile(t, dir, "9222\n/devtools/browser/5c1e0f0a-9d2b-4b6e-a1f7-3f6b5a0e2c11\n")

	ep, err := ReadDevToolsActivePort(dir)
	if err != nil {
		t.Fatalf("ReadDevToolsActivePort() error = %v", err)
	}
	if ep.Port != 9222 || ep.Path != "/devtools/browser/5c1e0f0a-9d2b-4b6e-a1f7-3f6b5a0e2c11" {
		t.Fatalf("ReadDevToolsActivePort() = %+v", ep)
	}
	if got := ep.HTTPBase("127.0.0.1"); got != "http://127.0.0.1:9222" {
		t.Fatalf("HTTPBase() = %q", got)
	}
	if got := ep.WebSocketURL("::1"); got != "ws://[::1]:9222/devtools/browser/5c1e0f0a-9d2b-4b6e-a1f7-3f6b5a0e2c11" {
		t.Fatalf("WebSocketURL() = %q", got)
	}
}

func TestReadDevToolsActivePortWithoutPath(t *testing.T) {
	dir := t.TempDir()
	writePortFile(t, dir, "41233")

	ep, err := ReadDevToolsActivePort(dir)
	if err != nil {
		t.Fatalf("ReadDevToolsActivePort() error = %v", err)
	}
	if ep.Port != 41233 || ep.WebSocketURL("127.0.0.1") != "" {
		t.Fatalf("ReadDevToolsActivePort() = %+v; want port only", ep)
	}
}

func TestReadDevToolsActivePortErrors(t *testing.T) {
	missing := t.TempDir()
	if _, err := ReadDevToolsActivePort(missing); !types.HasCode(err, types.CodeCDPUnavailable) {
		t.Fatalf("missing file error = %v; want %s", err, types.CodeCDPUnavailable)
	}

	for _, content := range []string{"", "not-a-port\n/devtools/browser/x", "70000\n"} {
		dir := t.TempDir()
		writePortFile(t, dir, content)
		if _, err := ReadDevToolsActivePort(dir); !types.HasCode(err, types.CodeCDPUnavailable) {
			t.Fatalf("ReadDevToolsActivePort(%q) error = %v; want %s", content, err, types.CodeCDPUnavailable)
		}
	}
}
