package profile

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dgnsrekt/chromescript/internal/snss"
	"github.com/dgnsrekt/chromescript/internal/types"
)

func encodeSession(t *testing.T, cmds ...snss.Command) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := snss.NewWriter(&buf, 1)
	if err != nil {
		t.Fatalf("snss.NewWriter() error = %v", err)
	}
	for _, cmd := range cmds {
		if err := w.Write(cmd); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	return buf.Bytes()
}

func writeSession(t *testing.T, dir string, data []byte) Profile {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("os.MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SessionFile), data, 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	return Profile{Name: filepath.Base(dir), Dir: filepath.Base(dir), Path: dir}
}

func TestWindowTabMapFromSession(t *testing.T) {
	data := encodeSession(t,
		snss.NewTabWindow(1, 0, nil),
		snss.NewTabWindow(1, 1, nil),
		snss.NewOpaque(99, []byte{1, 2, 3, 4, 5, 6}),
	)
	p := writeSession(t, filepath.Join(t.TempDir(), "Default"), data)

	m, err := p.WindowTabMap()
	if err != nil {
		t.Fatalf("WindowTabMap() error = %v", err)
	}
	if got := m.WindowIDs(); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("WindowIDs() = %v; want [1]", got)
	}
	if got := m.Tabs(1); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("Tabs(1) = %v; want [0 1]", got)
	}
}

func TestWindowTabMapDuplicatesAreIdempotent(t *testing.T) {
	data := encodeSession(t,
		snss.NewTabWindow(4, 2, nil),
		snss.NewTabWindow(4, 2, []byte("trailing")),
		snss.NewTabWindow(5, 0, nil),
		snss.NewTabWindow(4, 2, nil),
	)
	r, err := snss.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("snss.NewReader() error = %v", err)
	}
	m, err := BuildWindowTabMap(r)
	if err != nil {
		t.Fatalf("BuildWindowTabMap() error = %v", err)
	}
	if len(m[4]) != 1 || !m.Has(4) || !m.Has(5) || m.Has(6) {
		t.Fatalf("map = %v; want {4: {2}, 5: {0}}", m)
	}
}

func TestWindowTabMapSessionUnavailable(t *testing.T) {
	p := Profile{Name: "Ghost", Path: filepath.Join(t.TempDir(), "Profile 9")}
	_, err := p.WindowTabMap()
	if !types.HasCode(err, types.CodeSessionUnavailable) {
		t.Fatalf("WindowTabMap() error = %v; want %s", err, types.CodeSessionUnavailable)
	}
}

func TestWindowTabMapCorruptSession(t *testing.T) {
	data := encodeSession(t, snss.NewTabWindow(1, 0, nil))
	data = append(data, 0x20, 0x00, 0x00, 0x00, 0x01)
	p := writeSession(t, filepath.Join(t.TempDir(), "Default"), data)

	m, err := p.WindowTabMap()
	if !types.HasCode(err, types.CodeCorruptSession) {
		t.Fatalf("WindowTabMap() error = %v; want %s", err, types.CodeCorruptSession)
	}
	if m != nil {
		t.Fatalf("WindowTabMap() = %v; want nil on corruption", m)
	}
}
