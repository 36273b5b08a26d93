package journal

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/chromescript/internal/discovery"
	"github.com/dgnsrekt/chromescript/internal/types"
)

type noWindows struct{}

func (noWindows) Windows(context.Context, types.ProcessInfo) ([]types.LiveWindow, error) {
	return nil, types.NewError(types.CodeCDPUnavailable, "remote debugging disabled", nil)
}

func TestWriterRecordsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "discovery.jsonl")
	w, err := NewWriter(path, 1)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	corr := discovery.NewCorrelator(noWindows{}).Build(context.Background(), []*discovery.ChromeProcess{
		{ProcessInfo: types.ProcessInfo{PID: 7, ConfigDir: "/x"}},
	})
	if err := w.Record(corr); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := w.Record(corr); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := ReadEntries(path)
	if err != nil {
		t.Fatalf("ReadEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d; want 2", len(entries))
	}
	e := entries[0]
	if _, err := uuid.Parse(e.ID); err != nil {
		t.Fatalf("entry ID %q is not a uuid: %v", e.ID, err)
	}
	if entries[1].ID == e.ID {
		t.Fatalf("entry IDs repeat: %q", e.ID)
	}
	if !e.Time.Equal(fixed) || e.Failures != 1 || len(e.Profiles) != 0 {
		t.Fatalf("entry = %+v; want fixed time, 1 failure, no profiles", e)
	}
}

func TestReadEntriesSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discovery.jsonl")
	content := `{"id":"a","time":"2026-01-02T03:04:05Z","profiles":{"Work":[12]},"failures":0}
not json
{"id":"b","time":"2026-01-02T03:05:05Z","profiles":{},"failures":2}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	entries, err := ReadEntries(path)
	if err != nil {
		t.Fatalf("ReadEntries() error = %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "a" || entries[1].ID != "b" {
		t.Fatalf("entries = %+v; want a, b", entries)
	}
	if !reflect.DeepEqual(entries[0].Profiles, map[string][]int{"Work": {12}}) {
		t.Fatalf("entries[0].Profiles = %v", entries[0].Profiles)
	}
}
