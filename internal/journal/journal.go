// Package journal appends one JSON line per discovery refresh to a rotated
// log file.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/chromescript/internal/discovery"
)

// Entry is one journal line.
type Entry struct {
	ID       string           `json:"id"`
	Time     time.Time        `json:"time"`
	Profiles map[string][]int `json:"profiles"`
	Failures int              `json:"failures"`
}

var _ discovery.Recorder = (*Writer)(nil)

// Writer records correlations.
type Writer struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	now    func() time.Time
}

// NewWriter opens (creating parent directories) a journal at path, rotated
// at maxSizeMB.
func NewWriter(path string, maxSizeMB int) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	return &Writer{
		logger: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		},
		now: time.Now,
	}, nil
}

// Record appends a line for c.
func (w *Writer) Record(c *discovery.Correlation) error {
	entry := Entry{
		ID:       uuid.NewString(),
		Time:     w.now().UTC(),
		Profiles: make(map[string][]int, c.Len()),
		Failures: len(c.Failures),
	}
	for _, name := range c.ProfileNames() {
		for _, proc := range c.Processes(name) {
			entry.Profiles[name] = append(entry.Profiles[name], proc.PID)
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.logger.Close()
}

// ReadEntries returns the entries of the active journal file, oldest first.
// Malformed lines are skipped.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var e Entry
		if json.Unmarshal(sc.Bytes(), &e) != nil {
			continue
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
