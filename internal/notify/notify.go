// Package notify posts plain-text messages to an ntfy-style endpoint when
// profile ownership changes between discovery refreshes.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/chromescript/internal/discovery"
)

const defaultTimeout = 5 * time.Second

var _ discovery.Recorder = (*Notifier)(nil)

// Notifier sends a message whenever the profile to PID mapping differs from
// the previous correlation. The first correlation only sets the baseline.
type Notifier struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration

	mu      sync.Mutex
	last    string
	hasLast bool
}

// NewNotifier posts to endpoint with client, or http.DefaultClient when nil.
func NewNotifier(client *http.Client, endpoint string) *Notifier {
	return &Notifier{client: client, endpoint: endpoint, timeout: defaultTimeout}
}

// Record compares c with the previous correlation and notifies on change.
func (n *Notifier) Record(c *discovery.Correlation) error {
	current := Describe(c)

	n.mu.Lock()
	changed := n.hasLast && current != n.last
	previous := n.last
	n.last, n.hasLast = current, true
	n.mu.Unlock()

	if !changed {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	return Send(ctx, n.client, n.endpoint, fmt.Sprintf("chrome profiles changed\nbefore: %s\nafter: %s", orNone(previous), orNone(current)))
}

// Describe renders "Name=pid,pid Other=pid" in profile name order.
func Describe(c *discovery.Correlation) string {
	parts := make([]string, 0, c.Len())
	for _, name := range c.ProfileNames() {
		pids := make([]string, 0, 1)
		for _, proc := range c.Processes(name) {
			pids = append(pids, strconv.Itoa(proc.PID))
		}
		parts = append(parts, name+"="+strings.Join(pids, ","))
	}
	return strings.Join(parts, " ")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// Send sends a message to the requested endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint, message string) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy notification failed: status=%d", resp.StatusCode)
	}
	return nil
}
