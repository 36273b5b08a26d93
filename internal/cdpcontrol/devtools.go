// Package cdpcontrol enumerates and drives the live windows of a running
// browser over its DevTools endpoint.
package cdpcontrol

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgnsrekt/chromescript/internal/types"
)

// ActivePortFile is written into the config root by a browser started with
// remote debugging enabled.
const ActivePortFile = "DevToolsActivePort"

// Endpoint is a browser's DevTools listener.
type Endpoint struct {
	Port int
	// Path is the browser target's WebSocket path, e.g. "/devtools/browser/<uuid>".
	Path string
}

// HTTPBase returns the HTTP discovery base URL on host.
func (e Endpoint) HTTPBase(host string) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(e.Port))
}

// WebSocketURL returns the browser WebSocket URL on host, or "" when the
// port file carried no path.
func (e Endpoint) WebSocketURL(host string) string {
	if e.Path == "" {
		return ""
	}
	return "ws://" + net.JoinHostPort(host, strconv.Itoa(e.Port)) + e.Path
}

// ReadDevToolsActivePort reads the DevTools endpoint of the browser owning
// configDir.
func ReadDevToolsActivePort(configDir string) (Endpoint, error) {
	path := filepath.Join(configDir, ActivePortFile)
	f, err := os.Open(path)
	if err != nil {
		return Endpoint{}, types.NewError(types.CodeCDPUnavailable, "remote debugging is not enabled for "+configDir, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() && len(lines) < 2 {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return Endpoint{}, types.NewError(types.CodeCDPUnavailable, "read "+path, err)
	}
	if len(lines) == 0 {
		return Endpoint{}, types.NewError(types.CodeCDPUnavailable, path+" is empty", nil)
	}

	port, err := strconv.Atoi(lines[0])
	if err != nil || port <= 0 || port > 65535 {
		return Endpoint{}, types.NewError(types.CodeCDPUnavailable, fmt.Sprintf("invalid port %q in %s", lines[0], path), err)
	}
	ep := Endpoint{Port: port}
	if len(lines) > 1 && strings.HasPrefix(lines[1], "/") {
		ep.Path = lines[1]
	}
	return ep, nil
}
