// Package locator finds running browser processes and the config root each
// one has its session open in.
package locator

import (
	"bufio"
	"bytes"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dgnsrekt/chromescript/internal/types"
)

// DefaultPattern matches the process names of Chrome and Chromium builds.
const DefaultPattern = `^(chrome|chromium|chromium-browser|google-chrome|Google Chrome)$`

// New returns the locator for the current platform. An empty pattern means
// DefaultPattern.
func New(pattern string) (types.ProcessLocator, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return newSystem(re)
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, types.NewError(types.CodeValidation, "invalid process pattern", err)
	}
	return re, nil
}

// sessionConfigDir maps an open file path to the config root when the path is
// a browser session log. Legacy layouts keep "<root>/<profile>/Current Session";
// newer ones use "<root>/<profile>/Sessions/Session_<n>".
func sessionConfigDir(path string) (string, bool) {
	path = strings.TrimSuffix(path, " (deleted)")
	base := filepath.Base(path)
	dir := filepath.Dir(path)
	switch {
	case base == "Current Session":
		return filepath.Dir(dir), true
	case strings.HasPrefix(base, "Session_") && filepath.Base(dir) == "Sessions":
		return filepath.Dir(filepath.Dir(dir)), true
	}
	return "", false
}

// collector keeps the first config root seen per PID.
type collector map[int]string

func (c collector) add(pid int, path string) {
	if _, ok := c[pid]; ok {
		return
	}
	if root, ok := sessionConfigDir(path); ok {
		c[pid] = root
	}
}

func (c collector) result() []types.ProcessInfo {
	out := make([]types.ProcessInfo, 0, len(c))
	for pid, root := range c {
		out = append(out, types.ProcessInfo{PID: pid, ConfigDir: root})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

// parseLsof reads `lsof -F pn` output: "p<pid>" starts a process block and
// "n<name>" lines carry its open file paths. Other field lines are ignored.
func parseLsof(out []byte) []types.ProcessInfo {
	found := collector{}
	pid := 0
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		switch line[0] {
		case 'p':
			n, err := strconv.Atoi(line[1:])
			if err != nil {
				pid = 0
				continue
			}
			pid = n
		case 'n':
			if pid > 0 {
				found.add(pid, line[1:])
			}
		}
	}
	return found.result()
}

func filterPID(procs []types.ProcessInfo, pid int) []types.ProcessInfo {
	if pid == 0 {
		return procs
	}
	for _, p := range procs {
		if p.PID == pid {
			return []types.ProcessInfo{p}
		}
	}
	return nil
}
