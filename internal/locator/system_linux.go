//go:build linux

package locator

import (
	"regexp"

	"github.com/dgnsrekt/chromescript/internal/types"
)

func newSystem(pattern *regexp.Regexp) (types.ProcessLocator, error) {
	return NewProcfs("", pattern)
}
