//go:build darwin

package locator

import (
	"regexp"

	"github.com/dgnsrekt/chromescript/internal/types"
)

func newSystem(pattern *regexp.Regexp) (types.ProcessLocator, error) {
	return NewLsof(pattern), nil
}
