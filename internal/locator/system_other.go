//go:build !linux && !darwin

package locator

import (
	"regexp"
	"runtime"

	"github.com/dgnsrekt/chromescript/internal/types"
)

func newSystem(*regexp.Regexp) (types.ProcessLocator, error) {
	return nil, types.NewError(types.CodeLocatorUnavailable, "process discovery is not supported on "+runtime.GOOS, nil)
}
