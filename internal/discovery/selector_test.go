package discovery

import (
	"testing"

	"github.com/dgnsrekt/chromescript/internal/types"
)

func TestSelectorValidate(t *testing.T) {
	tests := []struct {
		name string
		sel  Selector
		ok   bool
	}{
		{name: "pid", sel: ByPID(10), ok: true},
		{name: "path", sel: ByPath("/tmp/chrome"), ok: true},
		{name: "profile", sel: ByProfile("Work"), ok: true},
		{name: "empty", sel: Selector{}},
		{name: "two keys", sel: Selector{PID: 1, Profile: "Work"}},
		{name: "negative pid", sel: Selector{PID: -3}},
		{name: "blank path", sel: ByPath("   ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() error = %v; want nil", err)
			}
			if !tt.ok && !types.HasCode(err, types.CodeValidation) {
				t.Fatalf("Validate() error = %v; want %s", err, types.CodeValidation)
			}
		})
	}
}
