package html

import (
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

// cleanFilter is the template filter that strips markup from server and
// catalog messages. Its output is already escaped and is marked safe.
const cleanFilter = "clean"

var (
	strictPolicy     *bluemonday.Policy
	strictPolicyOnce sync.Once
	filtersOnce      sync.Once
	filtersErr       error
)

func policy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// Sanitize removes all HTML from s and escapes what remains.
func Sanitize(s string) string {
	return policy().Sanitize(s)
}

// registerFilters installs the package filters into pongo2 once per process.
// A failed registration is remembered and reported to every caller.
func registerFilters() error {
	filtersOnce.Do(func() {
		if pongo2.FilterExists(cleanFilter) {
			return
		}
		if err := pongo2.RegisterFilter(cleanFilter, cleanValue); err != nil {
			filtersErr = fmt.Errorf("html: register %q filter: %w", cleanFilter, err)
		}
	})
	return filtersErr
}

func cleanValue(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsSafeValue(Sanitize(in.String())), nil
}
