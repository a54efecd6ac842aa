// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/microcosm-cc/bluemonday"
)

// One strict policy for the whole app: user-supplied names and
// descriptions are plain text, never markup.
var policy = bluemonday.StrictPolicy()

// Clean trims and strips any markup from user-supplied text.
func Clean(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}

// Fold returns the case/diacritic-insensitive form stored in *_ci
// fields for lookups and sorting.
func Fold(s string) string {
	return text.Fold(strings.TrimSpace(s))
}
