package label

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[^` + word + `\- ]+`)
	gaps        = regexp.MustCompile(`[` + space + `]+`)
)

// Sanitize reduces a label to a filesystem-safe token: only letters, digits,
// underscores and hyphens survive, with inner space runs turned into single
// underscores. An empty result is replaced by "Rathaus_<counter>".
//
// Sanitize is idempotent.
func Sanitize(label string, counter int) string {
	safe := strings.TrimSpace(unsafeChars.ReplaceAllString(label, ""))
	safe = gaps.ReplaceAllString(safe, "_")
	if safe == "" {
		return fmt.Sprintf("Rathaus_%d", counter)
	}
	return safe
}

// PageFallback is the label used when neither OCR nor vector text yields one.
func PageFallback(pageIndex int) string {
	return fmt.Sprintf("Rathaus_Seite_%d", pageIndex+1)
}

// Filename composes the output file name for the seq-th export (1-based).
func Filename(seq int, safeLabel, ext string) string {
	return fmt.Sprintf("%03d_%s%s", seq, safeLabel, ext)
}
