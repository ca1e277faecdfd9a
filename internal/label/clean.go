package label

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxLabelLength is the rune length a cleaned label is truncated to.
const MaxLabelLength = 40

// space matches the characters Unicode treats as whitespace. RE2's \s is ASCII only.
const space = `\s\v\p{Z}\x{85}`

// word matches letters, digits and underscore in any script. RE2's \w is ASCII only.
const word = `\p{L}\p{N}_`

var (
	ordinalPrefix   = regexp.MustCompile(`^\p{Nd}+\.?[` + space + `]*`)
	municipalPrefix = regexp.MustCompile(`(?i)^(Stadt|Gemeinde|Rathaus)[` + space + `]+`)
	invisibleChars  = regexp.MustCompile(`[\x{200b}\x{00ad}\x{00a0}]`)
	noiseChars      = regexp.MustCompile(`[^` + word + space + `\-.]`)
	spaceRuns       = regexp.MustCompile(`[` + space + `]+`)
	edgePunctuation = regexp.MustCompile(`^[\-.]+|[\-.]+$`)
)

// Cleaner normalizes raw label text into a municipality name.
type Cleaner struct {
	corrections Corrections
}

// NewCleaner returns a Cleaner using the given correction table. A nil table
// disables corrections.
func NewCleaner(c Corrections) *Cleaner {
	return &Cleaner{corrections: c}
}

var defaultCleaner = NewCleaner(defaultCorrections)

// Clean normalizes text with the built-in correction table.
func Clean(text string) string {
	return defaultCleaner.Clean(text)
}

// Clean strips ordinal and municipal prefixes, removes noise characters,
// collapses whitespace, trims hyphens and periods at both ends, applies the
// correction table and truncates to MaxLabelLength runes. It never fails.
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}

	// Decomposed umlauts from OCR output would otherwise lose their marks below.
	text = norm.NFC.String(text)

	text = ordinalPrefix.ReplaceAllString(text, "")
	text = municipalPrefix.ReplaceAllString(text, "")
	text = invisibleChars.ReplaceAllString(text, "")
	text = noiseChars.ReplaceAllString(text, "")
	text = strings.TrimSpace(spaceRuns.ReplaceAllString(text, " "))
	text = edgePunctuation.ReplaceAllString(text, "")

	text = c.corrections.Apply(text)

	return truncate(text, MaxLabelLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

// Normalize collapses whitespace runs to single spaces and trims both ends.
func Normalize(text string) string {
	return strings.TrimSpace(spaceRuns.ReplaceAllString(norm.NFC.String(text), " "))
}
