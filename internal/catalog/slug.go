package catalog

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	nonSlugChars  = regexp.MustCompile(`[^\w-]+`)
)

// Slugify lowercases text, joins words with '-' and drops everything outside [A-Za-z0-9_-].
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonSlugChars.ReplaceAllString(s, "")
}
