package extract

import (
	"regexp"
	"strings"
)

// FilterLines returns the lines of text that contain marker as a substring,
// trimmed of surrounding whitespace, in their original order. No
// deduplication is performed. When ignoreCase is set the comparison folds
// case; the returned lines are always the original text.
func FilterLines(text, marker string, ignoreCase bool) []string {
	if text == "" {
		return nil
	}

	needle := marker
	if ignoreCase {
		needle = strings.ToLower(marker)
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		hay := line
		if ignoreCase {
			hay = strings.ToLower(line)
		}
		if strings.Contains(hay, needle) {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

// FilterRegex returns, for each line of text that matches re, the matched
// substring. Line order is preserved.
func FilterRegex(text string, re *regexp.Regexp) []string {
	if text == "" || re == nil {
		return nil
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		if m := re.FindString(line); m != "" {
			out = append(out, m)
		}
	}
	return out
}
