package navigator

import (
	"regexp"
)

var dottedIndex = regexp.MustCompile(`\.(\d+)(\.|\[|$)`)

// NormalizePath converts numeric dotted segments to bracket notation.
// Examples:
//
//	"items.0" -> "items[0]"
//	"regions.asia.countries.1" -> "regions.asia.countries[1]"
//	"items.0.tags" -> "items[0].tags"
func NormalizePath(path string) string {
	if path == "" {
		return path
	}
	// Matches can share the trailing separator, so repeat until stable.
	for {
		next := dottedIndex.ReplaceAllString(path, "[$1]$2")
		if next == path {
			return next
		}
		path = next
	}
}
