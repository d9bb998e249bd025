package config

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches <PROJECTID>-style path placeholders.
var placeholderPattern = regexp.MustCompile(`<([A-Z]+)>`)

// ExpandPath substitutes every <KEY> placeholder in path with vars[key],
// where key is the lowercase form of KEY. Paths without placeholders pass
// through unchanged. A placeholder with no matching variable is an error:
// silently leaving it in place would create literal "<PROJECTID>" folders.
func ExpandPath(path string, vars map[string]string) (string, error) {
	var missing string

	expanded := placeholderPattern.ReplaceAllStringFunc(path, func(match string) string {
		key := strings.ToLower(match[1 : len(match)-1])

		value, ok := vars[key]
		if !ok || value == "" {
			if missing == "" {
				missing = match
			}

			return match
		}

		return value
	})

	if missing != "" {
		return "", fmt.Errorf("path %q: no value for placeholder %s", path, missing)
	}

	return expanded, nil
}
