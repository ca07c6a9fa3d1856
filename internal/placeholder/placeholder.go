// Package placeholder performs literal token substitution on template content.
package placeholder

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/onurcolak/dispatch-service/internal/errs"
)

var tokenPattern = regexp.MustCompile(`\{[A-Za-z0-9_]+\}`)

// Render replaces every occurrence of each key in values with its value.
// Keys are matched literally and case-sensitively, longest key first, so a key
// that contains another key is never partially overwritten. Tokens without a
// value stay in the output.
func Render(content string, values map[string]string) (string, error) {
	if len(values) == 0 || content == "" {
		return content, nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "" {
			return "", fmt.Errorf("%w: empty placeholder token", errs.ErrRender)
		}
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, k, values[k])
	}

	return strings.NewReplacer(pairs...).Replace(content), nil
}

// Unresolved lists the distinct {TOKEN} style placeholders still present in s.
func Unresolved(s string) []string {
	found := tokenPattern.FindAllString(s, -1)
	if len(found) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(found))
	out := make([]string, 0, len(found))
	for _, tok := range found {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
