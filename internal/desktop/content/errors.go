package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownContentKey is the only error kind the desktop core defines.
var ErrUnknownContentKey = errors.New("unknown content key")

const maxSuggestions = 3

// UnknownKeyError reports a key missing from the registry. It is recoverable:
// callers render a fallback panel and keep their state.
type UnknownKeyError struct {
	Key         Key
	Suggestions []Key
}

func (e *UnknownKeyError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("%s: %q", ErrUnknownContentKey, string(e.Key))
	}
	names := make([]string, 0, len(e.Suggestions))
	for _, s := range e.Suggestions {
		names = append(names, string(s))
	}
	return fmt.Sprintf("%s: %q (did you mean %s?)", ErrUnknownContentKey, string(e.Key), strings.Join(names, ", "))
}

func (e *UnknownKeyError) Unwrap() error { return ErrUnknownContentKey }

func newUnknownKeyError(k Key, candidates []Key) *UnknownKeyError {
	return &UnknownKeyError{Key: k, Suggestions: suggest(k, candidates)}
}

func suggest(k Key, candidates []Key) []Key {
	token := strings.ToLower(string(k))
	if token == "" {
		return nil
	}
	type scored struct {
		key  Key
		dist int
	}
	var results []scored
	for _, c := range candidates {
		cand := string(c)
		dist := levenshtein.ComputeDistance(token, cand)
		if strings.HasPrefix(cand, token) || strings.HasSuffix(cand, token) {
			dist = 0
		}
		if dist > distanceLimit(len(cand)) {
			continue
		}
		results = append(results, scored{key: c, dist: dist})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].dist == results[j].dist {
			return results[i].key < results[j].key
		}
		return results[i].dist < results[j].dist
	})
	if len(results) > maxSuggestions {
		results = results[:maxSuggestions]
	}
	out := make([]Key, 0, len(results))
	for _, r := range results {
		out = append(out, r.key)
	}
	return out
}

func distanceLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}
