package policy

import (
	"regexp"
	"strings"
	"sync"
)

// PathMatch reports whether a request path matches a rule's object pattern
// under hierarchical matching: literal segments must match exactly, a
// ":name" segment matches any single non-empty segment, and a trailing "*"
// segment matches the rest of the path.
func PathMatch(path string, pattern string) bool {
	pathSegs := strings.Split(path, "/")
	patternSegs := strings.Split(pattern, "/")

	for i, pat := range patternSegs {
		if pat == "*" && i == len(patternSegs)-1 {
			return len(pathSegs) > i
		}
		if i >= len(pathSegs) {
			return false
		}
		seg := pathSegs[i]
		if strings.HasPrefix(pat, ":") && len(pat) > 1 {
			if seg == "" {
				return false
			}
			continue
		}
		if seg != pat {
			return false
		}
	}

	return len(pathSegs) == len(patternSegs)
}

var (
	actionCacheMu sync.RWMutex
	actionCache   = map[string]*regexp.Regexp{}
)

// ActionMatch interprets the rule's action pattern as a regular expression
// and matches it against the HTTP verb in full. A pattern that fails to
// compile matches nothing.
func ActionMatch(action string, pattern string) bool {
	re := compiledAction(pattern)
	if re == nil {
		return false
	}
	return re.MatchString(action)
}

func compiledAction(pattern string) *regexp.Regexp {
	actionCacheMu.RLock()
	re, ok := actionCache[pattern]
	actionCacheMu.RUnlock()
	if ok {
		return re
	}

	compiled, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		compiled = nil
	}

	actionCacheMu.Lock()
	actionCache[pattern] = compiled
	actionCacheMu.Unlock()
	return compiled
}
