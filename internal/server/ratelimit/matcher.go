package ratelimit

import "strings"

// Match returns the first rule matching method and path. Health checks are
// never limited; ok is false when no rule matches and the default applies.
func Match(rules []Rule, method, path string) (rule Rule, ok bool) {
	if path == "/health" {
		return Rule{Name: "health"}, true
	}
	for _, r := range rules {
		if r.Method == method && strings.HasPrefix(path, r.Prefix) && strings.HasSuffix(path, r.Suffix) {
			return r, true
		}
	}
	return Rule{}, false
}
