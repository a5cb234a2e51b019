package sanitizer

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

// KeyMatcher flags mapping keys by case-insensitive set membership.
type KeyMatcher struct {
	keys map[string]struct{}
}

// NewKeyMatcher builds a matcher over keys, normalized to lowercase.
func NewKeyMatcher(keys ...string) KeyMatcher {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}
	return KeyMatcher{keys: set}
}

// IsSensitive reports whether the lowercase form of key is in the set.
func (m KeyMatcher) IsSensitive(key string) bool {
	if len(m.keys) == 0 {
		return false
	}
	_, ok := m.keys[strings.ToLower(key)]
	return ok
}

// Keys returns the normalized keys in sorted order.
func (m KeyMatcher) Keys() []string {
	out := make([]string, 0, len(m.keys))
	for k := range m.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PatternMatcher flags text containing a match for any of its rules.
type PatternMatcher struct {
	rules []*regexp.Regexp
}

// CompilePatterns compiles each source as an RE2 expression. Duplicate
// sources are compiled once. Every invalid source is reported in the returned
// error as a *ConfigError.
func CompilePatterns(sources ...string) (PatternMatcher, error) {
	seen := make(map[string]struct{}, len(sources))
	var (
		rules []*regexp.Regexp
		errs  []error
	)
	for _, src := range sources {
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		re, err := regexp.Compile(src)
		if err != nil {
			errs = append(errs, &ConfigError{Field: "pattern", Value: src, Err: err})
			continue
		}
		rules = append(rules, re)
	}
	if len(errs) > 0 {
		return PatternMatcher{}, errors.Join(errs...)
	}
	return PatternMatcher{rules: rules}, nil
}

// Matches reports whether any rule matches anywhere in text.
func (m PatternMatcher) Matches(text string) bool {
	for _, re := range m.rules {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Sources returns the rule sources in the order they were first supplied.
func (m PatternMatcher) Sources() []string {
	out := make([]string, len(m.rules))
	for i, re := range m.rules {
		out[i] = re.String()
	}
	return out
}
