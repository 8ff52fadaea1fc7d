// Package policy provides the pure predicates that decide which branches
// are eligible for deletion: pattern matching, protected-name matching,
// and staleness checks. Nothing here touches git.
package policy

import (
	"regexp"
	"strings"
	"time"
)

// Matcher is a protection-list entry resolved at parse time: either an
// exact-match literal or a compiled regular expression. A malformed
// regex entry resolves to a matcher that never matches — never an error.
type Matcher struct {
	literal string
	re      *regexp.Regexp
	isRe    bool
}

// Matches reports whether name matches this entry.
func (m Matcher) Matches(name string) bool {
	if m.isRe {
		return m.re != nil && m.re.MatchString(name)
	}
	return name == m.literal
}

// ParseProtected resolves protection-list entries into matchers.
// Entries wrapped in /pattern/flags syntax compile as regular expressions;
// anything else requires exact string equality.
func ParseProtected(entries []string) []Matcher {
	matchers := make([]Matcher, 0, len(entries))
	for _, entry := range entries {
		matchers = append(matchers, parseEntry(entry))
	}
	return matchers
}

// parseEntry resolves a single protection entry.
func parseEntry(entry string) Matcher {
	body, flags, ok := splitRegexEntry(entry)
	if !ok {
		return Matcher{literal: entry}
	}

	prefix, ok := flagPrefix(flags)
	if !ok {
		return Matcher{isRe: true} // unsupported flag: never matches
	}

	re, err := regexp.Compile(prefix + body)
	if err != nil {
		return Matcher{isRe: true} // invalid regex: never matches
	}
	return Matcher{isRe: true, re: re}
}

// splitRegexEntry splits "/pattern/flags" into its parts.
// Returns false when the entry is not wrapped in the regex syntax.
func splitRegexEntry(entry string) (body, flags string, ok bool) {
	if len(entry) < 2 || !strings.HasPrefix(entry, "/") {
		return "", "", false
	}
	end := strings.LastIndex(entry[1:], "/")
	if end < 0 {
		return "", "", false
	}
	end++ // index into entry
	return entry[1:end], entry[end+1:], true
}

// flagPrefix translates regex flags into a Go inline-flag prefix.
// i/m/s map directly; g, u, and y have no effect on a single-match test
// and are ignored. Any other flag makes the entry unmatchable.
func flagPrefix(flags string) (string, bool) {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		case 'g', 'u', 'y':
			// no-op for MatchString
		default:
			return "", false
		}
	}
	if inline.Len() == 0 {
		return "", true
	}
	return "(?" + inline.String() + ")", true
}

// IsProtected reports whether any protection entry matches name.
func IsProtected(name string, matchers []Matcher) bool {
	for _, m := range matchers {
		if m.Matches(name) {
			return true
		}
	}
	return false
}

// MatchesPattern reports whether name matches pattern, compiled as a
// regular expression. If the pattern doesn't compile it falls back to
// case-sensitive substring containment. Never returns an error.
func MatchesPattern(name, pattern string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return strings.Contains(name, pattern)
	}
	return re.MatchString(name)
}

// IsStale reports whether a branch's last commit is older than the
// threshold. A threshold of zero or less disables age filtering (always
// stale), and an unknown commit time counts as stale.
func IsStale(lastCommitAt time.Time, thresholdDays int, now time.Time) bool {
	if thresholdDays <= 0 {
		return true
	}
	if lastCommitAt.IsZero() {
		return true
	}
	cutoff := now.AddDate(0, 0, -thresholdDays)
	return lastCommitAt.Before(cutoff)
}
