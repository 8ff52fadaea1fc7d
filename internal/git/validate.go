package git

import (
	"fmt"
	"strings"
)

// InvalidNameError indicates a branch name that failed validation before
// being passed to a mutating git command.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid branch name %q: %s", e.Name, e.Reason)
}

// shellSpecials are characters that could escape into shell or git-flag
// territory if a branch name were ever interpolated carelessly. Git itself
// rejects most of these in ref names too.
const shellSpecials = " ~^:?*[\\;|&$<>(){}!`'\""

// ValidateBranchName checks that name is safe to pass to a mutating git
// command. It rejects names that could be mis-parsed as command flags
// (leading dash), path traversal segments, shell metacharacters, and the
// ref-name forms git itself forbids.
func ValidateBranchName(name string) error {
	fail := func(reason string) error {
		return &InvalidNameError{Name: name, Reason: reason}
	}

	switch {
	case name == "":
		return fail("empty name")
	case strings.HasPrefix(name, "-"):
		return fail("leading dash could be parsed as a flag")
	case name == "." || name == "..":
		return fail("reserved name")
	case strings.Contains(name, ".."):
		return fail("contains path traversal segment")
	case strings.ContainsAny(name, shellSpecials):
		return fail("contains shell or ref-name special character")
	case strings.Contains(name, "@{"):
		return fail("contains reflog syntax")
	case strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/"):
		return fail("leading or trailing slash")
	case strings.Contains(name, "//"):
		return fail("empty path component")
	case strings.HasSuffix(name, "."):
		return fail("trailing dot")
	case strings.HasSuffix(name, ".lock"):
		return fail("reserved .lock suffix")
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fail("contains control character")
		}
	}

	return nil
}
