package git

import (
	"errors"
	"testing"
)

func TestValidateBranchName_Valid(t *testing.T) {
	t.Parallel()

	valid := []string{
		"main",
		"feature/login",
		"feature/login/v2",
		"fix-123",
		"release_2024",
		"v1.2.3",
		"hotfix.urgent-1",
	}

	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateBranchName(name); err != nil {
				t.Errorf("ValidateBranchName(%q) = %v, want nil", name, err)
			}
		})
	}
}

func TestValidateBranchName_Invalid(t *testing.T) {
	t.Parallel()

	invalid := []struct {
		name   string
		branch string
	}{
		{"empty", ""},
		{"leading dash", "-d"},
		{"leading double dash", "--force"},
		{"dot", "."},
		{"dot dot", ".."},
		{"traversal segment", "feature/../main"},
		{"space", "feature branch"},
		{"semicolon", "x;rm"},
		{"pipe", "x|y"},
		{"backtick", "x`y`"},
		{"dollar", "x$HOME"},
		{"tilde", "x~1"},
		{"caret", "x^2"},
		{"colon", "x:y"},
		{"question mark", "x?"},
		{"asterisk", "x*"},
		{"open bracket", "x[0]"},
		{"backslash", "x\\y"},
		{"reflog syntax", "x@{1}"},
		{"leading slash", "/main"},
		{"trailing slash", "main/"},
		{"empty component", "a//b"},
		{"trailing dot", "main."},
		{"lock suffix", "main.lock"},
		{"newline", "x\ny"},
		{"tab", "x\ty"},
		{"del character", "x\x7fy"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateBranchName(tt.branch)
			if err == nil {
				t.Fatalf("ValidateBranchName(%q) = nil, want error", tt.branch)
			}
			var invalidErr *InvalidNameError
			if !errors.As(err, &invalidErr) {
				t.Errorf("error type = %T, want *InvalidNameError", err)
			}
		})
	}
}
