package git

import (
	"fmt"
	"strings"
)

// forbiddenInRef lists substrings git check-ref-format rejects anywhere in
// a ref name.
var forbiddenInRef = []string{"..", "//", "@{", "~", "^", ":", "?", "*", "[", "\\", " "}

// validateBranchName applies git's ref naming rules to a branch name before
// it reaches a command line. A leading '-' is rejected so the name cannot be
// read as an option.
func validateBranchName(name string) error {
	invalid := func(reason string) error {
		return fmt.Errorf("branch %q %s: %w", name, reason, ErrInvalidBranchName)
	}

	switch {
	case name == "":
		return fmt.Errorf("empty branch name: %w", ErrInvalidBranchName)
	case name == "@":
		return invalid("is reserved")
	case strings.HasPrefix(name, "-"):
		return invalid("starts with '-'")
	case strings.HasPrefix(name, "/"), strings.HasSuffix(name, "/"):
		return invalid("starts or ends with '/'")
	case strings.HasSuffix(name, "."):
		return invalid("ends with '.'")
	}

	for _, s := range forbiddenInRef {
		if strings.Contains(name, s) {
			return invalid(fmt.Sprintf("contains %q", s))
		}
	}
	for _, c := range name {
		if c < 0x20 || c == 0x7f {
			return invalid("contains a control character")
		}
	}

	// Every slash-separated component has its own rules.
	for _, comp := range strings.Split(name, "/") {
		if strings.HasPrefix(comp, ".") {
			return invalid("has a component starting with '.'")
		}
		if strings.HasSuffix(comp, ".lock") {
			return invalid("has a component ending with '.lock'")
		}
	}
	return nil
}
