package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// Repository Validation
// =============================================================================

var (
	// git@github.com:acme/app.git, deploy@10.0.0.1:repos/app
	scpRepositoryRegex = regexp.MustCompile(`^[\w.\-]+@[\w.\-]+:[\w.\-/~]+$`)

	// ssh://git@host:22/acme/app.git, https://host/acme/app.git, file:///srv/app.git
	urlRepositoryRegex = regexp.MustCompile(`^(ssh|git|https?|file)://[\w.\-@:/~]+$`)
)

// IsRepositoryURL reports whether repo looks like a git remote that a
// deployment worker can clone. Both scp-like and URL forms are accepted.
//
// Example:
//
//	IsRepositoryURL("git@github.com:acme/app.git")   // true
//	IsRepositoryURL("https://github.com/acme/app")   // true
//	IsRepositoryURL("acme/app")                      // false
func IsRepositoryURL(repo string) bool {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return false
	}
	return scpRepositoryRegex.MatchString(repo) || urlRepositoryRegex.MatchString(repo)
}

// =============================================================================
// Error Messages
// =============================================================================

// FieldMessage renders a failed validation rule as a message for field.
// Unknown rules fall back to a generic message naming the rule.
func FieldMessage(field, rule, param string) string {
	switch rule {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(param), ", "))
	case "repository":
		return fmt.Sprintf("%s must be a git repository URL", field)
	default:
		return fmt.Sprintf("%s failed the %s rule", field, rule)
	}
}
