package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/glutton-su/DevSpace-sub002/internal/config"
)

// CheckPasswordPolicy validates a candidate password against the configured
// policy. On failure it returns the full list of unmet requirements in one
// message ("password must contain at least one uppercase letter, one digit")
// so the client can show everything at once instead of one rule per attempt.
//
// Returns nil when the password satisfies every enabled rule.
func CheckPasswordPolicy(policy config.PasswordPolicy, password string) error {
	var reasons []string

	if len(password) < policy.MinLength {
		reasons = append(reasons, fmt.Sprintf("at least %d characters", policy.MinLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if policy.RequireUppercase && !hasUpper {
		reasons = append(reasons, "one uppercase letter")
	}
	if policy.RequireLowercase && !hasLower {
		reasons = append(reasons, "one lowercase letter")
	}
	if policy.RequireDigit && !hasDigit {
		reasons = append(reasons, "one digit")
	}
	if policy.RequireSpecial && !hasSpecial {
		reasons = append(reasons, "one special character")
	}

	if len(reasons) > 0 {
		return fmt.Errorf("password must contain %s", strings.Join(reasons, ", "))
	}
	return nil
}
