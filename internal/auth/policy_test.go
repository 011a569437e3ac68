package auth

import (
	"strings"
	"testing"

	"github.com/glutton-su/DevSpace-sub002/internal/config"
)

func TestCheckPasswordPolicy(t *testing.T) {
	full := config.PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigit:     true,
		RequireSpecial:   true,
	}

	tests := []struct {
		name     string
		policy   config.PasswordPolicy
		password string
		wantErr  string // substring of the error message, "" means valid
	}{
		{
			name:     "satisfies all rules",
			policy:   full,
			password: "Sup3r-secret",
		},
		{
			name:     "too short",
			policy:   full,
			password: "Ab1!",
			wantErr:  "at least 8 characters",
		},
		{
			name:     "missing uppercase",
			policy:   full,
			password: "lowercase1!",
			wantErr:  "one uppercase letter",
		},
		{
			name:     "missing lowercase",
			policy:   full,
			password: "UPPERCASE1!",
			wantErr:  "one lowercase letter",
		},
		{
			name:     "missing digit",
			policy:   full,
			password: "NoDigitsHere!",
			wantErr:  "one digit",
		},
		{
			name:     "missing special",
			policy:   full,
			password: "NoSpecials1",
			wantErr:  "one special character",
		},
		{
			name:     "length only policy accepts plain password",
			policy:   config.PasswordPolicy{MinLength: 6},
			password: "abcdef",
		},
		{
			name:     "uppercase rule on minimal policy",
			policy:   config.PasswordPolicy{MinLength: 6, RequireUppercase: true},
			password: "abcdef",
			wantErr:  "one uppercase letter",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckPasswordPolicy(tc.policy, tc.password)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestCheckPasswordPolicy_ListsAllFailures(t *testing.T) {
	policy := config.PasswordPolicy{
		MinLength:        8,
		RequireUppercase: true,
		RequireDigit:     true,
	}

	err := CheckPasswordPolicy(policy, "abc")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"at least 8 characters", "one uppercase letter", "one digit"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
}
