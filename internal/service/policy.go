package service

import (
	"strings"
	"unicode"

	"github.com/Djalobre/kvotizza/internal/domain"
)

// RolePolicy decides the role assigned to an account with the given email.
type RolePolicy func(email string) domain.Role

// AllowlistRolePolicy grants RoleAdmin to emails in the comma-separated
// allow list and RoleUser to everyone else. Matching is case-insensitive.
func AllowlistRolePolicy(adminEmails string) RolePolicy {
	allowed := make(map[string]struct{})
	for _, e := range strings.Split(adminEmails, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			allowed[e] = struct{}{}
		}
	}

	return func(email string) domain.Role {
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(email))]; ok {
			return domain.RoleAdmin
		}
		return domain.RoleUser
	}
}

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// ValidatePassword checks a candidate password against the password policy:
// at least MinPasswordLength characters with at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
