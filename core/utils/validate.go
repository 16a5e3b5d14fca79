package utils

import (
	"errors"
	"regexp"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{2,63}$`)

// ValidateUsername enforces the account naming rules: lowercase, 3-64 chars,
// alphanumeric with dot/underscore/dash, must start with a letter or digit.
func ValidateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return errors.New("invalid username")
	}
	return nil
}
