package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords so a caller can't probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("username already taken")
)
