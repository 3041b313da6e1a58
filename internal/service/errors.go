package service

import "errors"

// Business-rule failures. Handlers map these to 4xx statuses; any other
// error from a service call is a storage fault.
var (
	ErrUsernameRequired   = errors.New("username must not be empty")
	ErrPasswordTooShort   = errors.New("password must be at least 4 characters")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidText        = errors.New("message text must be 1-255 characters")
	ErrAuthorNotFound     = errors.New("author account does not exist")
	ErrMessageNotFound    = errors.New("message does not exist")
)

// IsValidation reports whether err is a business-rule failure rather than
// a storage fault.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrUsernameRequired,
		ErrPasswordTooShort,
		ErrUsernameTaken,
		ErrInvalidCredentials,
		ErrInvalidText,
		ErrAuthorNotFound,
		ErrMessageNotFound,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
