package access

import "errors"

var (
	ErrForbidden    = errors.New("insufficient access level")
	ErrCaseNotFound = errors.New("case not found")
	ErrInvalidLevel = errors.New("invalid access level")
)
