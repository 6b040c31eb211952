package httperr

import (
	"errors"
	"fmt"
)

// BusinessError is a domain rule violation identified by a stable code.
// Detail is optional, human-oriented context (e.g. which state transition
// was attempted).
type BusinessError struct {
	Code   string
	Detail string
}

func (e BusinessError) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Code + ": " + e.Detail
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func ErrBusinessf(code, format string, args ...any) error {
	return BusinessError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// BusinessCode extracts the code from a BusinessError, or "" when err is
// something else.
func BusinessCode(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
