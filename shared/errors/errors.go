package errors

import (
	"errors"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Is matches by status code and message so wrapped copies of sentinels compare equal.
func (e *ErrorWithStatusCode) Is(target error) bool {
	t, ok := target.(*ErrorWithStatusCode)
	if !ok {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Message == t.Message
}

var (
	ErrThreadNotFound = &ErrorWithStatusCode{Message: "Thread not found", StatusCode: http.StatusNotFound}
	ErrUserNotFound   = &ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
)

func NotFound(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound}
}

func BadRequest(message string) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest}
}

// StatusCode returns the status carried anywhere in err's chain, 500 otherwise.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
