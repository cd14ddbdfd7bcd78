package llm

import (
	"errors"
	"strings"
)

// TransientError marks a failure that may succeed on retry.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

func NewTransientError(err error) error {
	return &TransientError{err: err}
}

func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// ClassifyError wraps provider errors that look like throttling, 5xx or
// network failures as transient. Anything else is returned unchanged.
func ClassifyError(err error) error {
	if err == nil || IsTransient(err) {
		return err
	}

	errStr := err.Error()
	markers := []string{
		// throttling
		"ThrottlingException", "TooManyRequestsException", "Rate exceeded", "429",
		// service errors
		"InternalServerException", "ServiceUnavailableException", "ModelNotReadyException", "500", "503",
		// network
		"connection reset", "EOF", "timeout",
	}
	for _, m := range markers {
		if strings.Contains(errStr, m) {
			return NewTransientError(err)
		}
	}
	return err
}
