package pipeline

import (
	"errors"
	"fmt"
)

// ErrInputTooShort is reported when there is too little text to extract from.
var ErrInputTooShort = errors.New("could not extract text from document: input is empty or too short")

// InternalError wraps an unexpected fault raised inside an extraction stage.
type InternalError struct {
	Stage string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("error processing text: %v", e.Cause)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func recovered(stage string, r interface{}) *InternalError {
	cause, ok := r.(error)
	if !ok {
		cause = fmt.Errorf("%v", r)
	}
	return &InternalError{Stage: stage, Cause: cause}
}
