package transcriber

import (
	"errors"
	"fmt"
	"net/http"
)

// FatalTranscriptionError marks an error that retrying will not fix.
type FatalTranscriptionError struct {
	Err error
}

func (e *FatalTranscriptionError) Error() string {
	if e == nil || e.Err == nil {
		return "fatal transcription error"
	}
	return e.Err.Error()
}

func (e *FatalTranscriptionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewFatalTranscriptionError(err error) error {
	if err == nil {
		return nil
	}
	return &FatalTranscriptionError{Err: err}
}

func IsFatalTranscriptionError(err error) bool {
	var fatal *FatalTranscriptionError
	return errors.As(err, &fatal)
}

// StatusError is a non-2xx answer from the transcription server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d: %s", e.Code, e.Body)
}

// statusError wraps client errors as fatal; 429 and 5xx stay retryable.
func statusError(code int, body string) error {
	err := &StatusError{Code: code, Body: body}
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return NewFatalTranscriptionError(err)
	}
	return err
}
