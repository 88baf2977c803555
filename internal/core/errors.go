package core

import (
	"fmt"
)

// FetchError reports a failed page or file request: either a transport error
// (Err set) or a non-success HTTP status (StatusCode set).
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: http error %d:%s", e.URL, e.StatusCode, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Cause lets github.com/pkg/errors.Cause stop at the FetchError.
func (e *FetchError) Cause() error {
	return e.Err
}
