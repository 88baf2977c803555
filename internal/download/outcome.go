package download

import (
	"fmt"
)

type Status int

const (
	StatusSkipped Status = iota
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

const ReasonAlreadyExists = "already exists"

// Outcome is the result of a single Download call.
type Outcome struct {
	Status       Status
	Reason       string // set when Skipped
	BytesWritten int64  // set when Completed
	Err          error  // set when Failed
}

func Skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

func Completed(bytesWritten int64) Outcome {
	return Outcome{Status: StatusCompleted, BytesWritten: bytesWritten}
}

func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}

// DownloadError wraps a failure after the transfer was attempted.
type DownloadError struct {
	URL     string
	Written int64
	Err     error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s failed after %d bytes: %v", e.URL, e.Written, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

func (e *DownloadError) Cause() error {
	return e.Err
}
