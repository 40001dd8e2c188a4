package service

import "fmt"

// InferenceError is any failure of the external model service: transport
// error, non-success status, malformed body or timeout. Timeout is kept
// separate only for observability; callers treat both as terminal for
// the run and never retry automatically.
type InferenceError struct {
	Timeout bool
	Err     error
}

func (e *InferenceError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("inference service timed out: %v", e.Err)
	}
	return fmt.Sprintf("inference service failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// UpstreamError is a failure to fetch the examination image from the
// blob store URL before inference.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("failed to fetch examination image: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
