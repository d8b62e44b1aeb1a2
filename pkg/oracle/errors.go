package oracle

import "fmt"

// TransportError covers network, timeout, and provider-side failures. These
// are retried with backoff and, once attempts are exhausted, reported as a
// permanent failure for the run so the differ reselects the item next time.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("oracle transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError covers responses the provider returned successfully but which
// are not the JSON object the contract demands. Retried the same way as
// transport failures; models are frequently correct on a second attempt.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oracle format failure: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("oracle format failure: %s", e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }
