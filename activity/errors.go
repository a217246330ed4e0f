package activity

import "fmt"

// TransportError reports a failed request: the transport returned an error
// or the server answered with a status other than 200.
type TransportError struct {
	// StatusCode is zero when no response was received.
	StatusCode int

	// Body is the (possibly truncated) response body for non-200 answers.
	Body []byte

	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport: %v", e.Err)
	}
	return fmt.Sprintf("transport: unexpected status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that could not be decoded, even
// after the malformed escape repair.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SigningError reports a failure to issue the request credential.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("sign token: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}
