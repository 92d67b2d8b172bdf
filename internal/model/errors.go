package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures
type ErrorKind string

const (
	// KindInvalidURL means no video identifier could be extracted from the URL
	KindInvalidURL ErrorKind = "invalid_url"
	// KindInvalidResponse covers any failure fetching or decoding data from the host
	KindInvalidResponse ErrorKind = "invalid_response"
	// KindUnsupported means the video has no stream fetchable without a cipher
	KindUnsupported ErrorKind = "unsupported"
	// KindApplication covers local environment failures such as file creation
	KindApplication ErrorKind = "application"
)

// Error is the failure type returned by every pipeline stage
type Error struct {
	Kind   ErrorKind
	Detail string
	Hint   string // what the caller can do next, e.g. the fallback command
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidURL reports a URL without a recognizable video identifier
func InvalidURL(rawURL string) *Error {
	return &Error{Kind: KindInvalidURL, Detail: fmt.Sprintf("no video id found in %q", rawURL)}
}

// InvalidResponse wraps a host or network failure
func InvalidResponse(err error) *Error {
	return &Error{Kind: KindInvalidResponse, Detail: err.Error(), Err: err}
}

// Unsupported reports a video without directly fetchable streams
func Unsupported(detail string) *Error {
	return &Error{Kind: KindUnsupported, Detail: detail}
}

// Application wraps a local environment failure
func Application(err error) *Error {
	return &Error{Kind: KindApplication, Detail: err.Error(), Err: err}
}

// KindOf returns the kind of a pipeline error, or an empty kind for foreign errors
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a pipeline error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
