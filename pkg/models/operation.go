package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultEndpoint is the path analysis requests are posted to
const DefaultEndpoint = "/analyze"

// FormField is the multipart field every file is appended under
const FormField = "file"

// NoFilesMessage is shown when nothing was selected
const NoFilesMessage = "Please upload at least one file!"

// AnalysisOperation describes one submit-and-analyze invocation
type AnalysisOperation struct {
	ServerURL string
	Endpoint  string
}

// Validate checks if the operation is usable
func (op *AnalysisOperation) Validate() error {
	if op.ServerURL == "" {
		return &ValidationError{Field: "ServerURL", Message: "server URL is required"}
	}
	u, err := url.Parse(op.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: "ServerURL", Message: "server URL must be absolute: " + op.ServerURL}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "ServerURL", Message: "unsupported scheme " + u.Scheme}
	}
	if !strings.HasPrefix(op.Endpoint, "/") {
		return &ValidationError{Field: "Endpoint", Message: "endpoint must start with /"}
	}
	return nil
}

// URL joins the server URL and endpoint
func (op *AnalysisOperation) URL() string {
	return strings.TrimRight(op.ServerURL, "/") + op.Endpoint
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ErrMalformedResponse marks a response body that is not a valid analysis payload
var ErrMalformedResponse = errors.New("malformed response")

// UserInputError is raised before any request when the input is unusable
type UserInputError struct {
	Message string
}

func (e *UserInputError) Error() string {
	return e.Message
}

// ServerError is a failure the server reported in its response body
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server reported: " + e.Message
}

// TransportError covers network failures and unreadable responses
type TransportError struct {
	// Op is the step that failed: "request", "send", "read" or "decode"
	Op string

	// StatusCode is the HTTP status when a response was received, 0 otherwise
	StatusCode int

	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed (HTTP %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
