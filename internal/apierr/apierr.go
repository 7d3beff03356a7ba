package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	KindNoFileProvided         Kind = "no_file_provided"
	KindFileTooLarge           Kind = "file_too_large"
	KindUnsupportedInput       Kind = "unsupported_input"
	KindExtractionFailed       Kind = "extraction_failed"
	KindInvalidRequest         Kind = "invalid_request"
	KindMissingAnalysisContext Kind = "missing_analysis_context"
	KindAnalysisUnavailable    Kind = "analysis_unavailable"
)

// Error is a user-facing error. Message is safe to return to clients;
// Cause is for logs only.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, status int, message string, cause error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Cause: cause}
}

func NoFileProvided() *Error {
	return New(KindNoFileProvided, http.StatusBadRequest, "No file uploaded", nil)
}

func FileTooLarge(limit int64) *Error {
	return New(KindFileTooLarge, http.StatusBadRequest, fmt.Sprintf("File too large. Max %dMB allowed.", limit/(1024*1024)), nil)
}

func UnsupportedInput(message string, cause error) *Error {
	return New(KindUnsupportedInput, http.StatusBadRequest, message, cause)
}

func ExtractionFailed(message string, cause error) *Error {
	return New(KindExtractionFailed, http.StatusBadRequest, message, cause)
}

func InvalidRequest(message string) *Error {
	return New(KindInvalidRequest, http.StatusBadRequest, message, nil)
}

func MissingAnalysisContext() *Error {
	return New(KindMissingAnalysisContext, http.StatusBadRequest, "No analysis found for that document. Please re-upload.", nil)
}

func AnalysisUnavailable(cause error) *Error {
	return New(KindAnalysisUnavailable, http.StatusInternalServerError, "AI analysis is unavailable right now. Please try again.", cause)
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

func ChatUnavailable(cause error) *Error {
	return New(KindAnalysisUnavailable, http.StatusInternalServerError, "AI is unavailable right now. Please resend your question.", cause)
}
