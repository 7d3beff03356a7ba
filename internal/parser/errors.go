package parser

import (
	"errors"
	"fmt"
)

// FailureReason tells the user why no text could be recovered.
type FailureReason string

const (
	ReasonScanned    FailureReason = "scanned"
	ReasonEncrypted  FailureReason = "encrypted"
	ReasonUnreadable FailureReason = "unreadable"
)

var (
	errUnsupported = errors.New("unsupported format for this strategy")
	errNoText      = errors.New("no text found")
)

const (
	msgScanned    = "Unable to extract text from this PDF. This could be a scanned document or an image-based PDF. Please try a different document or convert to a text-based format."
	msgEncrypted  = "Unable to extract text from this PDF. It appears to be password-protected or encrypted. Please remove the protection and try again."
	msgUnreadable = "Unable to extract text from this document. Please try a different document or convert to a text-based format."
)

// ExtractionFailure is returned when every strategy came up short. It is
// terminal for the request.
type ExtractionFailure struct {
	Reason  FailureReason
	Message string
	Kind    Kind
	// Attempts holds the per-strategy errors, for logs.
	Attempts []error
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("extraction failed (%s, %s): %v", e.Kind, e.Reason, errors.Join(e.Attempts...))
}

func newFailure(kind Kind, encrypted bool, attempts []error) *ExtractionFailure {
	f := &ExtractionFailure{Reason: ReasonUnreadable, Message: msgUnreadable, Kind: kind, Attempts: attempts}
	if kind == KindPDF {
		f.Reason, f.Message = ReasonScanned, msgScanned
		if encrypted {
			f.Reason, f.Message = ReasonEncrypted, msgEncrypted
		}
	}
	return f
}
