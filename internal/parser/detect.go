package parser

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind is the document format a strategy dispatches on.
type Kind string

const (
	KindPDF      Kind = "pdf"
	KindDOCX     Kind = "docx"
	KindPPTX     Kind = "pptx"
	KindXLSX     Kind = "xlsx"
	KindHTML     Kind = "html"
	KindMarkdown Kind = "markdown"
	KindText     Kind = "text"
	KindUnknown  Kind = "unknown"
)

var mimeKinds = map[string]Kind{
	"application/pdf":   KindPDF,
	"application/x-pdf": KindPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   KindDOCX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": KindPPTX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         KindXLSX,
	"text/html":       KindHTML,
	"text/markdown":   KindMarkdown,
	"text/x-markdown": KindMarkdown,
	"text/plain":      KindText,
}

var extKinds = map[string]Kind{
	".pdf":      KindPDF,
	".docx":     KindDOCX,
	".pptx":     KindPPTX,
	".xlsx":     KindXLSX,
	".html":     KindHTML,
	".htm":      KindHTML,
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".txt":      KindText,
}

// DetectKind picks the format of data. Magic bytes win for binary
// containers, then the declared media type, then the filename extension,
// then the sniffed text type.
func DetectKind(data []byte, mediaType, filename string) Kind {
	sniffed := kindFromMIME(mimetype.Detect(data).String())
	switch sniffed {
	case KindPDF, KindDOCX, KindPPTX, KindXLSX:
		return sniffed
	}
	if k := kindFromMIME(mediaType); k != KindUnknown {
		return k
	}
	if k, ok := extKinds[strings.ToLower(filepath.Ext(filename))]; ok {
		return k
	}
	return sniffed
}

func kindFromMIME(mediaType string) Kind {
	base, _, _ := strings.Cut(mediaType, ";")
	if k, ok := mimeKinds[strings.ToLower(strings.TrimSpace(base))]; ok {
		return k
	}
	return KindUnknown
}
