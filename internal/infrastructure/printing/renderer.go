package printing

import (
	"context"
	"time"
)

// Document is one page set to print. HTML may be a fragment or a full
// document. Footer is a Chrome print template in which the pageNumber and
// totalPages classes are filled in by the browser.
type Document struct {
	HTML      string
	Title     string
	Landscape bool
	Footer    string
	Timeout   time.Duration
}

// PDFRenderer prints documents to PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
	Close() error
}

// FailureKind tells callers whether retrying a render can help.
type FailureKind string

const (
	FailureInput    FailureKind = "input"
	FailureTemplate FailureKind = "template"
	FailureTimeout  FailureKind = "timeout"
	FailureBrowser  FailureKind = "browser"
)

// RenderError reports a failed template or print step.
type RenderError struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (e *RenderError) Error() string {
	msg := "printing: " + e.Op
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error { return e.Err }

func fail(kind FailureKind, op string, err error) error {
	return &RenderError{Kind: kind, Op: op, Err: err}
}
