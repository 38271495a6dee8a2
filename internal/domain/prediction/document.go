package prediction

import (
	"fmt"

	"github.com/skillserve/skillapi/internal/domain"
)

// Span locates an answer inside its source document by character offsets.
type Span struct {
	start int
	end   int
}

// NewSpan validates and creates a Span. Offsets must be non-negative and
// start must not exceed end. Offsets are NOT checked against the document
// length: documents may be window-truncated independently of the offsets
// the model reports.
func NewSpan(start, end int) (Span, error) {
	if start < 0 || end < 0 {
		return Span{}, fmt.Errorf("%w: span offsets must be non-negative", domain.ErrValidation)
	}
	if start > end {
		return Span{}, fmt.Errorf("%w: span start %d exceeds end %d", domain.ErrValidation, start, end)
	}
	return Span{start: start, end: end}, nil
}

// Start returns the start character offset.
func (s Span) Start() int { return s.start }

// End returns the end character offset.
func (s Span) End() int { return s.end }

// Document is a source document fragment supporting a prediction
// (immutable value object).
type Document struct {
	index         string
	documentID    string
	document      string
	span          *Span
	url           string
	source        string
	documentScore float64
}

// DocumentOption configures optional Document fields.
type DocumentOption func(*Document)

// WithIndex sets the document store the document came from.
func WithIndex(index string) DocumentOption {
	return func(d *Document) { d.index = index }
}

// WithDocumentID sets the id of the document in its index.
func WithDocumentID(id string) DocumentOption {
	return func(d *Document) { d.documentID = id }
}

// WithSpan sets the answer span within the document.
func WithSpan(span Span) DocumentOption {
	return func(d *Document) { d.span = &span }
}

// WithURL sets the URL source of the document.
func WithURL(url string) DocumentOption {
	return func(d *Document) { d.url = url }
}

// WithSource sets the source of the document.
func WithSource(source string) DocumentOption {
	return func(d *Document) { d.source = source }
}

// WithDocumentScore sets the retrieval score assigned to the document.
func WithDocumentScore(score float64) DocumentOption {
	return func(d *Document) { d.documentScore = score }
}

// NewDocument validates and creates a Document. The document text is
// required; everything else defaults to empty (score to 0).
func NewDocument(document string, opts ...DocumentOption) (Document, error) {
	if document == "" {
		return Document{}, fmt.Errorf("%w: document text is required", domain.ErrValidation)
	}
	d := Document{document: document}
	for _, o := range opts {
		o(&d)
	}
	return d, nil
}

// Index returns the document store the document was retrieved from.
func (d *Document) Index() string { return d.index }

// DocumentID returns the id of the document in its index.
func (d *Document) DocumentID() string { return d.documentID }

// Text returns the document text.
func (d *Document) Text() string { return d.document }

// Span returns the answer span and whether one is set.
func (d *Document) Span() (Span, bool) {
	if d.span == nil {
		return Span{}, false
	}
	return *d.span, true
}

// URL returns the URL source of the document.
func (d *Document) URL() string { return d.url }

// Source returns the source of the document.
func (d *Document) Source() string { return d.source }

// Score returns the retrieval score assigned to the document.
func (d *Document) Score() float64 { return d.documentScore }
