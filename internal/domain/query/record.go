package query

import (
	"fmt"

	"github.com/skillserve/skillapi/internal/domain"
	"github.com/skillserve/skillapi/internal/domain/prediction"
)

// Record is the serializable form of an Output.
type Record struct {
	Predictions []PredictionRecord `json:"predictions"`
}

// PredictionRecord is the serializable form of a prediction.
type PredictionRecord struct {
	PredictionScore     float64          `json:"prediction_score"`
	PredictionOutput    OutputRecord     `json:"prediction_output"`
	PredictionDocuments []DocumentRecord `json:"prediction_documents"`
}

// OutputRecord is the serializable form of a prediction output.
type OutputRecord struct {
	Output      string  `json:"output"`
	OutputScore float64 `json:"output_score"`
}

// DocumentRecord is the serializable form of a prediction document. Span
// is [start, end] or null.
type DocumentRecord struct {
	Index         string  `json:"index"`
	DocumentID    string  `json:"document_id"`
	Document      string  `json:"document"`
	Span          []int   `json:"span"`
	URL           string  `json:"url"`
	Source        string  `json:"source"`
	DocumentScore float64 `json:"document_score"`
}

// Record returns the serializable form of the Output, preserving the rank
// order.
func (o *Output) Record() Record {
	rec := Record{Predictions: make([]PredictionRecord, len(o.predictions))}
	for i := range o.predictions {
		rec.Predictions[i] = predictionRecord(&o.predictions[i])
	}
	return rec
}

func predictionRecord(p *prediction.Prediction) PredictionRecord {
	out := p.Output()
	rec := PredictionRecord{
		PredictionScore: p.Score(),
		PredictionOutput: OutputRecord{
			Output:      out.Text(),
			OutputScore: out.Score(),
		},
		PredictionDocuments: make([]DocumentRecord, len(p.Documents())),
	}
	for i, d := range p.Documents() {
		dr := DocumentRecord{
			Index:         d.Index(),
			DocumentID:    d.DocumentID(),
			Document:      d.Text(),
			URL:           d.URL(),
			Source:        d.Source(),
			DocumentScore: d.Score(),
		}
		if span, ok := d.Span(); ok {
			dr.Span = []int{span.Start(), span.End()}
		}
		rec.PredictionDocuments[i] = dr
	}
	return rec
}

// FromRecord reconstructs a validated Output from its record form. Every
// field goes back through the domain constructors, and the predictions are
// re-sorted.
func FromRecord(rec Record) (Output, error) {
	predictions := make([]prediction.Prediction, 0, len(rec.Predictions))
	for i, pr := range rec.Predictions {
		p, err := predictionFromRecord(pr)
		if err != nil {
			return Output{}, fmt.Errorf("prediction %d: %w", i, err)
		}
		predictions = append(predictions, p)
	}
	return New(predictions), nil
}

func predictionFromRecord(rec PredictionRecord) (prediction.Prediction, error) {
	output, err := prediction.NewOutput(rec.PredictionOutput.Output, rec.PredictionOutput.OutputScore)
	if err != nil {
		return prediction.Prediction{}, err
	}

	docs := make([]prediction.Document, 0, len(rec.PredictionDocuments))
	for i, dr := range rec.PredictionDocuments {
		doc, err := documentFromRecord(dr)
		if err != nil {
			return prediction.Prediction{}, fmt.Errorf("document %d: %w", i, err)
		}
		docs = append(docs, doc)
	}

	return prediction.New(rec.PredictionScore, output, docs), nil
}

func documentFromRecord(rec DocumentRecord) (prediction.Document, error) {
	opts := []prediction.DocumentOption{
		prediction.WithIndex(rec.Index),
		prediction.WithDocumentID(rec.DocumentID),
		prediction.WithURL(rec.URL),
		prediction.WithSource(rec.Source),
		prediction.WithDocumentScore(rec.DocumentScore),
	}
	if rec.Span != nil {
		if len(rec.Span) != 2 {
			return prediction.Document{}, fmt.Errorf(
				"%w: span must be [start, end], got %d offsets", domain.ErrValidation, len(rec.Span))
		}
		span, err := prediction.NewSpan(rec.Span[0], rec.Span[1])
		if err != nil {
			return prediction.Document{}, err
		}
		opts = append(opts, prediction.WithSpan(span))
	}
	return prediction.NewDocument(rec.Document, opts...)
}
