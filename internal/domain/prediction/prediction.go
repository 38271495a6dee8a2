package prediction

// Prediction is one candidate answer for a query: an overall score, exactly
// one Output, and the documents the skill used to derive it (may be empty).
// The prediction score is up to the skill; adapters set it equal to the
// output score but nothing requires that.
type Prediction struct {
	predictionScore float64
	output          Output
	documents       []Document
}

// New creates a Prediction. The documents slice is copied.
func New(predictionScore float64, output Output, documents []Document) Prediction {
	var docs []Document
	if len(documents) > 0 {
		docs = make([]Document, len(documents))
		copy(docs, documents)
	}
	return Prediction{
		predictionScore: predictionScore,
		output:          output,
		documents:       docs,
	}
}

// Score returns the overall prediction score.
func (p *Prediction) Score() float64 { return p.predictionScore }

// Output returns the prediction output.
func (p *Prediction) Output() Output { return p.output }

// Documents returns the supporting documents, empty if none were used.
func (p *Prediction) Documents() []Document { return p.documents }
