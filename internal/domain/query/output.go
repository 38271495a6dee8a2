// Package query holds the normalized output a skill returns for a query
// and the adapter constructors that build it from raw model API payloads.
package query

import (
	"github.com/skillserve/skillapi/internal/domain/prediction"
)

// Output is the result of processing one query: all predictions, always
// kept in descending rank order. Every constructor sorts; callers cannot
// bypass the ordering invariant.
type Output struct {
	predictions []prediction.Prediction
}

// New creates an Output from already-built predictions. The slice is
// copied and sorted.
func New(predictions []prediction.Prediction) Output {
	ps := make([]prediction.Prediction, len(predictions))
	copy(ps, predictions)
	sortPredictions(ps)
	return Output{predictions: ps}
}

// Predictions returns the predictions in descending rank order.
func (o *Output) Predictions() []prediction.Prediction { return o.predictions }
