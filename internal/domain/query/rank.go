package query

import (
	"sort"

	"github.com/skillserve/skillapi/internal/domain/prediction"
)

// defaultDocumentScore ranks predictions without supporting documents.
const defaultDocumentScore = 1

// rankKey orders predictions by the score of their first supporting
// document, then by the prediction score itself. Predictions backed by a
// higher-scoring document rank ahead of predictions with no document or
// lower-scoring documents regardless of their own score.
type rankKey struct {
	documentScore   float64
	predictionScore float64
}

func keyFor(p *prediction.Prediction) rankKey {
	k := rankKey{
		documentScore:   defaultDocumentScore,
		predictionScore: p.Score(),
	}
	if docs := p.Documents(); len(docs) > 0 {
		k.documentScore = docs[0].Score()
	}
	return k
}

// before reports whether a ranks ahead of b (descending on both components).
func (a rankKey) before(b rankKey) bool {
	if a.documentScore != b.documentScore {
		return a.documentScore > b.documentScore
	}
	return a.predictionScore > b.predictionScore
}

// sortPredictions sorts in place, descending by rank key. The sort is
// stable: full-key ties keep their input order.
func sortPredictions(ps []prediction.Prediction) {
	sort.SliceStable(ps, func(i, j int) bool {
		return keyFor(&ps[i]).before(keyFor(&ps[j]))
	})
}
