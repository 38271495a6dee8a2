package query

import (
	"fmt"

	"github.com/skillserve/skillapi/internal/domain"
	"github.com/skillserve/skillapi/internal/domain/prediction"
)

// ContextKind discriminates the shapes a query context can take.
type ContextKind string

const (
	// ContextNone means no context was supplied.
	ContextNone ContextKind = "none"
	// ContextShared means one text is shared by all answers.
	ContextShared ContextKind = "shared"
	// ContextPerAnswer means one text per answer, positionally aligned.
	ContextPerAnswer ContextKind = "per_answer"
)

// Context is the context argument of the adapter constructors: absent, one
// shared text, or one text per answer. The zero value is ContextNone.
type Context struct {
	kind      ContextKind
	shared    string
	perAnswer []string
}

// NoContext returns the absent context.
func NoContext() Context { return Context{} }

// SharedContext returns a context shared by all answers.
func SharedContext(text string) Context {
	return Context{kind: ContextShared, shared: text}
}

// PerAnswerContext returns a context with one text per answer.
func PerAnswerContext(texts []string) Context {
	c := Context{kind: ContextPerAnswer}
	if len(texts) > 0 {
		c.perAnswer = make([]string, len(texts))
		copy(c.perAnswer, texts)
	}
	return c
}

// Kind returns the context shape.
func (c Context) Kind() ContextKind {
	if c.kind == "" {
		return ContextNone
	}
	return c.kind
}

// Passages returns the context texts: nil when absent, a single-element
// slice for a shared context, the aligned texts otherwise.
func (c Context) Passages() []string {
	switch c.Kind() {
	case ContextShared:
		return []string{c.shared}
	case ContextPerAnswer:
		return c.perAnswer
	default:
		return nil
	}
}

// documentsFor fans the context out into one document list per answer:
// no context produces n empty lists, a shared text produces n singleton
// lists wrapping the same text, per-answer texts produce n singleton lists
// wrapping the corresponding text. A per-answer context whose length
// differs from n fails with a shape-mismatch error.
func (c Context) documentsFor(n int) ([][]prediction.Document, error) {
	lists := make([][]prediction.Document, n)

	switch c.Kind() {
	case ContextNone:
		// all lists stay empty
	case ContextShared:
		doc, err := prediction.NewDocument(c.shared)
		if err != nil {
			return nil, fmt.Errorf("shared context: %w", err)
		}
		for i := range lists {
			lists[i] = []prediction.Document{doc}
		}
	case ContextPerAnswer:
		if len(c.perAnswer) != n {
			return nil, fmt.Errorf("%w: %d context texts for %d answers",
				domain.ErrShapeMismatch, len(c.perAnswer), n)
		}
		for i, text := range c.perAnswer {
			doc, err := prediction.NewDocument(text)
			if err != nil {
				return nil, fmt.Errorf("context %d: %w", i, err)
			}
			lists[i] = []prediction.Document{doc}
		}
	}

	return lists, nil
}

// ScoreKind discriminates the shapes a context score can take.
type ScoreKind string

const (
	// ScoreDefault means no score was supplied; passages score 1.
	ScoreDefault ScoreKind = "default"
	// ScoreShared means one score is shared by all passages.
	ScoreShared ScoreKind = "shared"
	// ScorePerAnswer means one score per passage, positionally aligned.
	ScorePerAnswer ScoreKind = "per_answer"
)

// ContextScore is the retrieval score argument accompanying a context. Its
// shape must agree with the context shape. The zero value is ScoreDefault.
type ContextScore struct {
	kind      ScoreKind
	shared    float64
	perAnswer []float64
}

// DefaultScore returns the absent score; passages default to score 1.
func DefaultScore() ContextScore { return ContextScore{} }

// SharedScore returns a score shared by all passages.
func SharedScore(score float64) ContextScore {
	return ContextScore{kind: ScoreShared, shared: score}
}

// PerAnswerScores returns a score per passage.
func PerAnswerScores(scores []float64) ContextScore {
	s := ContextScore{kind: ScorePerAnswer}
	if len(scores) > 0 {
		s.perAnswer = make([]float64, len(scores))
		copy(s.perAnswer, scores)
	}
	return s
}

// Kind returns the score shape.
func (s ContextScore) Kind() ScoreKind {
	if s.kind == "" {
		return ScoreDefault
	}
	return s.kind
}

// Values returns the raw score values for the per-answer shape, nil
// otherwise.
func (s ContextScore) Values() []float64 {
	if s.Kind() != ScorePerAnswer {
		return nil
	}
	return s.perAnswer
}

// Shared returns the shared score value, or 1 for the default shape.
func (s ContextScore) Shared() float64 {
	if s.Kind() == ScoreShared {
		return s.shared
	}
	return defaultDocumentScore
}
