package skill

import (
	"context"

	"github.com/skillserve/skillapi/internal/domain/query"
	"github.com/skillserve/skillapi/internal/modelapi"
)

// Classifier scores candidate labels against a query.
type Classifier interface {
	SequenceClassification(
		ctx context.Context, queryText string, labels []string,
	) (modelapi.SequenceClassificationOutput, error)
}

// Reader extracts answer candidates for a question from one passage. An
// empty passage asks the model to answer from the question alone.
type Reader interface {
	ReadAnswers(ctx context.Context, question, passage string) ([]modelapi.Answer, error)
}

// Runner executes a skill query end to end. Implemented by Service and by
// the caching decorator wrapped around it.
type Runner interface {
	Query(ctx context.Context, req query.Request) (query.Output, error)
}
