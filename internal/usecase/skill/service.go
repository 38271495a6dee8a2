// Package skill runs queries against a model backend and normalizes the
// raw results into ranked query outputs.
package skill

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skillserve/skillapi/internal/domain"
	"github.com/skillserve/skillapi/internal/domain/query"
	"github.com/skillserve/skillapi/internal/metrics"
	"github.com/skillserve/skillapi/internal/modelapi"
)

// maxConcurrentReads caps parallel per-passage reader calls.
const maxConcurrentReads = 8

// Service dispatches a query to the matching model client and adapts the
// raw payload into a sorted query output.
type Service struct {
	classifier Classifier
	reader     Reader
	logger     *zap.Logger
}

var _ Runner = (*Service)(nil)

// New creates a skill service. Either client may be nil; queries for the
// missing skill fail with a provider error.
func New(classifier Classifier, reader Reader, logger *zap.Logger) *Service {
	return &Service{classifier: classifier, reader: reader, logger: logger}
}

// Query executes a skill query end to end.
func (s *Service) Query(ctx context.Context, req query.Request) (query.Output, error) {
	var (
		out query.Output
		err error
	)

	switch req.Skill() {
	case query.SkillSequenceClassification:
		out, err = s.classify(ctx, req)
	case query.SkillQuestionAnswering:
		out, err = s.read(ctx, req)
	default:
		return query.Output{}, fmt.Errorf("%w: %q", domain.ErrUnknownSkill, req.Skill())
	}
	if err != nil {
		return query.Output{}, err
	}

	metrics.PredictionsPerQuery.
		WithLabelValues(string(req.Skill())).
		Observe(float64(len(out.Predictions())))

	s.logger.Debug("query executed",
		zap.String("skill", string(req.Skill())),
		zap.Int("predictions", len(out.Predictions())),
	)
	return out, nil
}

func (s *Service) classify(ctx context.Context, req query.Request) (query.Output, error) {
	if s.classifier == nil {
		return query.Output{}, fmt.Errorf("%w: no classifier configured", domain.ErrModelProviderError)
	}

	raw, err := s.classifier.SequenceClassification(ctx, req.Query(), req.Choices())
	if err != nil {
		return query.Output{}, fmt.Errorf("sequence classification: %w", err)
	}

	out, err := query.FromSequenceClassification(req.Choices(), raw, req.Context())
	if err != nil {
		return query.Output{}, fmt.Errorf("adapt classification output: %w", err)
	}
	return out, nil
}

func (s *Service) read(ctx context.Context, req query.Request) (query.Output, error) {
	if s.reader == nil {
		return query.Output{}, fmt.Errorf("%w: no reader configured", domain.ErrModelProviderError)
	}

	passages := req.Context().Passages()
	if len(passages) == 0 {
		passages = []string{""}
	}

	answers := make([][]modelapi.Answer, len(passages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, passage := range passages {
		i, passage := i, passage
		g.Go(func() error {
			a, err := s.reader.ReadAnswers(gctx, req.Query(), passage)
			if err != nil {
				return fmt.Errorf("read passage %d: %w", i, err)
			}
			answers[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return query.Output{}, err
	}

	raw := modelapi.QuestionAnsweringOutput{Answers: answers}
	out, err := query.FromQuestionAnswering(raw, req.Context(), req.ContextScore())
	if err != nil {
		return query.Output{}, fmt.Errorf("adapt answering output: %w", err)
	}
	return out, nil
}
