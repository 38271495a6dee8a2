package query

import (
	"fmt"

	"github.com/skillserve/skillapi/internal/domain"
	"github.com/skillserve/skillapi/internal/domain/prediction"
	"github.com/skillserve/skillapi/internal/modelapi"
)

// NoAnswerPlaceholder substitutes an empty extractive answer.
const NoAnswerPlaceholder = "No answer found."

// FromSequenceClassification builds an Output from a sequence
// classification payload. Scores are read from the first logits row and
// paired positionally with the candidate answers; when the two lengths
// differ the extra entries of the longer side are dropped. Construction is
// all-or-nothing: any invalid field aborts the whole Output.
func FromSequenceClassification(
	answers []string, apiOutput modelapi.SequenceClassificationOutput, ctx Context,
) (Output, error) {
	documents, err := ctx.documentsFor(len(answers))
	if err != nil {
		return Output{}, err
	}

	if len(apiOutput.ModelOutputs.Logits) == 0 {
		return Output{}, fmt.Errorf("%w: model_outputs.logits", domain.ErrMissingField)
	}
	scores := apiOutput.ModelOutputs.Logits[0]

	n := len(answers)
	if len(scores) < n {
		n = len(scores)
	}

	predictions := make([]prediction.Prediction, 0, n)
	for i := 0; i < n; i++ {
		output, err := prediction.NewOutput(answers[i], scores[i])
		if err != nil {
			return Output{}, fmt.Errorf("answer %d: %w", i, err)
		}
		predictions = append(predictions, prediction.New(scores[i], output, documents[i]))
	}

	return New(predictions), nil
}

// FromQuestionAnswering builds an Output from a question answering
// payload. The outer answers list holds one candidate list per context
// passage. Empty answer texts are replaced by NoAnswerPlaceholder. When
// the passage's resolved context is non-empty, each prediction carries
// exactly one document with the answer span and the resolved context
// score; multi-document attribution is out of scope.
func FromQuestionAnswering(
	apiOutput modelapi.QuestionAnsweringOutput, ctx Context, ctxScore ContextScore,
) (Output, error) {
	if apiOutput.Answers == nil {
		return Output{}, fmt.Errorf("%w: answers", domain.ErrMissingField)
	}

	passages := len(apiOutput.Answers)
	contexts, scores, err := resolvePassageContexts(ctx, ctxScore, passages)
	if err != nil {
		return Output{}, err
	}

	var predictions []prediction.Prediction
	for i, candidates := range apiOutput.Answers {
		for j, answer := range candidates {
			text := answer.Answer
			if text == "" {
				text = NoAnswerPlaceholder
			}

			output, err := prediction.NewOutput(text, answer.Score)
			if err != nil {
				return Output{}, fmt.Errorf("passage %d answer %d: %w", i, j, err)
			}

			var docs []prediction.Document
			if contexts[i] != "" {
				span, err := prediction.NewSpan(answer.Start, answer.End)
				if err != nil {
					return Output{}, fmt.Errorf("passage %d answer %d: %w", i, j, err)
				}
				doc, err := prediction.NewDocument(contexts[i],
					prediction.WithSpan(span),
					prediction.WithDocumentScore(scores[i]),
				)
				if err != nil {
					return Output{}, fmt.Errorf("passage %d answer %d: %w", i, j, err)
				}
				docs = []prediction.Document{doc}
			}

			predictions = append(predictions, prediction.New(answer.Score, output, docs))
		}
	}

	return New(predictions), nil
}

// resolvePassageContexts aligns the context and score arguments with the
// outer answers list. Both must be per-answer sequences of matching
// length, or both shared/absent; mixed shapes fail.
func resolvePassageContexts(
	ctx Context, ctxScore ContextScore, passages int,
) ([]string, []float64, error) {
	ctxPerAnswer := ctx.Kind() == ContextPerAnswer
	scorePerAnswer := ctxScore.Kind() == ScorePerAnswer
	if ctxPerAnswer != scorePerAnswer {
		return nil, nil, fmt.Errorf("%w: context is %s but context score is %s",
			domain.ErrShapeMismatch, ctx.Kind(), ctxScore.Kind())
	}

	contexts := make([]string, passages)
	scores := make([]float64, passages)

	if ctxPerAnswer {
		texts := ctx.Passages()
		values := ctxScore.Values()
		if len(texts) != passages {
			return nil, nil, fmt.Errorf("%w: %d context texts for %d passages",
				domain.ErrShapeMismatch, len(texts), passages)
		}
		if len(values) != passages {
			return nil, nil, fmt.Errorf("%w: %d context scores for %d passages",
				domain.ErrShapeMismatch, len(values), passages)
		}
		copy(contexts, texts)
		copy(scores, values)
		return contexts, scores, nil
	}

	shared := ""
	if ctx.Kind() == ContextShared {
		shared = ctx.Passages()[0]
	}
	for i := range contexts {
		contexts[i] = shared
		scores[i] = ctxScore.Shared()
	}
	return contexts, scores, nil
}
