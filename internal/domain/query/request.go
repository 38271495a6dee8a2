package query

import (
	"fmt"

	"github.com/skillserve/skillapi/internal/domain"
)

// Skill identifies the model task a query should run.
type Skill string

const (
	// SkillSequenceClassification scores candidate answers against the query.
	SkillSequenceClassification Skill = "sequence-classification"
	// SkillQuestionAnswering extracts answers from context passages.
	SkillQuestionAnswering Skill = "question-answering"
)

// Bounds for query requests.
const (
	MaxQueryLen = 4096
	MaxChoices  = 128
	MaxPassages = 64
)

// Request is a validated skill query (immutable value object).
type Request struct {
	query        string
	skill        Skill
	choices      []string
	context      Context
	contextScore ContextScore
	userID       string
}

// NewRequest validates and creates a Request. Sequence classification
// requires candidate choices; question answering forbids them.
func NewRequest(
	queryText string, skill Skill, choices []string,
	ctx Context, ctxScore ContextScore, userID string,
) (Request, error) {
	if queryText == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	if len(queryText) > MaxQueryLen {
		return Request{}, fmt.Errorf("%w: query exceeds %d characters", domain.ErrValidation, MaxQueryLen)
	}

	switch skill {
	case SkillSequenceClassification:
		if len(choices) == 0 {
			return Request{}, fmt.Errorf("%w: sequence classification requires choices", domain.ErrValidation)
		}
		if len(choices) > MaxChoices {
			return Request{}, fmt.Errorf("%w: more than %d choices", domain.ErrValidation, MaxChoices)
		}
		for i, c := range choices {
			if c == "" {
				return Request{}, fmt.Errorf("%w: choice %d is empty", domain.ErrValidation, i)
			}
		}
	case SkillQuestionAnswering:
		if len(choices) > 0 {
			return Request{}, fmt.Errorf("%w: question answering does not take choices", domain.ErrValidation)
		}
	default:
		return Request{}, fmt.Errorf("%w: %q", domain.ErrUnknownSkill, skill)
	}

	if n := len(ctx.Passages()); n > MaxPassages {
		return Request{}, fmt.Errorf("%w: more than %d context passages", domain.ErrValidation, MaxPassages)
	}

	var cs []string
	if len(choices) > 0 {
		cs = make([]string, len(choices))
		copy(cs, choices)
	}

	return Request{
		query:        queryText,
		skill:        skill,
		choices:      cs,
		context:      ctx,
		contextScore: ctxScore,
		userID:       userID,
	}, nil
}

// Query returns the query text.
func (r *Request) Query() string { return r.query }

// Skill returns the skill type.
func (r *Request) Skill() Skill { return r.skill }

// Choices returns the candidate answers for classification.
func (r *Request) Choices() []string { return r.choices }

// Context returns the context argument.
func (r *Request) Context() Context { return r.context }

// ContextScore returns the context score argument.
func (r *Request) ContextScore() ContextScore { return r.contextScore }

// UserID returns the id of the requesting user, empty if anonymous.
func (r *Request) UserID() string { return r.userID }
