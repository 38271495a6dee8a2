package domain

import "errors"

var (
	// ErrValidation signals a field that violates its type or shape constraint.
	ErrValidation = errors.New("validation failed")
	// ErrShapeMismatch signals disagreement between context and answer shapes.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrMissingField signals an expected field absent from a raw model payload.
	ErrMissingField = errors.New("missing field")
	// ErrUnknownSkill signals an unsupported skill type in a query request.
	ErrUnknownSkill = errors.New("unknown skill")
	// ErrModelProviderError signals a model provider failure.
	ErrModelProviderError = errors.New("model provider error")
)
