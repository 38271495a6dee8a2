package prediction

import (
	"fmt"

	"github.com/skillserve/skillapi/internal/domain"
)

// Output is the actual model output for a single prediction: an answer for
// question answering, or a label for classification (immutable value object).
type Output struct {
	output      string
	outputScore float64
}

// NewOutput validates and creates an Output. The output text is required;
// the score is on whatever scale the producing model uses.
func NewOutput(output string, outputScore float64) (Output, error) {
	if output == "" {
		return Output{}, fmt.Errorf("%w: output text is required", domain.ErrValidation)
	}
	return Output{output: output, outputScore: outputScore}, nil
}

// Text returns the output text.
func (o *Output) Text() string { return o.output }

// Score returns the score the model assigned to the output.
func (o *Output) Score() float64 { return o.outputScore }
