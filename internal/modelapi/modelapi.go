// Package modelapi holds typed mirrors of the raw inference API payloads.
// The domain adapters consume them; the model transport clients produce them.
package modelapi

// SequenceClassificationOutput is the raw result of a sequence
// classification model call.
type SequenceClassificationOutput struct {
	ModelOutputs ModelOutputs `json:"model_outputs"`
}

// ModelOutputs carries the per-answer score matrix. Logits holds one row
// per batch element; only the first row is consumed.
type ModelOutputs struct {
	Logits [][]float64 `json:"logits"`
}

// QuestionAnsweringOutput is the raw result of a question answering model
// call. Answers holds one candidate list per context passage.
type QuestionAnsweringOutput struct {
	Answers [][]Answer `json:"answers"`
}

// Answer is a single extractive answer candidate with its character span
// inside the passage it was read from.
type Answer struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}
