package judge

import (
	"context"
)

// Input carries everything the evaluator sees for one candidate output.
type Input struct {
	SystemPrompt    string
	UserInput       string
	ExpectedOutput  string
	CandidateOutput string
}

// Judge renders a boolean factuality verdict for a candidate output against
// the expected output. Implementations never return an error: any failure
// resolves to a false verdict.
type Judge interface {
	Evaluate(ctx context.Context, input Input) bool
}
