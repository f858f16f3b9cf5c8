package llm

type ModelRequest struct {
	Model        string
	SystemPrompt string
	UserInput    string
	MaxTokens    int
	Temperature  float64
}

type ModelResponse struct {
	Content    string
	StopReason string
}
