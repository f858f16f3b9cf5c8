package groq

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/promptops/experiment-hub/internal/llm"
)

func (c *Client) InvokeModel(ctx context.Context, request llm.ModelRequest) (*llm.ModelResponse, error) {

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.SystemPrompt),
			openai.UserMessage(request.UserInput),
		},
		Temperature: openai.Float(request.Temperature),
		Model:       openai.ChatModel(request.Model),
	}
	if request.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(request.MaxTokens))
	}

	output, err := c.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("unable to invoke groq model %s: %w", request.Model, err)
	}

	if len(output.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := output.Choices[0]
	return &llm.ModelResponse{
		Content:    choice.Message.Content,
		StopReason: fmt.Sprint(choice.FinishReason),
	}, nil
}
