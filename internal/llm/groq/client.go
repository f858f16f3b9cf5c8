package groq

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

type Client struct {
	Client openai.Client
}

// NewClient builds a Groq client on top of the OpenAI-compatible chat
// completions endpoint Groq exposes.
func NewClient(apiKey string, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Groq API key is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	openaiClient := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(3),
	)

	return &Client{
		Client: openaiClient,
	}, nil
}
