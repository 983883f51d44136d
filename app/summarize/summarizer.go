// Package summarize is the boundary to the external AI summarization
// collaborator. The pipeline treats it as an opaque function that may fail
// or be slow; failures never fail a source.
package summarize

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Summarizer produces a generated summary for extracted plain text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

const systemPrompt = "You summarize syndicated feed items. Reply with a plain-text summary of at most two sentences, no markup."

// OpenAISummarizer implements Summarizer over the OpenAI chat completions
// API.
type OpenAISummarizer struct {
	model string
	opts  []option.RequestOption
}

func NewOpenAISummarizer(apiKey, baseURL, model string) (*OpenAISummarizer, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if model == "" {
		return nil, errors.New("summary model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAISummarizer{model: model, opts: opts}, nil
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	client := openai.NewClient(s.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
