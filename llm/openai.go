package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAICompleter struct {
	client openai.Client
	model  string
}

func newOpenAICompleter(apiKey string, opts Options) *openAICompleter {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if strings.TrimSpace(opts.BaseURL) != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimSpace(opts.BaseURL)))
	}
	return &openAICompleter{
		client: openai.NewClient(reqOpts...),
		model:  strings.TrimSpace(opts.Model),
	}
}

func (c *openAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
