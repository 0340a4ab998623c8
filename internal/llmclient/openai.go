package llmclient

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client over the official openai-go SDK
// (chat completions).
type OpenAIClient struct {
	model string
	opts  []option.RequestOption
}

func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("llmclient: openai api key missing")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClient{
		model: model,
		opts:  append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...),
	}, nil
}

func (o *OpenAIClient) Name() string { return "openai:" + o.model }
func (o *OpenAIClient) Close() error { return nil }

func (o *OpenAIClient) Generate(ctx context.Context, req Request) (Response, error) {
	client := openai.NewClient(o.opts...)

	model := req.Model
	if model == "" {
		model = o.model
	}
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a legal slide deck generator. Respond with strict JSON only."),
			openai.UserMessage(req.Prompt),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, &ProviderError{Provider: "openai", Message: "empty choices"}
	}
	return Response{OutputText: resp.Choices[0].Message.Content}, nil
}

func mapOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 {
			return fmt.Errorf("%s: %w", apiErr.Message, ErrLimitExceeded)
		}
		return &ProviderError{Provider: "openai", Status: apiErr.StatusCode, Message: apiErr.Message, Err: err}
	}
	return &ProviderError{Provider: "openai", Message: err.Error(), Err: err}
}
