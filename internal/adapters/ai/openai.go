package ai

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"mintrader/pkg/errors"
	"mintrader/pkg/logger"
)

// OpenAIProvider implements ChatProvider on the OpenAI chat completions API
type OpenAIProvider struct {
	client  openai.Client
	timeout time.Duration
}

var _ ChatProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates the provider. timeout bounds each completion
// call.
func NewOpenAIProvider(apiKey string, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		timeout: timeout,
	}
}

// Complete runs one chat completion and returns the raw assistant text
func (p *OpenAIProvider) Complete(ctx context.Context, req ChatRequest) (string, error) {
	log := logger.Get()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSONResponse {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	started := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrapf(errors.ErrGatewayUnavailable, "chat completion: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(errors.ErrGatewayUnavailable, "chat completion returned no choices")
	}

	log.Debugw("chat completion finished",
		"model", req.Model,
		"duration_ms", time.Since(started).Milliseconds(),
		"total_tokens", resp.Usage.TotalTokens)

	return resp.Choices[0].Message.Content, nil
}
