package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"

	"github.com/bryanwahyu/artscan/internal/domain/vision"
	"github.com/bryanwahyu/artscan/internal/infra/vision/prompt"
)

const maxTokens = 1024

const defaultModel = "gpt-4o-mini"

// Client analyzes artwork images with a vision-capable chat model. The call
// is wrapped in a circuit breaker so a misbehaving provider fails fast
// instead of tying up scan workers.
type Client struct {
	api     *openai.Client
	model   string
	breaker *gobreaker.CircuitBreaker[openai.ChatCompletionResponse]
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
		breaker: gobreaker.NewCircuitBreaker[openai.ChatCompletionResponse](gobreaker.Settings{
			Name: "openai-vision",
		}),
	}
}

func (c *Client) Analyze(ctx context.Context, image []byte) (vision.Analysis, error) {
	dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt.GetUserPrompt()},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	}

	resp, err := c.breaker.Execute(func() (openai.ChatCompletionResponse, error) {
		return c.api.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return vision.Analysis{}, fmt.Errorf("%w: %v", vision.ErrQuotaExceeded, err)
		}
		return vision.Analysis{}, fmt.Errorf("%w: %v", vision.ErrAnalysisUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return vision.Analysis{}, fmt.Errorf("%w: empty completion", vision.ErrAnalysisUnavailable)
	}

	a, err := prompt.ParseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		return vision.Analysis{}, fmt.Errorf("%w: %v", vision.ErrAnalysisUnavailable, err)
	}
	return a, nil
}
