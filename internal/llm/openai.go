package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
}

// OpenAIProvider speaks the chat completions API. That API takes no PDF
// input, so only text documents can be extracted through it.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	vendor string
}

func NewOpenAIProvider(cfg VendorConfig) (*OpenAIProvider, error) {
	cfg.Model = resolveModel(cfg.Model, openaiModels)
	return newChatProvider("openai", cfg, nil)
}

// newChatProvider builds a client for any OpenAI-compatible endpoint. The
// model is used as given and a nil httpClient keeps the SDK default.
func newChatProvider(vendor string, cfg VendorConfig, httpClient *http.Client) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", vendor)
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		conf.HTTPClient = httpClient
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(conf),
		model:  cfg.Model,
		vendor: vendor,
	}, nil
}

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	messages, err := p.chatMessages(req)
	if err != nil {
		return nil, err
	}
	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            messages,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		raw, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(raw),
				Strict: true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, statusError(p.vendor, apiErr.HTTPStatusCode, 0, req.Documents, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return nil, statusError(p.vendor, reqErr.HTTPStatusCode, 0, req.Documents, err)
		}
		return nil, statusError(p.vendor, 0, 0, req.Documents, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("%s reply has no choices", p.vendor)}
	}

	choice := resp.Choices[0]
	return settle(req, vendorReply{
		text:      choice.Message.Content,
		model:     resp.Model,
		truncated: choice.FinishReason == openai.FinishReasonLength,
		usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	})
}

// chatMessages inlines text documents ahead of the first user message and
// refuses anything else before a request is sent.
func (p *OpenAIProvider) chatMessages(req Request) ([]openai.ChatCompletionMessage, error) {
	var inline strings.Builder
	for _, d := range req.Documents {
		if !d.IsText() {
			return nil, &ErrUnsupportedDocument{Provider: p.vendor, MediaType: d.MediaType}
		}
		inline.WriteString(documentText(d))
	}

	out := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	pending := inline.String()
	for _, m := range req.Messages {
		if m.Role == RoleAssistant {
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content})
			continue
		}
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: pending + m.Content})
		pending = ""
	}
	return out, nil
}
