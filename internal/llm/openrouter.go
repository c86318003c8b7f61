package llm

import "net/http"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter lists calling apps by these headers.
const (
	openRouterReferer = "https://github.com/abhisek/quizarcade"
	openRouterTitle   = "Quiz Arcade"
)

// NewOpenRouterProvider routes through OpenRouter's OpenAI-compatible API.
// Model IDs carry the upstream vendor ("anthropic/claude-haiku-4.5") and are
// never aliased.
func NewOpenRouterProvider(cfg VendorConfig) (*OpenAIProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	client := &http.Client{Transport: attributionTransport{base: http.DefaultTransport}}
	return newChatProvider("openrouter", cfg, client)
}

type attributionTransport struct {
	base http.RoundTripper
}

func (t attributionTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", openRouterReferer)
	r.Header.Set("X-Title", openRouterTitle)
	return t.base.RoundTrip(r)
}
