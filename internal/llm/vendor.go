package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// vendorReply is what an SDK adapter extracts from its native response.
type vendorReply struct {
	text      string
	model     string
	truncated bool
	usage     Usage
}

// settle turns a vendor reply into a Response. Truncated output fails
// before validation so it is not mistaken for a malformed (and retryable)
// reply.
func settle(req Request, r vendorReply) (*Response, error) {
	content := json.RawMessage(r.text)
	if r.truncated {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	if r.usage.TotalTokens == 0 {
		r.usage.TotalTokens = r.usage.InputTokens + r.usage.OutputTokens
	}
	return &Response{
		Content:    content,
		Usage:      r.usage,
		Model:      r.model,
		StopReason: "end",
	}, nil
}

// statusError maps a vendor HTTP status onto the package errors. A status of
// zero means the request never got an answer.
func statusError(vendor string, status int, retryAfter time.Duration, docs []Document, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
	case status == http.StatusRequestEntityTooLarge && len(docs) > 0:
		return &ErrUnsupportedDocument{
			Provider:  vendor,
			MediaType: docs[0].MediaType,
			Reason:    fmt.Sprintf("%d bytes is over the request limit", len(docs[0].Data)),
		}
	}
	return &ErrProviderUnavailable{Err: err}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// resolveModel expands a short alias; anything else is passed through as a
// vendor model ID.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
