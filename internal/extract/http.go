package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/abhisek/quizarcade/internal/quiz"
)

// maxErrorBody bounds how much of a failed response is kept for the error.
const maxErrorBody = 4 << 10

// HTTPExtractor posts a PDF to a remote extraction service as a multipart
// upload and reads back {"questions": [...]}.
type HTTPExtractor struct {
	url    string
	key    string
	client *http.Client
}

// HTTPOption configures an HTTPExtractor.
type HTTPOption func(*HTTPExtractor)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(e *HTTPExtractor) { e.client = c }
}

// NewHTTPExtractor creates an extractor for the service at url. key, when
// set, is sent as a bearer token.
func NewHTTPExtractor(url, key string, opts ...HTTPOption) *HTTPExtractor {
	e := &HTTPExtractor{
		url:    url,
		key:    key,
		client: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *HTTPExtractor) Extract(ctx context.Context, doc Document) ([]quiz.Question, error) {
	if !doc.IsPDF() {
		return nil, failed(fmt.Errorf("%w: only .pdf files are accepted", ErrUnsupportedDocument))
	}
	if e.url == "" {
		return nil, failed(errors.New("extraction service URL is not configured"))
	}

	body, contentType, err := multipartPDF(doc)
	if err != nil {
		return nil, failed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, body)
	if err != nil {
		return nil, failed(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	if e.key != "" {
		req.Header.Set("Authorization", "Bearer "+e.key)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, failed(fmt.Errorf("post document: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failed(fmt.Errorf("read response: %w", err))
	}
	questions, err := decodeQuestionSet(raw)
	if err != nil {
		return nil, failed(err)
	}
	return finish(questions)
}

func multipartPDF(doc Document) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := doc.Name
	if name == "" {
		name = "document.pdf"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="pdf"; filename=%q`, name))
	h.Set("Content-Type", "application/pdf")

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", fmt.Errorf("write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// decodeQuestionSet validates raw against the question-set schema and
// decodes it.
func decodeQuestionSet(raw []byte) ([]quiz.Question, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid response format: %w", err)
	}
	if err := validatePayload(v); err != nil {
		return nil, fmt.Errorf("invalid response format: %w", err)
	}

	var set struct {
		Questions []quiz.Question `json:"questions"`
	}
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return set.Questions, nil
}
