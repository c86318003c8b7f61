package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizarcade/internal/bridge"
	"github.com/abhisek/quizarcade/internal/extract"
	"github.com/abhisek/quizarcade/internal/play"
	"github.com/abhisek/quizarcade/internal/quiz"
	"github.com/abhisek/quizarcade/internal/session"
	"github.com/abhisek/quizarcade/internal/store"
	"github.com/abhisek/quizarcade/internal/templates"
)

type stubExtractor struct {
	questions []quiz.Question
	err       error
	got       extract.Document
}

func (s *stubExtractor) Extract(_ context.Context, doc extract.Document) ([]quiz.Question, error) {
	s.got = doc
	return s.questions, s.err
}

type memArchive struct {
	names []string
	err   error
}

func (a *memArchive) Put(_ context.Context, name, _ string, _ []byte) (string, error) {
	a.names = append(a.names, name)
	return "uploads/" + name, a.err
}

func sampleQuestions() []quiz.Question {
	return []quiz.Question{
		{Number: 1, Type: quiz.TypeMCQ, Prompt: "Capital of France?", Choices: []quiz.Choice{
			{Text: "Paris", IsCorrect: true, Explanation: "Seat of government"}, {Text: "Lyon"},
		}},
		{Number: 2, Type: quiz.TypeTrueFalse, Prompt: "Water boils at 100C at sea level", Choices: []quiz.Choice{
			{Text: "True", IsCorrect: true}, {Text: "False"},
		}},
	}
}

type testEnv struct {
	srv     *httptest.Server
	ctrl    *play.Controller
	ext     *stubExtractor
	archive *memArchive
	http    *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(ctx, store.DriverSQLite, "file:web_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	for _, tpl := range templates.Seed() {
		require.NoError(t, st.TemplateRepo().Upsert(ctx, tpl))
	}

	host := NewHost()
	n := 0
	b := bridge.New(host, bridge.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("frame-%d", n)
	}))
	t.Cleanup(b.Close)

	sel := templates.NewSelector(st.TemplateRepo(), rand.New(rand.NewPCG(7, 7)))
	ctrl := play.NewController(session.NewManager(st.SessionStore(), sel), b)

	ext := &stubExtractor{questions: sampleQuestions()}
	arch := &memArchive{}
	srv := httptest.NewServer(New(ctrl, host, ext, WithArchive(arch)).Handler())
	t.Cleanup(srv.Close)

	return &testEnv{
		srv:     srv,
		ctrl:    ctrl,
		ext:     ext,
		archive: arch,
		http: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
			Timeout:       5 * time.Second,
		},
	}
}

func (e *testEnv) upload(t *testing.T, filename, contentType string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="pdf"; filename=%q`, filename)}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := e.http.Post(e.srv.URL+"/upload", w.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.http.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := e.http.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (e *testEnv) dial(t *testing.T, frameID string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws?frame=" + frameID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readOutbound(t *testing.T, conn *websocket.Conn, want string) outbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg outbound
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == want {
			return msg
		}
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"ok"`)
}

func TestPlayWithoutSessionRedirectsToUpload(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/play")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?missing=1", resp.Header.Get("Location"))

	resp, body := env.get(t, "/?missing=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, noSessionNotice)
	assert.Contains(t, body, `name="pdf"`)
}

func TestUploadCreatesSessionAndPlays(t *testing.T) {
	env := newTestEnv(t)

	resp := env.upload(t, "quiz.pdf", "application/pdf", []byte("%PDF-1.4"))
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/play", resp.Header.Get("Location"))

	assert.Equal(t, "quiz.pdf", env.ext.got.Name)
	assert.Equal(t, "application/pdf", env.ext.got.ContentType)
	assert.Equal(t, []string{"quiz.pdf"}, env.archive.names)

	resp, body := env.get(t, "/play")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Question 1 of 2")
	assert.Contains(t, body, "Capital of France?")
	assert.Contains(t, body, `src="/frame/frame-1"`)
	assert.Contains(t, body, `sandbox="allow-scripts allow-pointer-lock"`)

	resp, doc := env.get(t, "/frame/frame-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, frameCSP, resp.Header.Get("Content-Security-Policy"))
	assert.Contains(t, doc, "Capital of France?")
	assert.Contains(t, doc, "quiz-end")
}

func TestUploadArchiveFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.archive.err = errors.New("bucket missing")

	resp := env.upload(t, "quiz.pdf", "application/pdf", []byte("%PDF-1.4"))
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		questions  []quiz.Question
		wantStatus int
		wantText   string
	}{
		{
			name:       "extraction failed",
			err:        &extract.Error{Status: 500, Err: extract.ErrExtractionFailed},
			wantStatus: http.StatusBadGateway,
			wantText:   "Could not extract questions",
		},
		{
			name:       "unsupported document",
			err:        fmt.Errorf("%w: text/plain", extract.ErrUnsupportedDocument),
			wantStatus: http.StatusUnsupportedMediaType,
			wantText:   "Only PDF documents",
		},
		{
			name: "no template for type",
			questions: []quiz.Question{{Number: 1, Type: quiz.QuestionType("essay"), Prompt: "?", Choices: []quiz.Choice{
				{Text: "a", IsCorrect: true},
			}}},
			wantStatus: http.StatusUnprocessableEntity,
			wantText:   "Could not build games",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.ext.err = tt.err
			env.ext.questions = tt.questions

			resp := env.upload(t, "quiz.pdf", "application/pdf", []byte("%PDF-1.4"))
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Contains(t, string(body), tt.wantText)
			assert.False(t, env.ctrl.State().Active)
		})
	}
}

func TestUploadMissingFile(t *testing.T) {
	env := newTestEnv(t)
	resp := env.post(t, "/upload", url.Values{"x": {"y"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNavigation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ctrl.Create(context.Background(), sampleQuestions())
	require.NoError(t, err)

	resp := env.post(t, "/play/next", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 1, env.ctrl.State().Index)

	_, body := env.get(t, "/play")
	assert.Contains(t, body, "Question 2 of 2")
	assert.Contains(t, body, "Water boils")

	env.post(t, "/play/goto", url.Values{"index": {"-4"}})
	assert.Equal(t, 0, env.ctrl.State().Index)

	env.post(t, "/play/goto", url.Values{"index": {"99"}})
	assert.Equal(t, 1, env.ctrl.State().Index)

	env.post(t, "/play/prev", nil)
	assert.Equal(t, 0, env.ctrl.State().Index)
}

func TestExitReturnsToUploadAndKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ctrl.Create(context.Background(), sampleQuestions())
	require.NoError(t, err)

	resp := env.post(t, "/exit", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.Nil(t, env.ctrl.Bridge().Active())

	resp, _ = env.get(t, "/frame/frame-1")
	assert.Equal(t, http.StatusGone, resp.StatusCode)

	resp, _ = env.get(t, "/play")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "frame-2", env.ctrl.State().FrameID)
}

func TestWebSocketRelaysFeedback(t *testing.T) {
	env := newTestEnv(t)
	st, err := env.ctrl.Create(context.Background(), sampleQuestions())
	require.NoError(t, err)

	conn := env.dial(t, st.FrameID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"quiz-ready"}`)))
	phase := readOutbound(t, conn, msgPhase)
	assert.Equal(t, bridge.EngineWrapped.String(), phase.Phase)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"quiz-choice","choiceIndex":0,"isCorrect":true,"explanation":"Seat of government"}`)))

	fb := readOutbound(t, conn, msgFeedback)
	assert.Equal(t, st.FrameID, fb.FrameID)
	require.NotNil(t, fb.Feedback)
	assert.True(t, fb.Feedback.IsCorrect)

	_, body := env.get(t, "/play")
	assert.Contains(t, body, "Correct. Seat of government")

	_, body = env.get(t, "/api/session")
	var state play.State
	require.NoError(t, json.Unmarshal([]byte(body), &state))
	require.NotNil(t, state.Feedback)
	assert.Equal(t, "Seat of government", state.Feedback.Explanation)
}

func TestWebSocketClosedWhenFrameReplaced(t *testing.T) {
	env := newTestEnv(t)
	st, err := env.ctrl.Create(context.Background(), sampleQuestions())
	require.NoError(t, err)

	conn := env.dial(t, st.FrameID)
	env.post(t, "/play/next", nil)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var closeErr *websocket.CloseError
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			require.ErrorAs(t, err, &closeErr)
			break
		}
	}
	assert.Equal(t, CloseFrameReplaced, closeErr.Code)

	// Late messages from the old frame never reach the new one.
	assert.Nil(t, env.ctrl.State().Feedback)
}

func TestWebSocketRejectsUnknownFrame(t *testing.T) {
	env := newTestEnv(t)
	u := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws?frame=nope"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeedbackText(t *testing.T) {
	assert.Equal(t, "Correct.", FeedbackText(bridge.Feedback{IsCorrect: true}))
	assert.Equal(t, "Incorrect. Because.", FeedbackText(bridge.Feedback{Explanation: "Because."}))
}
