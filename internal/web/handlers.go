package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/abhisek/quizarcade/internal/bridge"
	"github.com/abhisek/quizarcade/internal/extract"
	"github.com/abhisek/quizarcade/internal/play"
	"github.com/abhisek/quizarcade/internal/session"
	"github.com/abhisek/quizarcade/internal/templates"
)

const noSessionNotice = "No active session. Upload a document to start."

// frameCSP keeps a served game document in an opaque origin even if it is
// opened outside the sandboxed iframe.
const frameCSP = "sandbox allow-scripts allow-pointer-lock"

type indexView struct {
	Notice string
	Error  string
}

func (s *Server) handleIndex(c *gin.Context) {
	v := indexView{}
	if c.Query("missing") != "" {
		v.Notice = noSessionNotice
	}
	c.HTML(http.StatusOK, "upload.html", v)
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+1<<20)

	fh, err := c.FormFile("pdf")
	if err != nil {
		c.HTML(http.StatusBadRequest, "upload.html", indexView{Error: "Choose a PDF to upload."})
		return
	}
	if fh.Size > s.maxUpload {
		c.HTML(http.StatusRequestEntityTooLarge, "upload.html", indexView{Error: "The document is too large."})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.HTML(http.StatusBadRequest, "upload.html", indexView{Error: "Could not read the upload."})
		return
	}
	data, err := io.ReadAll(io.LimitReader(f, s.maxUpload))
	f.Close()
	if err != nil {
		c.HTML(http.StatusBadRequest, "upload.html", indexView{Error: "Could not read the upload."})
		return
	}

	doc := extract.Document{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}
	ctx := c.Request.Context()

	if key, err := s.archive.Put(ctx, doc.Name, doc.ContentType, doc.Data); err != nil {
		log.Printf("web: archive upload %q: %v", doc.Name, err)
	} else if key != "" {
		log.Printf("web: archived upload as %s", key)
	}

	questions, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		status, msg := uploadError(err)
		log.Printf("web: extract %q: %v", doc.Name, err)
		c.HTML(status, "upload.html", indexView{Error: msg})
		return
	}

	if _, err := s.ctrl.Create(ctx, questions); err != nil {
		status, msg := uploadError(err)
		log.Printf("web: create session: %v", err)
		c.HTML(status, "upload.html", indexView{Error: msg})
		return
	}
	c.Redirect(http.StatusSeeOther, "/play")
}

func uploadError(err error) (int, string) {
	var nt *templates.NoTemplateError
	switch {
	case errors.As(err, &nt):
		return http.StatusUnprocessableEntity, "No game template supports " + string(nt.Type) + " questions."
	case errors.Is(err, extract.ErrUnsupportedDocument):
		return http.StatusUnsupportedMediaType, "Only PDF documents are supported."
	case errors.Is(err, extract.ErrExtractionFailed):
		return http.StatusBadGateway, "Could not extract questions from the document."
	case errors.Is(err, session.ErrAssemblyFailed):
		return http.StatusUnprocessableEntity, "Could not build games for the extracted questions."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

type playView struct {
	play.State
	Feedback string
	Correct  bool
}

func (s *Server) handlePlay(c *gin.Context) {
	st, err := s.ctrl.Mount(c.Request.Context())
	if err != nil {
		if play.IsNoSession(err) {
			c.Redirect(http.StatusSeeOther, "/?missing=1")
			return
		}
		log.Printf("web: mount: %v", err)
		c.String(http.StatusInternalServerError, "could not load the current game")
		return
	}
	c.HTML(http.StatusOK, "play.html", newPlayView(st))
}

func newPlayView(st play.State) playView {
	v := playView{State: st}
	if st.Feedback != nil {
		v.Correct = st.Feedback.IsCorrect
		v.Feedback = FeedbackText(*st.Feedback)
	}
	return v
}

// FeedbackText renders feedback the way the play view shows it.
func FeedbackText(fb bridge.Feedback) string {
	text := "Incorrect."
	if fb.IsCorrect {
		text = "Correct."
	}
	if fb.Explanation != "" {
		text += " " + fb.Explanation
	}
	return text
}

func (s *Server) handlePrev(c *gin.Context) {
	s.navigate(c, s.ctrl.Prev)
}

func (s *Server) handleNext(c *gin.Context) {
	s.navigate(c, s.ctrl.Next)
}

func (s *Server) handleGoTo(c *gin.Context) {
	n, err := strconv.Atoi(c.PostForm("index"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/play")
		return
	}
	s.navigate(c, func(ctx context.Context) (play.State, error) {
		return s.ctrl.GoTo(ctx, n-1)
	})
}

func (s *Server) navigate(c *gin.Context, move func(context.Context) (play.State, error)) {
	if _, err := move(c.Request.Context()); err != nil {
		if play.IsNoSession(err) {
			c.Redirect(http.StatusSeeOther, "/?missing=1")
			return
		}
		log.Printf("web: navigate: %v", err)
		c.String(http.StatusInternalServerError, "navigation failed")
		return
	}
	c.Redirect(http.StatusSeeOther, "/play")
}

func (s *Server) handleExit(c *gin.Context) {
	s.ctrl.Exit()
	c.Redirect(http.StatusSeeOther, "/")
}

// handleFrame serves the document of a mounted frame. Torn-down frames are
// gone for good.
func (s *Server) handleFrame(c *gin.Context) {
	f := s.ctrl.Bridge().Lookup(c.Param("id"))
	if f == nil {
		c.String(http.StatusGone, "frame is no longer active")
		return
	}
	c.Header("Content-Security-Policy", frameCSP)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(f.Code()))
}

func (s *Server) handleWebSocket(c *gin.Context) {
	f := s.ctrl.Bridge().Lookup(c.Query("frame"))
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "frame is not active"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("web: upgrade: %v", err)
		return
	}

	cl := newClient(s.host, s.ctrl.Bridge(), f, conn)
	if !s.host.attach(cl) {
		// Torn down between lookup and upgrade.
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseFrameReplaced, "frame replaced"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	// Bring a reconnecting page up to date.
	if b := s.ctrl.Bridge(); b.Active() == f {
		if phase := b.Phase(); phase != bridge.WaitingForEngine {
			cl.enqueue(mustJSON(outbound{Type: msgPhase, FrameID: f.ID(), Phase: phase.String()}))
		}
		if fb, ok := b.Feedback(); ok {
			cl.enqueue(mustJSON(outbound{Type: msgFeedback, FrameID: f.ID(), Feedback: &fb}))
		}
	}

	go cl.writePump()
	go cl.readPump()
}

func (s *Server) handleSessionState(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.State())
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
