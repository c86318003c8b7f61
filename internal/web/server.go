// Package web serves the upload and play views and hosts game documents in
// sandboxed iframes.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/abhisek/quizarcade/internal/archive"
	"github.com/abhisek/quizarcade/internal/extract"
	"github.com/abhisek/quizarcade/internal/play"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultMaxUpload caps uploaded documents.
const DefaultMaxUpload = 20 << 20

// Server is the HTTP surface.
type Server struct {
	ctrl      *play.Controller
	host      *Host
	extractor extract.Extractor
	archive   archive.Archive
	maxUpload int64
	upgrader  websocket.Upgrader
	engine    *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithArchive stores every upload before extraction.
func WithArchive(a archive.Archive) Option {
	return func(s *Server) { s.archive = a }
}

// WithMaxUpload overrides DefaultMaxUpload.
func WithMaxUpload(n int64) Option {
	return func(s *Server) { s.maxUpload = n }
}

// New builds the server. host must be the Host the controller's bridge
// mounts frames on.
func New(ctrl *play.Controller, host *Host, extractor extract.Extractor, opts ...Option) *Server {
	s := &Server{
		ctrl:      ctrl,
		host:      host,
		extractor: extractor,
		archive:   archive.Nop{},
		maxUpload: DefaultMaxUpload,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, o := range opts {
		o(s)
	}

	ctrl.Subscribe(host.BridgeEvent)
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
		"pct": func(f float64) int { return int(f * 100) },
	}).ParseFS(templateFS, "templates/*.html")))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", s.handleIndex)
	r.POST("/upload", s.handleUpload)
	r.GET("/play", s.handlePlay)
	r.POST("/play/prev", s.handlePrev)
	r.POST("/play/next", s.handleNext)
	r.POST("/play/goto", s.handleGoTo)
	r.POST("/exit", s.handleExit)
	r.GET("/frame/:id", s.handleFrame)
	r.GET("/ws", s.handleWebSocket)
	r.GET("/api/session", s.handleSessionState)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("web: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("web: stopped")
	return nil
}
