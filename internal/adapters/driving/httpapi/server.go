package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/custodia-labs/paddock/internal/core/ports/driving"
)

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("httpapi: chat service is required")

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Server serves the chat API.
type Server struct {
	chat   driving.ChatService
	log    *zap.Logger
	engine *gin.Engine
}

// NewServer builds the router.
func NewServer(chat driving.ChatService, log *zap.Logger) (*Server, error) {
	if chat == nil {
		return nil, ErrMissingChatService
	}
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(cors())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	s := &Server{chat: chat, log: log, engine: r}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/", s.health)
	s.engine.POST("/chat/", s.postChat)
	s.engine.POST("/chats", s.createChat)
	s.engine.GET("/chats", s.listChats)
	s.engine.GET("/chats/:id/messages", s.listMessages)
	s.engine.POST("/messages", s.postMessage)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.log.Info("http server stopped")
		return nil
	}
}
