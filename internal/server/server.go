package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/drawdash/server/internal/game"
)

// Server ties the HTTP surface to the game router.
type Server struct {
	port      int
	staticDir string
	router    *game.Router

	httpServer *http.Server
}

// New builds a server. archive may be nil when match recording is disabled.
func New(port int, staticDir string, archive game.Archive) *Server {
	s := &Server{
		port:      port,
		staticDir: staticDir,
		router:    game.NewRouter(game.DefaultWordEngine(), archive),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving traffic until the server shuts down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains HTTP and stops every room timer.
func (s *Server) Shutdown(ctx context.Context) error {
	s.router.Shutdown()
	return s.httpServer.Shutdown(ctx)
}
