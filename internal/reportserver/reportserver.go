// Package reportserver exposes processed runs over a small HTTP API backed
// by the SQLite results database.
package reportserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/sakhalinlab/waveproc/internal/log"
	"github.com/sakhalinlab/waveproc/internal/storage/sqlite"
	"github.com/sakhalinlab/waveproc/internal/types"
)

// Server represents the report API server
type Server struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	Server   http.Server
	handlers *Handlers
}

// New creates a report server reading from the given results database.
func New(ctx context.Context, wg *sync.WaitGroup, rc types.ReportConfig, db *sqlite.Client) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("report server requires the SQLite storage backend")
	}

	s := &Server{
		ctx: ctx,
		wg:  wg,
	}
	s.handlers = NewHandlers(db)

	listenAddr := rc.ListenAddr
	if listenAddr == "" {
		log.Info("report.listen_addr not provided; defaulting to 127.0.0.1")
		listenAddr = "127.0.0.1"
	}

	s.Server.Addr = fmt.Sprintf("%v:%v", listenAddr, rc.Port)
	s.Server.Handler = s.setupRouter()

	return s, nil
}

// Start starts the report server and shuts it down on context cancellation.
func (s *Server) Start() error {
	log.Info("starting report server on", s.Server.Addr)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		if err := s.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("report server error: %v", err)
		}
	}()

	go func() {
		<-s.ctx.Done()
		log.Info("shutting down the report server...")
		s.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (s *Server) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handlers.GetHealth)
	router.HandleFunc("/runs", s.handlers.GetRuns)
	router.HandleFunc("/runs/{id}", s.handlers.GetRun)
	router.HandleFunc("/runs/{id}/stats", s.handlers.GetRunStats)

	return router
}
