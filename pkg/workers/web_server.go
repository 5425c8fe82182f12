package workers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

type webServer struct {
	server *http.Server
}

func NewWebServer(addr string, handler http.Handler) (*webServer, error) {
	return &webServer{
		server: &http.Server{
			Addr:        addr,
			Handler:     handler,
			ReadTimeout: 15 * time.Second,
			// Responses stream token by token; give them room.
			WriteTimeout: 300 * time.Second,
		},
	}, nil
}

func (s *webServer) Name() string { return "web_server" }

func (s *webServer) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", s.Name(), "addr", s.server.Addr)
	defer slog.Info("Worker stopped", "name", s.Name())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
