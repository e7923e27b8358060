package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/config"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/datasource"
	"github.com/rs/zerolog/log"
)

type Server struct {
	cfg  *config.Config
	http *http.Server
	src  datasource.Source // held for graceful close
}

func New(cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	router, src, err := s.setupRoutes()
	if err != nil {
		return nil, fmt.Errorf("setup routes: %w", err)
	}
	s.src = src

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.http.Shutdown(shutdownCtx)

		if s.src != nil {
			if closeErr := s.src.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("error closing data source")
			} else {
				log.Info().Str("source", s.src.Name()).Msg("data source closed")
			}
		}

		return err
	case err := <-errCh:
		return err
	}
}
