package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/config"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/copilot"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/datasource"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/handler"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/kpi"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/llm"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// setupRoutes returns (router, source, error) so the source can be closed
// on shutdown.
func (s *Server) setupRoutes() (http.Handler, datasource.Source, error) {
	cfg := s.cfg
	ctx := context.Background()

	// ─── Data source ────────────────────────────────────────────────────────────
	src, err := openSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ─── KPI glossary ───────────────────────────────────────────────────────────
	kpis, err := kpi.Load(cfg.KPIPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.KPIPath).Msg("KPI glossary unreadable")
		kpis = kpi.NoDefinitions
	}

	// ─── LLM ────────────────────────────────────────────────────────────────────
	var gen llm.Generator
	if cfg.AnthropicAPIKey != "" {
		gen = llm.NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.Model, cfg.AnthropicBaseURL)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - /api/v1/ask will return 503")
	}

	log.Info().
		Str("data_source", src.Name()).
		Bool("llm_enabled", gen != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("kpi_glossary", kpis != kpi.NoDefinitions).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - all API requests will be rejected")
	}

	// ─── Orchestrator and handlers ──────────────────────────────────────────────
	sessions := copilot.NewSessionStore(cfg.HistoryTurns)

	var askH *handler.AskHandler
	var schemaH *handler.SchemaHandler
	if gen != nil {
		orch := copilot.New(gen, src, kpis)
		askH = handler.NewAskHandler(orch, sessions, src.Name())
		schemaH = handler.NewSchemaHandler(orch, src.Name(), kpis)
	}
	sessionsH := handler.NewSessionsHandler(sessions)
	healthH := handler.NewHealthHandler(src, gen != nil)

	// ─── Router ─────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			if askH != nil {
				r.Post("/ask", askH.Ask)
				r.Get("/schema", schemaH.Schema)
			} else {
				unavailable := func(w http.ResponseWriter, _ *http.Request) {
					http.Error(w, `{"status":"error","message":"LLM is not configured"}`, http.StatusServiceUnavailable)
				}
				r.Post("/ask", unavailable)
				r.Get("/schema", unavailable)
			}

			r.Post("/sessions", sessionsH.Create)
			r.Delete("/sessions/{session_id}", sessionsH.Delete)
		})
	})

	return r, src, nil
}

// openSource builds the configured data source, seeding the sample SQLite
// database first when requested.
func openSource(ctx context.Context, cfg *config.Config) (datasource.Source, error) {
	switch cfg.DataSource {
	case "sqlite", "":
		if cfg.SeedSample {
			if err := datasource.SeedSampleDB(ctx, cfg.SQLitePath); err != nil {
				return nil, fmt.Errorf("seed sample db: %w", err)
			}
		}
		return datasource.OpenSQLite(ctx, cfg.SQLitePath)
	case "csv":
		if cfg.CSVPath == "" {
			return nil, fmt.Errorf("data_source is csv but csv_path is empty")
		}
		return datasource.OpenCSV(ctx, cfg.CSVPath)
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("data_source is postgres but postgres_dsn is empty")
		}
		return datasource.OpenPostgres(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown data_source %q (want sqlite, csv, or postgres)", cfg.DataSource)
	}
}
