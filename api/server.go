// Package api exposes the admin HTTP surface: effective schedule reads,
// override listings, workload summaries and the decision journal.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apijournal "github.com/rotaops/rota/api/journal"
	apischedule "github.com/rotaops/rota/api/schedule"
	corejournal "github.com/rotaops/rota/core/journal"
	"github.com/rotaops/rota/infra/logger"
)

// Deps are the read surfaces the API serves. A nil Journal drops the
// journal route.
type Deps struct {
	Schedule  apischedule.View
	Overrides apischedule.OverrideReader
	Journal   corejournal.Store
}

// NewRouter assembles the admin API. A non-empty token guards the /api
// routes with a bearer check; /health stays open for probes.
func NewRouter(deps Deps, token string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Group(func(g chi.Router) {
		g.Use(bearerAuth(token))
		g.Method(http.MethodGet, "/api/schedule", apischedule.NewScheduleHandler(deps.Schedule))
		g.Method(http.MethodGet, "/api/overrides", apischedule.NewOverridesHandler(deps.Overrides))
		g.Method(http.MethodGet, "/api/summary", apischedule.NewSummaryHandler(deps.Schedule))
		if deps.Journal != nil {
			g.Method(http.MethodGet, "/api/journal", apijournal.NewLogHandler(deps.Journal))
		}
	})
	return r
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Start serves h on addr until the context is canceled.
func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.New("api-server").Errorf("shutdown: %v", err)
		}
		cancel()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
