package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	matchHandler "github.com/socialtwin/trainer/internal/handler/match"
	twinHandler "github.com/socialtwin/trainer/internal/handler/twin"
	middlewarePkg "github.com/socialtwin/trainer/internal/middleware"
	matchModel "github.com/socialtwin/trainer/internal/model/match"
	twinModel "github.com/socialtwin/trainer/internal/model/twin"
	matchService "github.com/socialtwin/trainer/internal/service/match"
	"github.com/socialtwin/trainer/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(twins twinModel.Store, sessions matchModel.Store, matchSvc *matchService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	twinHandler.New(twins).RegisterRoutes(r)
	matchHandler.New(matchSvc, sessions).RegisterRoutes(r)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"ts":     time.Now().UTC().Format(time.RFC3339),
		})
	})

	return r
}
