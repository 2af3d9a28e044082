package match

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	matchModel "github.com/socialtwin/trainer/internal/model/match"
	"github.com/socialtwin/trainer/internal/service/ai"
	matchService "github.com/socialtwin/trainer/internal/service/match"
	"github.com/socialtwin/trainer/internal/store"
	"github.com/socialtwin/trainer/pkg/utils"
)

// replayInterval paces the SSE replay of stored simulation exchanges.
const replayInterval = 600 * time.Millisecond

// Handler serves the match, plan, and simulate endpoints plus session
// inspection and simulation replay.
type Handler struct {
	svc      *matchService.Service
	sessions matchModel.Store
}

// New creates the match handler.
func New(svc *matchService.Service, sessions matchModel.Store) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes registers the match routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/match", h.handleMatch)
	r.Post("/plan", h.handlePlan)
	r.Post("/sim", h.handleSim)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
	r.Get("/sim/stream/{sessionID}", h.handleSimStream)
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TwinAID string `json:"twin_a_id"`
		TwinBID string `json:"twin_b_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.TwinAID == "" || payload.TwinBID == "" {
		utils.RespondError(w, http.StatusBadRequest, "twin_a_id and twin_b_id are required")
		return
	}

	result, err := h.svc.Match(r.Context(), payload.TwinAID, payload.TwinBID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
		Goal      string `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	result, err := h.svc.Plan(r.Context(), payload.SessionID, payload.Goal)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSim(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"session_id"`
		Rounds    int    `json:"rounds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	result, err := h.svc.Simulate(r.Context(), payload.SessionID, payload.Rounds)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess)
}

// handleSimStream replays a stored simulation's exchanges over SSE so the
// frontend can animate the conversation turn by turn.
func (h *Handler) handleSimStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var simLog struct {
		Exchanges    []map[string]any `json:"exchanges"`
		OverallScore *float64         `json:"overall_score"`
		Summary      string           `json:"summary"`
	}
	if len(sess.SimLog) > 0 {
		// A raw-fallback sim log simply has no exchanges to replay.
		_ = json.Unmarshal(sess.SimLog, &simLog)
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "status", map[string]any{
		"session_id": sess.ID,
		"exchanges":  len(simLog.Exchanges),
	})

	ctx := r.Context()
	ticker := time.NewTicker(replayInterval)
	defer ticker.Stop()

	for _, exchange := range simLog.Exchanges {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			utils.SendSSEChunk(w, flusher, exchange)
		}
	}

	done := map[string]any{"summary": simLog.Summary}
	if simLog.OverallScore != nil {
		done["overall_score"] = *simLog.OverallScore
	}
	utils.SendSSEEvent(w, flusher, "done", done)
}

// respondServiceError maps service failures onto the HTTP error contract:
// missing records are client errors, a missing credential is 503, and a
// model failure surviving retries is a gateway error.
func respondServiceError(w http.ResponseWriter, err error) {
	var modelErr *ai.ModelError
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "twin or session not found")
	case errors.Is(err, ai.ErrNoCredential):
		utils.RespondError(w, http.StatusServiceUnavailable, "model credential not configured")
	case errors.As(err, &modelErr):
		utils.RespondError(w, http.StatusBadGateway, modelErr.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
