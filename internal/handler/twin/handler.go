package twin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socialtwin/trainer/internal/model/twin"
	"github.com/socialtwin/trainer/pkg/utils"
)

// Handler serves twin profile CRUD.
type Handler struct {
	twins twin.Store
}

// New creates the twin handler.
func New(twins twin.Store) *Handler {
	return &Handler{twins: twins}
}

// RegisterRoutes registers the twin routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/twins", h.handleList)
	r.Post("/twins", h.handleCreate)
	r.Delete("/twins/{twinID}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	twins, err := h.twins.List(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list twins")
		return
	}
	utils.RespondJSON(w, http.StatusOK, twins)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload twin.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !payload.Valid() {
		utils.RespondError(w, http.StatusBadRequest, "name, personality, interests and communication_style are required")
		return
	}

	created, err := h.twins.Create(r.Context(), payload)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create twin")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"id":   created.ID,
		"name": created.Name,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	twinID := chi.URLParam(r, "twinID")
	if err := h.twins.Delete(r.Context(), twinID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete twin")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"deleted": twinID})
}
