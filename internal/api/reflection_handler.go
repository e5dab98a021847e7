package api

import (
	"log/slog"
	"net/http"

	"github.com/oursapp/ours-api/internal/api/shared"
	"github.com/oursapp/ours-api/internal/service"
)

// ReflectionHandler handles journaled reflection HTTP requests.
type ReflectionHandler struct {
	reflections service.ReflectionService
	logger      *slog.Logger
}

// NewReflectionHandler creates a new ReflectionHandler.
func NewReflectionHandler(reflections service.ReflectionService, log *slog.Logger) *ReflectionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ReflectionHandler{
		reflections: reflections,
		logger:      log.With("component", "reflection_handler"),
	}
}

// CreateReflection handles POST /api/reflections requests.
func (h *ReflectionHandler) CreateReflection(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateReflectionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	reflection, err := h.reflections.AddReflection(
		r.Context(), userID, req.Prompt, req.Response, req.Sentiment, req.IsShared)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create reflection")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, reflection)
}

// GetReflections handles GET /api/reflections requests.
func (h *ReflectionHandler) GetReflections(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	reflections, err := h.reflections.GetReflections(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load reflections")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, reflections)
}
