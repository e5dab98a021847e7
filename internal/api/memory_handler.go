package api

import (
	"log/slog"
	"net/http"

	"github.com/oursapp/ours-api/internal/api/shared"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/service"
)

// MemoryHandler handles memory-related HTTP requests.
type MemoryHandler struct {
	memories      service.MemoryService
	relationships service.RelationshipService
	logger        *slog.Logger
}

// NewMemoryHandler creates a new MemoryHandler.
func NewMemoryHandler(
	memories service.MemoryService,
	relationships service.RelationshipService,
	log *slog.Logger,
) *MemoryHandler {
	if log == nil {
		log = slog.Default()
	}
	return &MemoryHandler{
		memories:      memories,
		relationships: relationships,
		logger:        log.With("component", "memory_handler"),
	}
}

// CreateMemory handles POST /api/memories requests.
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateMemoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	memory, err := h.memories.RecordMemory(r.Context(), service.RecordMemoryInput{
		UserID:         userID,
		Caption:        req.Caption,
		ImageURL:       req.ImageURL,
		Mood:           domain.Mood(req.Mood),
		Category:       domain.MemoryCategory(req.Category),
		EmotionalScore: req.EmotionalScore,
		IsShared:       req.IsShared,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record memory")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, memoryToResponse(memory))
}

// GetTimeline handles GET /api/relationships/{id}/memories requests.
// The path relationship is checked for participation before the
// timeline of the caller's active relationship is served.
func (h *MemoryHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	userID, relationshipID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if _, err := h.relationships.GetRelationship(r.Context(), relationshipID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to load relationship")
		return
	}

	timeline, err := h.memories.GetTimeline(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load timeline")
		return
	}

	responses := make([]MemoryResponse, 0, len(timeline))
	for _, memory := range timeline {
		if memory.RelationshipID != relationshipID {
			continue
		}
		responses = append(responses, memoryToResponse(memory))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// RevealMemory handles POST /api/memories/{id}/reveal requests.
func (h *MemoryHandler) RevealMemory(w http.ResponseWriter, r *http.Request) {
	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	memory, err := h.memories.RevealMemory(r.Context(), memoryID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reveal memory")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, memoryToResponse(memory))
}

// SetShared handles PATCH /api/memories/{id}/shared requests.
func (h *MemoryHandler) SetShared(w http.ResponseWriter, r *http.Request) {
	userID, memoryID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req SetSharedRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.memories.SetShared(r.Context(), memoryID, userID, *req.IsShared); err != nil {
		HandleAPIError(w, r, err, "Failed to update memory")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
