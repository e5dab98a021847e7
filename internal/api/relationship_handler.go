package api

import (
	"log/slog"
	"net/http"

	"github.com/oursapp/ours-api/internal/api/shared"
	"github.com/oursapp/ours-api/internal/service"
)

// RelationshipHandler handles relationship lifecycle HTTP requests.
type RelationshipHandler struct {
	relationships service.RelationshipService
	logger        *slog.Logger
}

// NewRelationshipHandler creates a new RelationshipHandler.
func NewRelationshipHandler(relationships service.RelationshipService, log *slog.Logger) *RelationshipHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RelationshipHandler{
		relationships: relationships,
		logger:        log.With("component", "relationship_handler"),
	}
}

// GetRelationship handles GET /api/relationships/{id} requests.
func (h *RelationshipHandler) GetRelationship(w http.ResponseWriter, r *http.Request) {
	userID, relationshipID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	relationship, err := h.relationships.GetRelationship(r.Context(), relationshipID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load relationship")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, relationship)
}

// GetActiveRelationship handles GET /api/relationships/active requests.
func (h *RelationshipHandler) GetActiveRelationship(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	relationship, err := h.relationships.GetActiveRelationship(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load active relationship")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, relationship)
}

// Disconnect handles POST /api/relationships/{id}/disconnect requests.
func (h *RelationshipHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID, relationshipID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.relationships.Disconnect(r.Context(), relationshipID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to disconnect relationship")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
