package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/oursapp/ours-api/internal/api/shared"
	"github.com/oursapp/ours-api/internal/service"
)

// StateHandler serves the synchronized emotional state of a relationship.
type StateHandler struct {
	sync   service.SyncService
	logger *slog.Logger

	// now is injectable for tests; defaults to UTC wall clock.
	now func() time.Time
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(sync service.SyncService, log *slog.Logger) *StateHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StateHandler{
		sync:   sync,
		logger: log.With("component", "state_handler"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetState handles GET /api/relationships/{id}/state requests. The sync
// timestamp is the server clock; client clocks are never trusted.
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	userID, relationshipID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	state, err := h.sync.SyncRelationshipState(r.Context(), relationshipID, userID, h.now())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to sync relationship state")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, state)
}
