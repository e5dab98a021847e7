package api

import (
	"log/slog"
	"net/http"

	"github.com/oursapp/ours-api/internal/api/shared"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/service"
)

// InvitationHandler handles invitation lifecycle HTTP requests.
type InvitationHandler struct {
	invitations service.InvitationService
	logger      *slog.Logger
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitations service.InvitationService, log *slog.Logger) *InvitationHandler {
	if log == nil {
		log = slog.Default()
	}
	return &InvitationHandler{
		invitations: invitations,
		logger:      log.With("component", "invitation_handler"),
	}
}

// CreateInvitation handles POST /api/invitations requests.
func (h *InvitationHandler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateInvitationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	invitation, err := h.invitations.CreateInvitation(r.Context(), service.CreateInvitationInput{
		FromUserID:      userID,
		ToEmail:         req.ToEmail,
		PersonalMessage: req.PersonalMessage,
		Method:          domain.InvitationMethod(req.Method),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create invitation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, invitation)
}

// GetInvitation handles GET /api/invitations/{id} requests, applying
// lazy expiry before the status is reported.
func (h *InvitationHandler) GetInvitation(w http.ResponseWriter, r *http.Request) {
	_, invitationID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	invitation, err := h.invitations.GetInvitation(r.Context(), invitationID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load invitation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, invitation)
}

// MarkDelivered handles POST /api/invitations/{id}/deliver requests.
func (h *InvitationHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	_, invitationID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.invitations.MarkDelivered(r.Context(), invitationID); err != nil {
		HandleAPIError(w, r, err, "Failed to mark invitation delivered")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AcceptInvitation handles POST /api/invitations/{id}/accept requests.
func (h *InvitationHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID, invitationID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	invitation, err := h.invitations.GetInvitation(r.Context(), invitationID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load invitation")
		return
	}

	relationship, err := h.invitations.AcceptInvitation(r.Context(), invitation.ConnectionCode, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to accept invitation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, relationship)
}

// AcceptByCode handles POST /api/invitations/accept requests for users
// who only hold the connection code.
func (h *InvitationHandler) AcceptByCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req AcceptInvitationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	relationship, err := h.invitations.AcceptInvitation(r.Context(), req.ConnectionCode, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to accept invitation")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, relationship)
}

// DeclineInvitation handles POST /api/invitations/{id}/decline requests.
func (h *InvitationHandler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	userID, invitationID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	invitation, err := h.invitations.GetInvitation(r.Context(), invitationID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load invitation")
		return
	}

	if err := h.invitations.DeclineInvitation(r.Context(), invitation.ConnectionCode, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to decline invitation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
