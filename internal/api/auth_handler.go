package api

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oursapp/ours-api/internal/api/shared"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/service/auth"
	"github.com/oursapp/ours-api/internal/store"
)

// AuthHandler handles registration and login. Identity is email based;
// the upstream identity provider has already vouched for the caller by
// the time these endpoints are reached.
type AuthHandler struct {
	users      store.UserStore
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users store.UserStore, jwtService auth.JWTService, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		logger:     log.With("component", "auth_handler"),
	}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := domain.NewUserProfile(req.Email, req.DisplayName)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	encryptionKey, err := generateUserKey()
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}
	user.EncryptionKey = &encryptionKey

	if err := h.users.Create(r.Context(), user); err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.UID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate token")
		return
	}

	h.logger.Info("user registered", "user_id", user.UID)
	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		UserID: user.UID,
		Token:  token,
	})
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to log in")
		return
	}

	user.LastLogin = time.Now().UTC()
	if err := h.users.Update(r.Context(), user); err != nil {
		// Login still succeeds; the stamp is best effort.
		h.logger.Warn("failed to record last login", "error", err, "user_id", user.UID)
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.UID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID: user.UID,
		Token:  token,
	})
}

// generateUserKey returns fresh per-user key material.
func generateUserKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate user key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
