package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/oursapp/ours-api/internal/api/shared"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/service"
	"github.com/oursapp/ours-api/internal/service/auth"
	"github.com/oursapp/ours-api/internal/service/vault"
	"github.com/oursapp/ours-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return http.StatusUnauthorized

	// Authorization errors. A failed decrypt means the caller's key does
	// not fit the payload, which is an access problem, not a 500.
	case errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrNotOwned),
		errors.Is(err, vault.ErrCrypto):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrMemoryNotFound),
		errors.Is(err, service.ErrRelationshipNotFound),
		errors.Is(err, service.ErrInvitationNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Gone: the invitation can never be acted on again.
	case errors.Is(err, domain.ErrInvitationExpired):
		return http.StatusGone

	// Conflict errors
	case errors.Is(err, service.ErrClockRegression),
		errors.Is(err, service.ErrAlreadyPaired),
		errors.Is(err, service.ErrSelfAccept),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrRelationshipNotActive),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidMood),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrScoreOutOfRange),
		errors.Is(err, domain.ErrSentimentOutOfRange),
		errors.Is(err, domain.ErrInvitationEmailMissing),
		errors.Is(err, domain.ErrInvalidInvitationMethod):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// given error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, service.ErrNotParticipant):
		return "You are not a participant in this relationship"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not have access to this memory"

	case errors.Is(err, vault.ErrCrypto):
		return "Memory could not be decrypted"

	case errors.Is(err, service.ErrMemoryNotFound):
		return "Memory not found"

	case errors.Is(err, service.ErrRelationshipNotFound):
		return "Relationship not found"

	case errors.Is(err, service.ErrInvitationNotFound):
		return "Invitation not found"

	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, domain.ErrInvitationExpired):
		return "Invitation has expired"

	case errors.Is(err, service.ErrClockRegression):
		return "Sync timestamp is older than the last sync"

	case errors.Is(err, service.ErrAlreadyPaired):
		return "You already have an active relationship"

	case errors.Is(err, service.ErrSelfAccept):
		return "You cannot accept your own invitation"

	case errors.Is(err, domain.ErrInvalidTransition):
		return "Invitation cannot be changed in its current state"

	case errors.Is(err, domain.ErrRelationshipNotActive):
		return "Relationship is not active"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrDuplicateCode):
		return "Connection code already in use"

	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidMood),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrScoreOutOfRange),
		errors.Is(err, domain.ErrSentimentOutOfRange),
		errors.Is(err, domain.ErrInvitationEmailMissing),
		errors.Is(err, domain.ErrInvalidInvitationMethod):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status code and safe message, then
// writes the response. A non-empty defaultMsg overrides the mapped
// message for errors that map to 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError converts a validator error into a terse,
// user-friendly message without echoing submitted values.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'CreateMemoryRequest.Mood' Error:Field validation
		// for 'Mood' failed on the 'oneof' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte", "lte":
		return "out of range"
	default:
		return "validation failed"
	}
}
