package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
)

// Request and response structures shared by the HTTP handlers. Domain
// types with safe JSON tags are returned directly; DTOs exist where the
// wire shape diverges from the domain shape.

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email       string  `json:"email"        validate:"required,email"`
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=100"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`

	// Token is the JWT bearer token for subsequent API calls.
	Token string `json:"token"`
}

// CreateMemoryRequest defines the payload for recording a memory.
type CreateMemoryRequest struct {
	Caption        string  `json:"caption"         validate:"required,min=1"`
	ImageURL       *string `json:"image_url"       validate:"omitempty,url"`
	Mood           string  `json:"mood"            validate:"required"`
	Category       string  `json:"category"        validate:"required"`
	EmotionalScore float64 `json:"emotional_score" validate:"gte=-1,lte=1"`
	IsShared       bool    `json:"is_shared"`
}

// SetSharedRequest defines the payload for the shared-flag toggle.
type SetSharedRequest struct {
	IsShared *bool `json:"is_shared" validate:"required"`
}

// MemoryResponse represents a decrypted memory on the wire.
type MemoryResponse struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	PartnerID      uuid.UUID `json:"partner_id"`
	RelationshipID uuid.UUID `json:"relationship_id"`
	Caption        string    `json:"caption"`
	ImageURL       *string   `json:"image_url,omitempty"`
	Mood           string    `json:"mood"`
	Category       string    `json:"category"`
	EmotionalScore float64   `json:"emotional_score"`
	IsShared       bool      `json:"is_shared"`
	CreatedAt      time.Time `json:"created_at"`
}

func memoryToResponse(memory *domain.EmotionalMemory) MemoryResponse {
	return MemoryResponse{
		ID:             memory.ID,
		UserID:         memory.UserID,
		PartnerID:      memory.PartnerID,
		RelationshipID: memory.RelationshipID,
		Caption:        memory.Caption,
		ImageURL:       memory.ImageURL,
		Mood:           string(memory.Mood),
		Category:       string(memory.Category),
		EmotionalScore: memory.EmotionalScore,
		IsShared:       memory.IsShared,
		CreatedAt:      memory.CreatedAt,
	}
}

// CreateInvitationRequest defines the payload for creating an invitation.
type CreateInvitationRequest struct {
	ToEmail         *string `json:"to_email"         validate:"omitempty,email"`
	PersonalMessage string  `json:"personal_message" validate:"max=500"`
	Method          string  `json:"method"           validate:"required,oneof=email code"`
}

// AcceptInvitationRequest defines the payload for accepting by code.
type AcceptInvitationRequest struct {
	ConnectionCode string `json:"connection_code" validate:"required,len=8"`
}

// CreateReflectionRequest defines the payload for a journaled reflection.
type CreateReflectionRequest struct {
	Prompt    string  `json:"prompt"    validate:"required,min=1"`
	Response  string  `json:"response"  validate:"required,min=1"`
	Sentiment float64 `json:"sentiment" validate:"gte=-1,lte=1"`
	IsShared  bool    `json:"is_shared"`
}
