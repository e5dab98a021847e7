package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RelationshipStatus represents the lifecycle state of a relationship.
type RelationshipStatus string

// Possible relationship status values
const (
	RelationshipStatusActive   RelationshipStatus = "active"
	RelationshipStatusInactive RelationshipStatus = "inactive"
	RelationshipStatusPending  RelationshipStatus = "pending"
)

// Relationship-specific validation errors
var (
	ErrRelationshipIDEmpty       = errors.New("relationship ID cannot be empty")
	ErrPartnerIDEmpty            = errors.New("partner IDs cannot be empty")
	ErrPartnersIdentical         = errors.New("partners must be two distinct users")
	ErrRelationshipKeyEmpty      = errors.New("relationship key cannot be empty")
	ErrInvalidRelationshipStatus = errors.New("invalid relationship status")
	ErrRelationshipNotActive     = errors.New("relationship is not active")
)

// Relationship is the durable record of a pairing between two users. It is
// jointly owned by both partners: either may read it, but shared fields only
// change through the invitation lifecycle or an explicit disconnect.
//
// ConnectionStrength, EmotionalHarmony and SharedMemoriesCount are cached
// copies of the most recent sync; the authoritative values are always the
// ones derived by the sync coordinator.
type Relationship struct {
	ID                  uuid.UUID          `json:"id"`
	Partner1ID          uuid.UUID          `json:"partner1_id"`
	Partner2ID          uuid.UUID          `json:"partner2_id"`
	Partner1Name        string             `json:"partner1_name"`
	Partner2Name        string             `json:"partner2_name"`
	Partner1Email       string             `json:"partner1_email"`
	Partner2Email       string             `json:"partner2_email"`
	Status              RelationshipStatus `json:"status"`
	CreatedAt           time.Time          `json:"created_at"`
	LastActive          time.Time          `json:"last_active"`
	ConnectionStrength  float64            `json:"connection_strength"`
	EmotionalHarmony    float64            `json:"emotional_harmony"`
	SharedMemoriesCount int                `json:"shared_memories_count"`
	RelationshipKey     string             `json:"-"` // Shared encryption key, never exposed in JSON
}

// NewRelationship creates an active Relationship between two distinct
// partners. The relationship key is supplied by the key-management
// collaborator; this package never generates or rotates keys.
// Returns an error if validation fails.
func NewRelationship(
	partner1ID, partner2ID uuid.UUID,
	partner1Name, partner2Name string,
	partner1Email, partner2Email string,
	relationshipKey string,
) (*Relationship, error) {
	now := time.Now().UTC()
	relationship := &Relationship{
		ID:              uuid.New(),
		Partner1ID:      partner1ID,
		Partner2ID:      partner2ID,
		Partner1Name:    partner1Name,
		Partner2Name:    partner2Name,
		Partner1Email:   partner1Email,
		Partner2Email:   partner2Email,
		Status:          RelationshipStatusActive,
		CreatedAt:       now,
		LastActive:      now,
		RelationshipKey: relationshipKey,
	}

	if err := relationship.Validate(); err != nil {
		return nil, err
	}

	return relationship, nil
}

// Validate checks if the Relationship has valid data.
// Returns an error if any field fails validation.
func (r *Relationship) Validate() error {
	if r.ID == uuid.Nil {
		return ErrRelationshipIDEmpty
	}

	if r.Partner1ID == uuid.Nil || r.Partner2ID == uuid.Nil {
		return ErrPartnerIDEmpty
	}

	if r.Partner1ID == r.Partner2ID {
		return ErrPartnersIdentical
	}

	if r.RelationshipKey == "" {
		return ErrRelationshipKeyEmpty
	}

	if !isValidRelationshipStatus(r.Status) {
		return ErrInvalidRelationshipStatus
	}

	return nil
}

// Deactivate marks the relationship inactive. This is the disconnect
// transition; the record itself is never physically deleted.
func (r *Relationship) Deactivate() {
	r.Status = RelationshipStatusInactive
}

// PartnerOf returns the other partner's ID, or uuid.Nil when the given user
// is not part of this relationship.
func (r *Relationship) PartnerOf(userID uuid.UUID) uuid.UUID {
	switch userID {
	case r.Partner1ID:
		return r.Partner2ID
	case r.Partner2ID:
		return r.Partner1ID
	default:
		return uuid.Nil
	}
}

// isValidRelationshipStatus checks if the given status is a valid RelationshipStatus.
func isValidRelationshipStatus(status RelationshipStatus) bool {
	switch status {
	case RelationshipStatusActive, RelationshipStatusInactive, RelationshipStatusPending:
		return true
	default:
		return false
	}
}
