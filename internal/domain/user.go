package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EmotionalPreference captures how expressively a user wants the app to
// mirror their emotional state back to them.
type EmotionalPreference string

// Possible emotional preference values
const (
	PreferenceGentle     EmotionalPreference = "gentle"
	PreferenceBalanced   EmotionalPreference = "balanced"
	PreferenceExpressive EmotionalPreference = "expressive"
)

// User-specific validation errors
var (
	ErrUserIDEmpty       = errors.New("user ID cannot be empty")
	ErrUserEmailEmpty    = errors.New("user email cannot be empty")
	ErrUserEmailInvalid  = errors.New("invalid user email format")
	ErrInvalidPreference = errors.New("invalid emotional preference")
	ErrSelfPartner       = errors.New("user cannot be their own partner")
)

// UserProfile represents a registered user of the application. PartnerID and
// RelationshipID are set when an invitation is accepted and cleared on
// disconnect; both are absent for unpaired users.
type UserProfile struct {
	UID                 uuid.UUID           `json:"uid"`
	Email               string              `json:"email"`
	DisplayName         *string             `json:"display_name,omitempty"`
	EmotionalPreference EmotionalPreference `json:"emotional_preference"`
	PartnerID           *uuid.UUID          `json:"partner_id,omitempty"`
	RelationshipID      *uuid.UUID          `json:"relationship_id,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	LastLogin           time.Time           `json:"last_login"`
	EncryptionKey       *string             `json:"-"` // Per-user key material, never exposed in JSON
}

// NewUserProfile creates a new unpaired UserProfile with the balanced
// preference. Returns an error if validation fails.
func NewUserProfile(email string, displayName *string) (*UserProfile, error) {
	now := time.Now().UTC()
	user := &UserProfile{
		UID:                 uuid.New(),
		Email:               email,
		DisplayName:         displayName,
		EmotionalPreference: PreferenceBalanced,
		CreatedAt:           now,
		LastLogin:           now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the UserProfile has valid data.
// Returns an error if any field fails validation.
func (u *UserProfile) Validate() error {
	if u.UID == uuid.Nil {
		return ErrUserIDEmpty
	}

	if u.Email == "" {
		return ErrUserEmailEmpty
	}

	if !validEmailFormat(u.Email) {
		return ErrUserEmailInvalid
	}

	if !isValidPreference(u.EmotionalPreference) {
		return ErrInvalidPreference
	}

	if u.PartnerID != nil && *u.PartnerID == u.UID {
		return ErrSelfPartner
	}

	return nil
}

// LinkPartner records the pairing produced by an accepted invitation.
func (u *UserProfile) LinkPartner(partnerID, relationshipID uuid.UUID) error {
	if partnerID == u.UID {
		return ErrSelfPartner
	}
	u.PartnerID = &partnerID
	u.RelationshipID = &relationshipID
	return nil
}

// UnlinkPartner clears the pairing on disconnect.
func (u *UserProfile) UnlinkPartner() {
	u.PartnerID = nil
	u.RelationshipID = nil
}

// validEmailFormat performs basic validation of email format: a single @
// with a dotted domain after it. Ingestion-boundary checks only; delivery
// failures are the mailer's concern.
func validEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// isValidPreference checks if the given preference belongs to the closed set.
func isValidPreference(pref EmotionalPreference) bool {
	switch pref {
	case PreferenceGentle, PreferenceBalanced, PreferenceExpressive:
		return true
	default:
		return false
	}
}
