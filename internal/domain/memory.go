package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Mood represents one of the closed set of emotional moods a memory can carry.
type Mood string

// Possible mood values
const (
	MoodJoy        Mood = "joy"
	MoodGratitude  Mood = "gratitude"
	MoodLove       Mood = "love"
	MoodPeace      Mood = "peace"
	MoodSadness    Mood = "sadness"
	MoodTension    Mood = "tension"
	MoodConfusion  Mood = "confusion"
	MoodExcitement Mood = "excitement"
)

// Moods lists every valid mood. The scoring aura table iterates over this
// set, so the order is fixed.
var Moods = []Mood{
	MoodJoy, MoodGratitude, MoodLove, MoodPeace,
	MoodSadness, MoodTension, MoodConfusion, MoodExcitement,
}

// MemoryCategory classifies what kind of moment a memory records.
type MemoryCategory string

// Possible memory category values
const (
	CategoryGratitude MemoryCategory = "gratitude"
	CategoryFirst     MemoryCategory = "first"
	CategoryEveryday  MemoryCategory = "everyday"
	CategoryChallenge MemoryCategory = "challenge"
	CategoryGrowth    MemoryCategory = "growth"
)

// Memory-specific validation errors
var (
	ErrMemoryIDEmpty             = errors.New("memory ID cannot be empty")
	ErrMemoryUserIDEmpty         = errors.New("memory user ID cannot be empty")
	ErrMemoryPartnerIDEmpty      = errors.New("memory partner ID cannot be empty")
	ErrMemoryRelationshipIDEmpty = errors.New("memory relationship ID cannot be empty")
	ErrInvalidMood               = errors.New("invalid mood")
	ErrInvalidCategory           = errors.New("invalid memory category")
	ErrScoreOutOfRange           = errors.New("emotional score must be between -1 and 1")
	ErrCiphertextMissing         = errors.New("encrypted memory must carry encrypted data")
	ErrPlaintextLeaked           = errors.New("encrypted memory must not carry plaintext caption or image URL")
	ErrUnexpectedCiphertext      = errors.New("unencrypted memory must not carry encrypted data")
)

// EmotionalMemory is a single journaled emotional event authored by one user.
// It is immutable after creation except for the IsShared flag.
//
// The encryption invariant is enforced by Validate: when Encrypted is true,
// EncryptedData must be present and Caption/ImageURL must be empty; when
// Encrypted is false, EncryptedData must be absent.
type EmotionalMemory struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	PartnerID      uuid.UUID      `json:"partner_id"`
	RelationshipID uuid.UUID      `json:"relationship_id"`
	ImageURL       *string        `json:"image_url,omitempty"`
	Caption        string         `json:"caption"`
	Mood           Mood           `json:"mood"`
	Category       MemoryCategory `json:"category"`
	CreatedAt      time.Time      `json:"created_at"`
	EmotionalScore float64        `json:"emotional_score"`
	Encrypted      bool           `json:"encrypted"`
	EncryptedData  *string        `json:"encrypted_data,omitempty"`
	IsShared       bool           `json:"is_shared"`
}

// NewEmotionalMemory creates a new plaintext EmotionalMemory. It generates a
// new UUID for the memory ID and stamps the creation time. The emotional
// score is an externally supplied sentiment value in [-1, 1].
// Returns an error if validation fails.
func NewEmotionalMemory(
	userID, partnerID, relationshipID uuid.UUID,
	caption string,
	imageURL *string,
	mood Mood,
	category MemoryCategory,
	emotionalScore float64,
	isShared bool,
) (*EmotionalMemory, error) {
	memory := &EmotionalMemory{
		ID:             uuid.New(),
		UserID:         userID,
		PartnerID:      partnerID,
		RelationshipID: relationshipID,
		ImageURL:       imageURL,
		Caption:        caption,
		Mood:           mood,
		Category:       category,
		CreatedAt:      time.Now().UTC(),
		EmotionalScore: emotionalScore,
		IsShared:       isShared,
	}

	if err := memory.Validate(); err != nil {
		return nil, err
	}

	return memory, nil
}

// Validate checks if the EmotionalMemory has valid data, including the
// encryption invariant. Returns an error if any field fails validation.
func (m *EmotionalMemory) Validate() error {
	if m.ID == uuid.Nil {
		return ErrMemoryIDEmpty
	}

	if m.UserID == uuid.Nil {
		return ErrMemoryUserIDEmpty
	}

	if m.PartnerID == uuid.Nil {
		return ErrMemoryPartnerIDEmpty
	}

	if m.RelationshipID == uuid.Nil {
		return ErrMemoryRelationshipIDEmpty
	}

	if !IsValidMood(m.Mood) {
		return ErrInvalidMood
	}

	if !isValidCategory(m.Category) {
		return ErrInvalidCategory
	}

	if m.EmotionalScore < -1 || m.EmotionalScore > 1 {
		return ErrScoreOutOfRange
	}

	if m.Encrypted {
		if m.EncryptedData == nil || *m.EncryptedData == "" {
			return ErrCiphertextMissing
		}
		if m.Caption != "" || m.ImageURL != nil {
			return ErrPlaintextLeaked
		}
	} else if m.EncryptedData != nil {
		return ErrUnexpectedCiphertext
	}

	return nil
}

// SetShared toggles the IsShared flag, the only field that may change after
// creation.
func (m *EmotionalMemory) SetShared(shared bool) {
	m.IsShared = shared
}

// IsValidMood checks if the given mood belongs to the closed mood set.
// Values outside the set are rejected at the data-ingestion boundary.
func IsValidMood(mood Mood) bool {
	switch mood {
	case MoodJoy, MoodGratitude, MoodLove, MoodPeace,
		MoodSadness, MoodTension, MoodConfusion, MoodExcitement:
		return true
	default:
		return false
	}
}

// isValidCategory checks if the given category belongs to the closed category set.
func isValidCategory(category MemoryCategory) bool {
	switch category {
	case CategoryGratitude, CategoryFirst, CategoryEveryday,
		CategoryChallenge, CategoryGrowth:
		return true
	default:
		return false
	}
}
