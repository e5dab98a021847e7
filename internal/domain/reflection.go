package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Reflection-specific validation errors
var (
	ErrReflectionIDEmpty       = errors.New("reflection ID cannot be empty")
	ErrReflectionUserIDEmpty   = errors.New("reflection user ID cannot be empty")
	ErrReflectionPromptEmpty   = errors.New("reflection prompt cannot be empty")
	ErrReflectionResponseEmpty = errors.New("reflection response cannot be empty")
	ErrSentimentOutOfRange     = errors.New("sentiment must be between -1 and 1")
)

// EmotionalReflection is a prompted journal entry: the user answers a
// reflection prompt and an externally supplied sentiment score accompanies
// the response. Reflections feed the journaling timeline but not the scoring
// window.
type EmotionalReflection struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Sentiment float64   `json:"sentiment"`
	IsShared  bool      `json:"is_shared"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEmotionalReflection creates a new EmotionalReflection.
// Returns an error if validation fails.
func NewEmotionalReflection(
	userID uuid.UUID,
	prompt, response string,
	sentiment float64,
	isShared bool,
) (*EmotionalReflection, error) {
	reflection := &EmotionalReflection{
		ID:        uuid.New(),
		UserID:    userID,
		Prompt:    prompt,
		Response:  response,
		Sentiment: sentiment,
		IsShared:  isShared,
		CreatedAt: time.Now().UTC(),
	}

	if err := reflection.Validate(); err != nil {
		return nil, err
	}

	return reflection, nil
}

// Validate checks if the EmotionalReflection has valid data.
// Returns an error if any field fails validation.
func (r *EmotionalReflection) Validate() error {
	if r.ID == uuid.Nil {
		return ErrReflectionIDEmpty
	}

	if r.UserID == uuid.Nil {
		return ErrReflectionUserIDEmpty
	}

	if r.Prompt == "" {
		return ErrReflectionPromptEmpty
	}

	if r.Response == "" {
		return ErrReflectionResponseEmpty
	}

	if r.Sentiment < -1 || r.Sentiment > 1 {
		return ErrSentimentOutOfRange
	}

	return nil
}
