// Package scoring implements the pure scoring engine: per-user avatar
// derivation and pairwise connection scores. Every operation is a
// deterministic function of its inputs with no storage or network access,
// which keeps concurrent reads trivially reconcilable.
package scoring

import (
	"time"

	"github.com/oursapp/ours-api/internal/domain"
)

// Service defines the interface for scoring operations.
type Service interface {
	// ComputeAvatarState derives a user's avatar from their memory
	// sequence, which must be sorted by CreatedAt ascending. An empty
	// sequence yields the neutral avatar.
	ComputeAvatarState(memories []*domain.EmotionalMemory, now time.Time) domain.AvatarState

	// ComputePairScores derives (connectionStrength, emotionalHarmony)
	// from two avatars and the shared memory sequence, sorted ascending.
	// Both results are in [0,1].
	ComputePairScores(
		avatarA, avatarB domain.AvatarState,
		shared []*domain.EmotionalMemory,
		now time.Time,
	) (connectionStrength, emotionalHarmony float64)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a scoring service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a scoring service with custom parameters.
// Returns an error if the parameters are invalid.
func NewServiceWithParams(params *Params) (Service, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{params: params}, nil
}

// ComputeAvatarState implements the Service interface.
func (s *defaultService) ComputeAvatarState(
	memories []*domain.EmotionalMemory,
	now time.Time,
) domain.AvatarState {
	return computeAvatarState(memories, now, s.params)
}

// ComputePairScores implements the Service interface.
func (s *defaultService) ComputePairScores(
	avatarA, avatarB domain.AvatarState,
	shared []*domain.EmotionalMemory,
	now time.Time,
) (float64, float64) {
	return computePairScores(avatarA, avatarB, shared, now, s.params)
}
