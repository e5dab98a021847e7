package scoring

import (
	"math"
	"time"

	"github.com/oursapp/ours-api/internal/domain"
)

// NeutralMood is the avatar mood reported when a user has no memories.
const NeutralMood = domain.MoodPeace

// neutralEnergy is the midpoint of the rescaled [0,1] energy range.
const neutralEnergy = 0.5

// computeAvatarState derives a user's avatar from their memory sequence.
// The sequence must already be filtered to the user and sorted by CreatedAt
// ascending; an empty sequence is valid and yields the neutral avatar.
//
// Energy is the half-life-weighted average of (score+1)/2 over the trailing
// window: the most recent WindowLimit memories or those within WindowAge,
// whichever set is smaller. Weights decay by 2^(-age/EnergyHalfLife), so
// recent entries dominate. The function is pure and deterministic.
func computeAvatarState(memories []*domain.EmotionalMemory, now time.Time, params *Params) domain.AvatarState {
	if len(memories) == 0 {
		return domain.AvatarState{
			Mood:   NeutralMood,
			Energy: neutralEnergy,
		}
	}

	latest := memories[len(memories)-1]
	window := trailingWindow(memories, now, params)

	energy := neutralEnergy
	if len(window) > 0 {
		var weighted, total float64
		for _, m := range window {
			w := decayWeight(now.Sub(m.CreatedAt), params.EnergyHalfLife)
			weighted += w * rescale(m.EmotionalScore)
			total += w
		}
		energy = clamp01(weighted / total)
	}

	return domain.AvatarState{
		Mood:           latest.Mood,
		Energy:         energy,
		LastActive:     latest.CreatedAt,
		RecentMemories: len(window),
	}
}

// computePairScores derives the pairwise scores from two avatar states and
// the shared memory sequence (sorted by CreatedAt ascending).
//
// Harmony is 1 minus the energy gap. Strength saturates toward 1 with the
// shared count via 1-exp(-count/k), damped by a recency factor that halves
// every RecencyHalfLife without new shared activity. Both are clamped to
// [0,1].
func computePairScores(
	avatarA, avatarB domain.AvatarState,
	shared []*domain.EmotionalMemory,
	now time.Time,
	params *Params,
) (connectionStrength, emotionalHarmony float64) {
	emotionalHarmony = clamp01(1 - math.Abs(avatarA.Energy-avatarB.Energy))

	if len(shared) == 0 {
		return 0, emotionalHarmony
	}

	saturation := 1 - math.Exp(-float64(len(shared))/params.SaturationCount)

	lastShared := shared[len(shared)-1].CreatedAt
	recency := decayWeight(now.Sub(lastShared), params.RecencyHalfLife)

	connectionStrength = clamp01(saturation * recency)
	return connectionStrength, emotionalHarmony
}

// trailingWindow returns the suffix of memories inside both the age and the
// count cut, preserving order.
func trailingWindow(memories []*domain.EmotionalMemory, now time.Time, params *Params) []*domain.EmotionalMemory {
	oldest := now.Add(-params.WindowAge)

	start := len(memories)
	for start > 0 && !memories[start-1].CreatedAt.Before(oldest) {
		start--
	}

	if len(memories)-start > params.WindowLimit {
		start = len(memories) - params.WindowLimit
	}

	return memories[start:]
}

// decayWeight computes 2^(-age/halfLife). Ages at or below zero carry full
// weight so that clock skew between writer and reader never inflates a score.
func decayWeight(age, halfLife time.Duration) float64 {
	if age <= 0 {
		return 1
	}
	return math.Exp2(-float64(age) / float64(halfLife))
}

// rescale maps an emotional score from [-1,1] to [0,1].
func rescale(score float64) float64 {
	return (score + 1) / 2
}

// clamp01 bounds v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
