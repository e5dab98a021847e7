package domain

import "time"

// AvatarState is a user's derived emotional snapshot over a trailing window
// of memories. It is recomputed on each query by the scoring engine and is
// never persisted on its own.
type AvatarState struct {
	Mood           Mood      `json:"mood"`
	Energy         float64   `json:"energy"` // 0-1
	LastActive     time.Time `json:"last_active"`
	RecentMemories int       `json:"recent_memories"`
}

// SETState is the synchronized emotional-state snapshot of a relationship,
// combining both partners' avatar states. Each sync produces a new immutable
// value; a SETState is never mutated in place.
type SETState struct {
	UserAvatar         AvatarState `json:"user_avatar"`
	PartnerAvatar      AvatarState `json:"partner_avatar"`
	ConnectionStrength float64     `json:"connection_strength"` // 0-1
	EmotionalHarmony   float64     `json:"emotional_harmony"`   // 0-1
	LastSync           time.Time   `json:"last_sync"`
	ColorAura          string      `json:"color_aura"`
}
