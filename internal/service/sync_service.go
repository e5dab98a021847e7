package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/domain/scoring"
	"github.com/oursapp/ours-api/internal/events"
	"github.com/oursapp/ours-api/internal/store"
)

// SyncService derives the synchronized emotional state of a relationship.
// Syncs for the same relationship are serialized; syncs for different
// relationships run concurrently.
type SyncService interface {
	// SyncRelationshipState computes (or returns the cached) SETState of
	// the relationship as seen by the requesting user, with UserAvatar
	// oriented to them. A now earlier than the last recorded sync for the
	// relationship fails with ErrClockRegression.
	SyncRelationshipState(
		ctx context.Context,
		relationshipID, userID uuid.UUID,
		now time.Time,
	) (*domain.SETState, error)
}

// pairSnapshot is an immutable sync result in canonical partner order.
// Viewer orientation is applied when the snapshot is served.
type pairSnapshot struct {
	partner1Avatar     domain.AvatarState
	partner2Avatar     domain.AvatarState
	connectionStrength float64
	emotionalHarmony   float64
	colorAura          string
	syncedAt           time.Time
}

// syncSession serializes syncs for one relationship and holds its cache.
type syncSession struct {
	mu       sync.Mutex
	lastSync time.Time
	cached   *pairSnapshot
}

// SyncCoordinator implements the SyncService interface. It also implements
// events.Handler to invalidate its cache when a memory is recorded.
type SyncCoordinator struct {
	relationships store.RelationshipStore
	memories      store.MemoryStore
	scorer        scoring.Service
	logger        *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*syncSession
}

// NewSyncService creates a new SyncService.
// It returns an error if any of the required dependencies are nil.
func NewSyncService(
	relationships store.RelationshipStore,
	memories store.MemoryStore,
	scorer scoring.Service,
	logger *slog.Logger,
) (*SyncCoordinator, error) {
	if relationships == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "relationships cannot be nil"}
	}
	if memories == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "memories cannot be nil"}
	}
	if scorer == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "scorer cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SyncCoordinator{
		relationships: relationships,
		memories:      memories,
		scorer:        scorer,
		logger:        logger.With(slog.String("component", "sync_service")),
		sessions:      make(map[uuid.UUID]*syncSession),
	}, nil
}

// Ensure SyncCoordinator implements SyncService and events.Handler
var (
	_ SyncService    = (*SyncCoordinator)(nil)
	_ events.Handler = (*SyncCoordinator)(nil)
)

// session returns the sync session for a relationship, creating it on first
// use.
func (s *SyncCoordinator) session(relationshipID uuid.UUID) *syncSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[relationshipID]
	if !ok {
		sess = &syncSession{}
		s.sessions[relationshipID] = sess
	}
	return sess
}

// SyncRelationshipState implements SyncService.SyncRelationshipState
func (s *SyncCoordinator) SyncRelationshipState(
	ctx context.Context,
	relationshipID, userID uuid.UUID,
	now time.Time,
) (*domain.SETState, error) {
	sess := s.session(relationshipID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if now.Before(sess.lastSync) {
		s.logger.Warn("sync time regression rejected",
			slog.String("relationship_id", relationshipID.String()),
			slog.Time("now", now),
			slog.Time("last_sync", sess.lastSync))
		return nil, ErrClockRegression
	}

	relationship, err := s.relationships.GetByID(ctx, relationshipID)
	if err != nil {
		return nil, NewServiceError("sync_state", "failed to retrieve relationship", err)
	}
	if relationship.PartnerOf(userID) == uuid.Nil {
		return nil, ErrNotParticipant
	}
	if relationship.Status != domain.RelationshipStatusActive {
		return nil, domain.ErrRelationshipNotActive
	}

	if sess.cached == nil {
		snapshot, err := s.computeSnapshot(ctx, relationship, now)
		if err != nil {
			return nil, err
		}
		sess.cached = snapshot
	}
	sess.lastSync = now

	return orientSnapshot(sess.cached, relationship, userID), nil
}

// computeSnapshot derives a fresh pair snapshot and writes the cached score
// columns back to the relationship row.
func (s *SyncCoordinator) computeSnapshot(
	ctx context.Context,
	relationship *domain.Relationship,
	now time.Time,
) (*pairSnapshot, error) {
	memories, err := s.memories.ReadByRelationship(ctx, relationship.ID)
	if err != nil {
		return nil, NewServiceError("sync_state", "failed to read memories", err)
	}

	var partner1, partner2, shared []*domain.EmotionalMemory
	for _, memory := range memories {
		switch memory.UserID {
		case relationship.Partner1ID:
			partner1 = append(partner1, memory)
		case relationship.Partner2ID:
			partner2 = append(partner2, memory)
		}
		if memory.IsShared {
			shared = append(shared, memory)
		}
	}

	avatar1 := s.scorer.ComputeAvatarState(partner1, now)
	avatar2 := s.scorer.ComputeAvatarState(partner2, now)
	strength, harmony := s.scorer.ComputePairScores(avatar1, avatar2, shared, now)

	snapshot := &pairSnapshot{
		partner1Avatar:     avatar1,
		partner2Avatar:     avatar2,
		connectionStrength: strength,
		emotionalHarmony:   harmony,
		colorAura:          scoring.AuraFor(avatar1.Mood, avatar2.Mood),
		syncedAt:           now,
	}

	relationship.ConnectionStrength = strength
	relationship.EmotionalHarmony = harmony
	relationship.SharedMemoriesCount = len(shared)
	relationship.LastActive = now
	if err := s.relationships.UpdateSyncScores(ctx, relationship); err != nil {
		return nil, NewServiceError("sync_state", "failed to persist sync scores", err)
	}

	s.logger.Info("relationship state synchronized",
		slog.String("relationship_id", relationship.ID.String()),
		slog.Float64("connection_strength", strength),
		slog.Float64("emotional_harmony", harmony),
		slog.Int("shared_memories", len(shared)))

	return snapshot, nil
}

// orientSnapshot builds the viewer-relative SETState from a canonical
// snapshot.
func orientSnapshot(
	snapshot *pairSnapshot,
	relationship *domain.Relationship,
	userID uuid.UUID,
) *domain.SETState {
	state := &domain.SETState{
		UserAvatar:         snapshot.partner1Avatar,
		PartnerAvatar:      snapshot.partner2Avatar,
		ConnectionStrength: snapshot.connectionStrength,
		EmotionalHarmony:   snapshot.emotionalHarmony,
		LastSync:           snapshot.syncedAt,
		ColorAura:          snapshot.colorAura,
	}
	if userID == relationship.Partner2ID {
		state.UserAvatar, state.PartnerAvatar = state.PartnerAvatar, state.UserAvatar
	}
	return state
}

// HandleEvent implements events.Handler. A recorded memory invalidates the
// cached snapshot of its relationship; the next sync recomputes.
func (s *SyncCoordinator) HandleEvent(_ context.Context, event *events.Event) error {
	if event.Type != events.TypeMemoryRecorded {
		return nil
	}

	var payload events.MemoryRecordedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return NewServiceError("invalidate_sync_cache", "failed to decode event payload", err)
	}

	sess := s.session(payload.RelationshipID)
	sess.mu.Lock()
	sess.cached = nil
	sess.mu.Unlock()

	return nil
}
