package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/events"
	"github.com/oursapp/ours-api/internal/service/vault"
	"github.com/oursapp/ours-api/internal/store"
)

// RecordMemoryInput carries the boundary-validated fields for a new memory.
// The relationship, partner and creation time are resolved by the service.
type RecordMemoryInput struct {
	UserID         uuid.UUID
	Caption        string
	ImageURL       *string
	Mood           domain.Mood
	Category       domain.MemoryCategory
	EmotionalScore float64
	IsShared       bool
}

// MemoryService provides memory-related operations. Every write passes
// through the encryption gate before it reaches storage, and every read of
// content passes back through it.
type MemoryService interface {
	// RecordMemory appends a new memory to the author's active relationship
	// and returns the plaintext form for immediate display.
	RecordMemory(ctx context.Context, input RecordMemoryInput) (*domain.EmotionalMemory, error)

	// GetTimeline returns the memories visible to the user within their
	// active relationship: their own plus the partner's shared ones, in
	// plaintext, ordered by creation time ascending.
	GetTimeline(ctx context.Context, userID uuid.UUID) ([]*domain.EmotionalMemory, error)

	// RevealMemory returns a single memory in plaintext. The partner may
	// only reveal memories marked shared.
	RevealMemory(ctx context.Context, memoryID, userID uuid.UUID) (*domain.EmotionalMemory, error)

	// SetShared toggles the IsShared flag, the only mutation a memory
	// permits. Author-only.
	SetShared(ctx context.Context, memoryID, userID uuid.UUID, shared bool) error
}

// memoryServiceImpl implements the MemoryService interface.
type memoryServiceImpl struct {
	txRunner      TxRunner
	memories      store.MemoryStore
	relationships store.RelationshipStore
	gate          *vault.Gate
	emitter       events.Emitter
	logger        *slog.Logger
}

// NewMemoryService creates a new MemoryService.
// It returns an error if any of the required dependencies are nil.
func NewMemoryService(
	txRunner TxRunner,
	memories store.MemoryStore,
	relationships store.RelationshipStore,
	gate *vault.Gate,
	emitter events.Emitter,
	logger *slog.Logger,
) (MemoryService, error) {
	if txRunner == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "txRunner cannot be nil"}
	}
	if memories == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "memories cannot be nil"}
	}
	if relationships == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "relationships cannot be nil"}
	}
	if gate == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "gate cannot be nil"}
	}
	if emitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "emitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &memoryServiceImpl{
		txRunner:      txRunner,
		memories:      memories,
		relationships: relationships,
		gate:          gate,
		emitter:       emitter,
		logger:        logger.With(slog.String("component", "memory_service")),
	}, nil
}

// RecordMemory implements MemoryService.RecordMemory
func (s *memoryServiceImpl) RecordMemory(
	ctx context.Context,
	input RecordMemoryInput,
) (*domain.EmotionalMemory, error) {
	relationship, err := s.relationships.GetActiveByPartner(ctx, input.UserID)
	if err != nil {
		return nil, NewServiceError("record_memory", "failed to resolve active relationship", err)
	}

	memory, err := domain.NewEmotionalMemory(
		input.UserID,
		relationship.PartnerOf(input.UserID),
		relationship.ID,
		input.Caption,
		input.ImageURL,
		input.Mood,
		input.Category,
		input.EmotionalScore,
		input.IsShared,
	)
	if err != nil {
		return nil, err
	}

	sealed, err := s.gate.PrepareForStorage(memory, relationship.RelationshipKey)
	if err != nil {
		s.logger.Error("failed to seal memory for storage",
			slog.String("error", err.Error()),
			slog.String("memory_id", memory.ID.String()))
		return nil, NewServiceError("record_memory", "failed to seal memory", err)
	}

	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.memories.WithTx(tx).Append(ctx, sealed); err != nil {
			return NewServiceError("record_memory", "failed to append memory", err)
		}

		if input.IsShared {
			relationship.SharedMemoriesCount++
		}
		relationship.LastActive = memory.CreatedAt
		if err := s.relationships.WithTx(tx).UpdateSyncScores(ctx, relationship); err != nil {
			return NewServiceError("record_memory", "failed to refresh relationship activity", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("memory recorded",
		slog.String("memory_id", memory.ID.String()),
		slog.String("relationship_id", relationship.ID.String()),
		slog.Bool("shared", memory.IsShared))

	if err := s.emitMemoryRecorded(ctx, memory.ID, relationship.ID); err != nil {
		return nil, err
	}

	return memory, nil
}

// GetTimeline implements MemoryService.GetTimeline
func (s *memoryServiceImpl) GetTimeline(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.EmotionalMemory, error) {
	relationship, err := s.relationships.GetActiveByPartner(ctx, userID)
	if err != nil {
		return nil, NewServiceError("get_timeline", "failed to resolve active relationship", err)
	}

	memories, err := s.memories.ReadByRelationship(ctx, relationship.ID)
	if err != nil {
		return nil, NewServiceError("get_timeline", "failed to read memories", err)
	}

	timeline := make([]*domain.EmotionalMemory, 0, len(memories))
	for _, memory := range memories {
		// The partner's private memories stay invisible.
		if memory.UserID != userID && !memory.IsShared {
			continue
		}

		opened, err := s.gate.PrepareForDisplay(memory, relationship.RelationshipKey)
		if err != nil {
			return nil, NewServiceError("get_timeline", "failed to open memory", err)
		}
		timeline = append(timeline, opened)
	}

	return timeline, nil
}

// RevealMemory implements MemoryService.RevealMemory
func (s *memoryServiceImpl) RevealMemory(
	ctx context.Context,
	memoryID, userID uuid.UUID,
) (*domain.EmotionalMemory, error) {
	memory, err := s.memories.GetByID(ctx, memoryID)
	if err != nil {
		return nil, NewServiceError("reveal_memory", "failed to retrieve memory", err)
	}

	relationship, err := s.relationships.GetByID(ctx, memory.RelationshipID)
	if err != nil {
		return nil, NewServiceError("reveal_memory", "failed to retrieve relationship", err)
	}

	if relationship.PartnerOf(userID) == uuid.Nil {
		return nil, ErrNotParticipant
	}
	if memory.UserID != userID && !memory.IsShared {
		return nil, ErrNotOwned
	}

	opened, err := s.gate.PrepareForDisplay(memory, relationship.RelationshipKey)
	if err != nil {
		return nil, NewServiceError("reveal_memory", "failed to open memory", err)
	}

	return opened, nil
}

// SetShared implements MemoryService.SetShared
func (s *memoryServiceImpl) SetShared(
	ctx context.Context,
	memoryID, userID uuid.UUID,
	shared bool,
) error {
	memory, err := s.memories.GetByID(ctx, memoryID)
	if err != nil {
		return NewServiceError("set_shared", "failed to retrieve memory", err)
	}
	if memory.UserID != userID {
		return ErrNotOwned
	}
	if memory.IsShared == shared {
		return nil
	}

	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.memories.WithTx(tx).SetShared(ctx, memoryID, shared); err != nil {
			return NewServiceError("set_shared", "failed to update memory", err)
		}

		relationship, err := s.relationships.WithTx(tx).GetByID(ctx, memory.RelationshipID)
		if err != nil {
			if errors.Is(err, store.ErrRelationshipNotFound) {
				return ErrRelationshipNotFound
			}
			return NewServiceError("set_shared", "failed to retrieve relationship", err)
		}

		if shared {
			relationship.SharedMemoriesCount++
		} else if relationship.SharedMemoriesCount > 0 {
			relationship.SharedMemoriesCount--
		}
		if err := s.relationships.WithTx(tx).UpdateSyncScores(ctx, relationship); err != nil {
			return NewServiceError("set_shared", "failed to refresh relationship counters", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.emitMemoryRecorded(ctx, memoryID, memory.RelationshipID)
}

// emitMemoryRecorded publishes the event that invalidates cached sync state.
func (s *memoryServiceImpl) emitMemoryRecorded(
	ctx context.Context,
	memoryID, relationshipID uuid.UUID,
) error {
	event, err := events.NewEvent(events.TypeMemoryRecorded, events.MemoryRecordedPayload{
		MemoryID:       memoryID,
		RelationshipID: relationshipID,
	})
	if err != nil {
		return NewServiceError("record_memory", "failed to create event", err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit memory recorded event",
			slog.String("error", err.Error()),
			slog.String("memory_id", memoryID.String()))
		return NewServiceError("record_memory", "failed to emit event", err)
	}

	return nil
}
