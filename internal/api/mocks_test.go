package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// mockMemoryService is a testify mock of service.MemoryService.
type mockMemoryService struct {
	mock.Mock
}

func (m *mockMemoryService) RecordMemory(
	ctx context.Context,
	input service.RecordMemoryInput,
) (*domain.EmotionalMemory, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmotionalMemory), args.Error(1)
}

func (m *mockMemoryService) GetTimeline(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.EmotionalMemory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EmotionalMemory), args.Error(1)
}

func (m *mockMemoryService) RevealMemory(
	ctx context.Context,
	memoryID, userID uuid.UUID,
) (*domain.EmotionalMemory, error) {
	args := m.Called(ctx, memoryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmotionalMemory), args.Error(1)
}

func (m *mockMemoryService) SetShared(
	ctx context.Context,
	memoryID, userID uuid.UUID,
	shared bool,
) error {
	args := m.Called(ctx, memoryID, userID, shared)
	return args.Error(0)
}

// mockRelationshipService is a testify mock of service.RelationshipService.
type mockRelationshipService struct {
	mock.Mock
}

func (m *mockRelationshipService) GetRelationship(
	ctx context.Context,
	relationshipID, userID uuid.UUID,
) (*domain.Relationship, error) {
	args := m.Called(ctx, relationshipID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockRelationshipService) GetActiveRelationship(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Relationship, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockRelationshipService) Disconnect(
	ctx context.Context,
	relationshipID, userID uuid.UUID,
) error {
	args := m.Called(ctx, relationshipID, userID)
	return args.Error(0)
}

// mockSyncService is a testify mock of service.SyncService.
type mockSyncService struct {
	mock.Mock
}

func (m *mockSyncService) SyncRelationshipState(
	ctx context.Context,
	relationshipID, userID uuid.UUID,
	now time.Time,
) (*domain.SETState, error) {
	args := m.Called(ctx, relationshipID, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SETState), args.Error(1)
}

// mockInvitationService is a testify mock of service.InvitationService.
type mockInvitationService struct {
	mock.Mock
}

func (m *mockInvitationService) CreateInvitation(
	ctx context.Context,
	input service.CreateInvitationInput,
) (*domain.Invitation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *mockInvitationService) GetInvitation(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *mockInvitationService) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockInvitationService) AcceptInvitation(
	ctx context.Context,
	connectionCode string,
	userID uuid.UUID,
) (*domain.Relationship, error) {
	args := m.Called(ctx, connectionCode, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockInvitationService) DeclineInvitation(
	ctx context.Context,
	connectionCode string,
	userID uuid.UUID,
) error {
	args := m.Called(ctx, connectionCode, userID)
	return args.Error(0)
}

// mockReflectionService is a testify mock of service.ReflectionService.
type mockReflectionService struct {
	mock.Mock
}

func (m *mockReflectionService) AddReflection(
	ctx context.Context,
	userID uuid.UUID,
	prompt, response string,
	sentiment float64,
	isShared bool,
) (*domain.EmotionalReflection, error) {
	args := m.Called(ctx, userID, prompt, response, sentiment, isShared)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmotionalReflection), args.Error(1)
}

func (m *mockReflectionService) GetReflections(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.EmotionalReflection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EmotionalReflection), args.Error(1)
}
