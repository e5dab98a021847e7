package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/events"
	"github.com/oursapp/ours-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// fakeTxRunner executes the function directly; the mocks ignore the nil
// transaction handle.
type fakeTxRunner struct {
	err error
}

func (r *fakeTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	if r.err != nil {
		return r.err
	}
	return fn(ctx, nil)
}

// capturingEmitter records every emitted event.
type capturingEmitter struct {
	events []*events.Event
	err    error
}

func (e *capturingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.events = append(e.events, event)
	return e.err
}

// mockMemoryStore is a testify mock of store.MemoryStore.
type mockMemoryStore struct {
	mock.Mock
}

func (m *mockMemoryStore) Append(ctx context.Context, memory *domain.EmotionalMemory) error {
	args := m.Called(ctx, memory)
	return args.Error(0)
}

func (m *mockMemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmotionalMemory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmotionalMemory), args.Error(1)
}

func (m *mockMemoryStore) ReadByUser(ctx context.Context, userID uuid.UUID) ([]*domain.EmotionalMemory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EmotionalMemory), args.Error(1)
}

func (m *mockMemoryStore) ReadByRelationship(
	ctx context.Context,
	relationshipID uuid.UUID,
) ([]*domain.EmotionalMemory, error) {
	args := m.Called(ctx, relationshipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EmotionalMemory), args.Error(1)
}

func (m *mockMemoryStore) SetShared(ctx context.Context, id uuid.UUID, shared bool) error {
	args := m.Called(ctx, id, shared)
	return args.Error(0)
}

func (m *mockMemoryStore) WithTx(_ *sql.Tx) store.MemoryStore {
	return m
}

// mockRelationshipStore is a testify mock of store.RelationshipStore.
type mockRelationshipStore struct {
	mock.Mock
}

func (m *mockRelationshipStore) Create(ctx context.Context, relationship *domain.Relationship) error {
	args := m.Called(ctx, relationship)
	return args.Error(0)
}

func (m *mockRelationshipStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Relationship, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockRelationshipStore) GetActiveByPartner(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Relationship, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relationship), args.Error(1)
}

func (m *mockRelationshipStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.RelationshipStatus,
) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockRelationshipStore) UpdateSyncScores(ctx context.Context, relationship *domain.Relationship) error {
	args := m.Called(ctx, relationship)
	return args.Error(0)
}

func (m *mockRelationshipStore) WithTx(_ *sql.Tx) store.RelationshipStore {
	return m
}

// mockInvitationStore is a testify mock of store.InvitationStore.
type mockInvitationStore struct {
	mock.Mock
}

func (m *mockInvitationStore) Create(ctx context.Context, invitation *domain.Invitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *mockInvitationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *mockInvitationStore) GetByCode(ctx context.Context, connectionCode string) (*domain.Invitation, error) {
	args := m.Called(ctx, connectionCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invitation), args.Error(1)
}

func (m *mockInvitationStore) UpdateIfStatusIn(
	ctx context.Context,
	invitation *domain.Invitation,
	expected ...domain.InvitationStatus,
) (bool, error) {
	args := m.Called(ctx, invitation, expected)
	return args.Bool(0), args.Error(1)
}

func (m *mockInvitationStore) WithTx(_ *sql.Tx) store.InvitationStore {
	return m
}

// mockUserStore is a testify mock of store.UserStore.
type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.UserProfile) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, user *domain.UserProfile) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserStore) WithTx(_ *sql.Tx) store.UserStore {
	return m
}

// mockReflectionStore is a testify mock of store.ReflectionStore.
type mockReflectionStore struct {
	mock.Mock
}

func (m *mockReflectionStore) Create(ctx context.Context, reflection *domain.EmotionalReflection) error {
	args := m.Called(ctx, reflection)
	return args.Error(0)
}

func (m *mockReflectionStore) ReadByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.EmotionalReflection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EmotionalReflection), args.Error(1)
}

func (m *mockReflectionStore) WithTx(_ *sql.Tx) store.ReflectionStore {
	return m
}
