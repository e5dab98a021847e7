package task

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockSubmitter is a testify mock of Submitter.
type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, t Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func invitationCreatedEvent(t *testing.T, invitationID uuid.UUID) *events.Event {
	t.Helper()

	event, err := events.NewEvent(events.TypeInvitationCreated, events.InvitationCreatedPayload{
		InvitationID: invitationID,
	})
	require.NoError(t, err)
	return event
}

func TestDeliveryEventHandlerSubmitsTask(t *testing.T) {
	t.Parallel()

	invitationID := uuid.New()
	runner := new(mockSubmitter)
	runner.On("Submit", mock.Anything, mock.MatchedBy(func(submitted Task) bool {
		deliveryTask, ok := submitted.(*InvitationDeliveryTask)
		return ok && deliveryTask.invitationID == invitationID
	})).Return(nil)

	handler := NewDeliveryEventHandler(new(mockInvitationReader), new(mockSender), runner, nil)

	require.NoError(t, handler.HandleEvent(context.Background(), invitationCreatedEvent(t, invitationID)))
	runner.AssertExpectations(t)
}

func TestDeliveryEventHandlerIgnoresOtherEvents(t *testing.T) {
	t.Parallel()

	runner := new(mockSubmitter)
	handler := NewDeliveryEventHandler(new(mockInvitationReader), new(mockSender), runner, nil)

	event, err := events.NewEvent(events.TypeMemoryRecorded, events.MemoryRecordedPayload{
		MemoryID:       uuid.New(),
		RelationshipID: uuid.New(),
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	runner.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestDeliveryEventHandlerRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	runner := new(mockSubmitter)
	handler := NewDeliveryEventHandler(new(mockInvitationReader), new(mockSender), runner, nil)

	event := &events.Event{
		ID:        uuid.New(),
		Type:      events.TypeInvitationCreated,
		Payload:   json.RawMessage(`{not json`),
		CreatedAt: time.Now().UTC(),
	}

	assert.Error(t, handler.HandleEvent(context.Background(), event))
	runner.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestDeliveryEventHandlerRejectsNilInvitationID(t *testing.T) {
	t.Parallel()

	runner := new(mockSubmitter)
	handler := NewDeliveryEventHandler(new(mockInvitationReader), new(mockSender), runner, nil)

	assert.Error(t, handler.HandleEvent(context.Background(), invitationCreatedEvent(t, uuid.Nil)))
	runner.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}
