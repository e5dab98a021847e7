package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler counts handled events and optionally fails.
type recordingHandler struct {
	handledCount int
	lastEvent    *Event
	err          error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *Event) error {
	h.handledCount++
	h.lastEvent = event
	return h.err
}

func TestInMemoryEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		event, err := NewEvent(TypeMemoryRecorded, MemoryRecordedPayload{
			MemoryID:       uuid.New(),
			RelationshipID: uuid.New(),
		})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event reaches every handler", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)

		first := &recordingHandler{}
		second := &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event, err := NewEvent(TypeInvitationCreated, InvitationCreatedPayload{
			InvitationID: uuid.New(),
		})
		require.NoError(t, err)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, 1, first.handledCount)
		assert.Equal(t, 1, second.handledCount)
		assert.Equal(t, event, first.lastEvent)
		assert.Equal(t, event, second.lastEvent)
	})

	t.Run("failing handler does not block the rest", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)

		failing := &recordingHandler{err: errors.New("handler error")}
		healthy := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(healthy)

		event, err := NewEvent(TypeMemoryRecorded, MemoryRecordedPayload{
			MemoryID:       uuid.New(),
			RelationshipID: uuid.New(),
		})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, failing.handledCount)
		assert.Equal(t, 1, healthy.handledCount)
	})
}

func TestEventPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	payload := MemoryRecordedPayload{
		MemoryID:       uuid.New(),
		RelationshipID: uuid.New(),
	}
	event, err := NewEvent(TypeMemoryRecorded, payload)
	require.NoError(t, err)

	var decoded MemoryRecordedPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}
