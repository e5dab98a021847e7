package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/events"
	"github.com/oursapp/ours-api/internal/platform/mail"
)

// Submitter accepts tasks for asynchronous execution.
type Submitter interface {
	Submit(ctx context.Context, t Task) error
}

// DeliveryEventHandler turns invitation-created events into delivery
// tasks. It implements events.Handler so the invitation service stays
// unaware of email delivery.
type DeliveryEventHandler struct {
	invitations InvitationReader
	sender      mail.Sender
	runner      Submitter
	logger      *slog.Logger
}

// NewDeliveryEventHandler creates an event handler that submits
// invitation delivery tasks to the given runner.
func NewDeliveryEventHandler(
	invitations InvitationReader,
	sender mail.Sender,
	runner Submitter,
	log *slog.Logger,
) *DeliveryEventHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DeliveryEventHandler{
		invitations: invitations,
		sender:      sender,
		runner:      runner,
		logger:      log.With("component", "delivery_event_handler"),
	}
}

// HandleEvent implements events.Handler. Events other than invitation
// creation are ignored.
func (h *DeliveryEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeInvitationCreated {
		return nil
	}

	var payload events.InvitationCreatedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal event payload",
			"error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.InvitationID == uuid.Nil {
		return fmt.Errorf("event %s carries no invitation ID", event.ID)
	}

	t, err := NewInvitationDeliveryTask(payload.InvitationID, h.invitations, h.sender, h.logger)
	if err != nil {
		return fmt.Errorf("failed to create delivery task: %w", err)
	}

	if err := h.runner.Submit(ctx, t); err != nil {
		h.logger.Error("failed to submit delivery task",
			"error", err,
			"task_id", t.ID(),
			"invitation_id", payload.InvitationID)
		return fmt.Errorf("failed to submit delivery task: %w", err)
	}

	h.logger.Debug("delivery task submitted",
		"task_id", t.ID(), "invitation_id", payload.InvitationID)
	return nil
}

var _ events.Handler = (*DeliveryEventHandler)(nil)
