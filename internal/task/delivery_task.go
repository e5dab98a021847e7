package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/platform/mail"
)

// TaskTypeInvitationDelivery identifies invitation email delivery tasks.
const TaskTypeInvitationDelivery = "invitation_delivery"

// InvitationReader is the slice of the invitation service the delivery
// task needs. Declared here to avoid a dependency on the service package.
type InvitationReader interface {
	GetInvitation(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
}

// InvitationDeliveryTask sends the invitation email for a newly created
// invitation and records delivery on success.
type InvitationDeliveryTask struct {
	id           uuid.UUID
	invitationID uuid.UUID
	invitations  InvitationReader
	sender       mail.Sender
	logger       *slog.Logger
}

// NewInvitationDeliveryTask creates a delivery task for the given invitation.
func NewInvitationDeliveryTask(
	invitationID uuid.UUID,
	invitations InvitationReader,
	sender mail.Sender,
	log *slog.Logger,
) (*InvitationDeliveryTask, error) {
	if invitationID == uuid.Nil {
		return nil, errors.New("invitation ID cannot be nil")
	}
	if invitations == nil {
		return nil, errors.New("invitation reader cannot be nil")
	}
	if sender == nil {
		return nil, errors.New("mail sender cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &InvitationDeliveryTask{
		id:           uuid.New(),
		invitationID: invitationID,
		invitations:  invitations,
		sender:       sender,
		logger:       log.With("task_type", TaskTypeInvitationDelivery),
	}, nil
}

// ID implements Task.ID
func (t *InvitationDeliveryTask) ID() uuid.UUID {
	return t.id
}

// Type implements Task.Type
func (t *InvitationDeliveryTask) Type() string {
	return TaskTypeInvitationDelivery
}

// Execute loads the invitation, sends the email and marks it delivered.
// An invitation that already moved past "sent" is skipped without error,
// so a redelivered event stays harmless.
func (t *InvitationDeliveryTask) Execute(ctx context.Context) error {
	log := t.logger.With("invitation_id", t.invitationID, "task_id", t.id)

	invitation, err := t.invitations.GetInvitation(ctx, t.invitationID)
	if err != nil {
		return fmt.Errorf("failed to load invitation: %w", err)
	}

	if invitation.Status != domain.InvitationStatusSent {
		log.Info("skipping delivery, invitation no longer pending",
			"status", invitation.Status)
		return nil
	}

	if err := t.sender.SendInvitation(ctx, invitation); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}

	if err := t.invitations.MarkDelivered(ctx, t.invitationID); err != nil {
		if errors.Is(err, domain.ErrInvitationExpired) {
			log.Info("invitation expired between send and delivery record")
			return nil
		}
		return fmt.Errorf("failed to mark invitation delivered: %w", err)
	}

	log.Info("invitation email delivered")
	return nil
}

var _ Task = (*InvitationDeliveryTask)(nil)
