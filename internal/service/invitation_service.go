package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/events"
	"github.com/oursapp/ours-api/internal/store"
)

// codeAttempts bounds retries against connection-code collisions.
const codeAttempts = 5

// errLostAcceptRace aborts the accept transaction when another writer
// transitioned the invitation first. Never returned to callers.
var errLostAcceptRace = errors.New("lost invitation accept race")

// CreateInvitationInput carries the boundary-validated fields for a new
// invitation. The connection code and expiry are generated by the service.
type CreateInvitationInput struct {
	FromUserID      uuid.UUID
	ToEmail         *string
	PersonalMessage string
	Method          domain.InvitationMethod
}

// InvitationService drives the invitation lifecycle from creation through
// acceptance or decline, including the atomic relationship creation on
// accept.
type InvitationService interface {
	// CreateInvitation stores a new invitation with a fresh connection
	// code. Email invitations additionally queue a delivery.
	CreateInvitation(ctx context.Context, input CreateInvitationInput) (*domain.Invitation, error)

	// GetInvitation reads an invitation with lazy expiry applied.
	GetInvitation(ctx context.Context, id uuid.UUID) (*domain.Invitation, error)

	// MarkDelivered transitions sent -> delivered after the email went out.
	MarkDelivered(ctx context.Context, id uuid.UUID) error

	// AcceptInvitation atomically accepts the invitation identified by its
	// connection code, creates the relationship and links both users.
	// A repeat accept by the same user returns the already-created
	// relationship.
	AcceptInvitation(ctx context.Context, connectionCode string, userID uuid.UUID) (*domain.Relationship, error)

	// DeclineInvitation declines the invitation identified by its
	// connection code. Idempotent on an already-declined invitation.
	DeclineInvitation(ctx context.Context, connectionCode string, userID uuid.UUID) error
}

// invitationServiceImpl implements the InvitationService interface.
type invitationServiceImpl struct {
	txRunner      TxRunner
	invitations   store.InvitationStore
	relationships store.RelationshipStore
	users         store.UserStore
	emitter       events.Emitter
	ttl           time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewInvitationService creates a new InvitationService with the given
// invitation time-to-live.
// It returns an error if any of the required dependencies are nil.
func NewInvitationService(
	txRunner TxRunner,
	invitations store.InvitationStore,
	relationships store.RelationshipStore,
	users store.UserStore,
	emitter events.Emitter,
	ttl time.Duration,
	logger *slog.Logger,
) (InvitationService, error) {
	if txRunner == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "txRunner cannot be nil"}
	}
	if invitations == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "invitations cannot be nil"}
	}
	if relationships == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "relationships cannot be nil"}
	}
	if users == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "users cannot be nil"}
	}
	if emitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "emitter cannot be nil"}
	}
	if ttl <= 0 {
		return nil, &ServiceError{Operation: "create_service", Message: "ttl must be positive"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &invitationServiceImpl{
		txRunner:      txRunner,
		invitations:   invitations,
		relationships: relationships,
		users:         users,
		emitter:       emitter,
		ttl:           ttl,
		now:           func() time.Time { return time.Now().UTC() },
		logger:        logger.With(slog.String("component", "invitation_service")),
	}, nil
}

// CreateInvitation implements InvitationService.CreateInvitation
func (s *invitationServiceImpl) CreateInvitation(
	ctx context.Context,
	input CreateInvitationInput,
) (*domain.Invitation, error) {
	sender, err := s.users.GetByID(ctx, input.FromUserID)
	if err != nil {
		return nil, NewServiceError("create_invitation", "failed to retrieve sender", err)
	}

	if _, err := s.relationships.GetActiveByPartner(ctx, sender.UID); err == nil {
		return nil, ErrAlreadyPaired
	} else if !errors.Is(err, store.ErrRelationshipNotFound) {
		return nil, NewServiceError("create_invitation", "failed to check existing relationship", err)
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := generateConnectionCode()
		if err != nil {
			return nil, NewServiceError("create_invitation", "failed to generate connection code", err)
		}

		invitation, err := domain.NewInvitation(
			sender.UID,
			displayNameOrEmail(sender),
			sender.Email,
			input.ToEmail,
			code,
			input.PersonalMessage,
			input.Method,
			s.ttl,
		)
		if err != nil {
			return nil, err
		}

		err = s.invitations.Create(ctx, invitation)
		if errors.Is(err, store.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return nil, NewServiceError("create_invitation", "failed to store invitation", err)
		}

		s.logger.Info("invitation created",
			slog.String("invitation_id", invitation.ID.String()),
			slog.String("method", string(invitation.Method)))

		if invitation.Method == domain.InvitationMethodEmail {
			if err := s.emitInvitationCreated(ctx, invitation.ID); err != nil {
				return nil, err
			}
		}
		return invitation, nil
	}

	return nil, NewServiceError("create_invitation",
		fmt.Sprintf("connection code collisions on %d attempts", codeAttempts),
		store.ErrDuplicateCode)
}

// GetInvitation implements InvitationService.GetInvitation
func (s *invitationServiceImpl) GetInvitation(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Invitation, error) {
	invitation, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_invitation", "failed to retrieve invitation", err)
	}

	if invitation.ExpireIfDue(s.now()) {
		if err := s.persistExpiry(ctx, invitation); err != nil {
			return nil, err
		}
	}

	return invitation, nil
}

// MarkDelivered implements InvitationService.MarkDelivered
func (s *invitationServiceImpl) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	invitation, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return NewServiceError("mark_delivered", "failed to retrieve invitation", err)
	}

	now := s.now()
	if invitation.ExpireIfDue(now) {
		if err := s.persistExpiry(ctx, invitation); err != nil {
			return err
		}
		return domain.ErrInvitationExpired
	}

	if invitation.Status != domain.InvitationStatusSent {
		// Already delivered or further along; nothing to record.
		return nil
	}

	if err := invitation.Deliver(now); err != nil {
		return err
	}

	applied, err := s.invitations.UpdateIfStatusIn(ctx, invitation, domain.InvitationStatusSent)
	if err != nil {
		return NewServiceError("mark_delivered", "failed to update invitation", err)
	}
	if !applied {
		// Another writer moved the invitation past sent; delivery is moot.
		return nil
	}

	return nil
}

// AcceptInvitation implements InvitationService.AcceptInvitation
func (s *invitationServiceImpl) AcceptInvitation(
	ctx context.Context,
	connectionCode string,
	userID uuid.UUID,
) (*domain.Relationship, error) {
	invitation, err := s.invitations.GetByCode(ctx, connectionCode)
	if err != nil {
		return nil, NewServiceError("accept_invitation", "failed to retrieve invitation", err)
	}

	now := s.now()
	if invitation.ExpireIfDue(now) {
		if err := s.persistExpiry(ctx, invitation); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvitationExpired
	}

	if invitation.Status == domain.InvitationStatusAccepted {
		return s.acceptedRelationshipFor(ctx, invitation, userID)
	}
	if invitation.IsTerminal() {
		return nil, domain.ErrInvalidTransition
	}
	if invitation.FromUserID == userID {
		return nil, ErrSelfAccept
	}

	sender, err := s.users.GetByID(ctx, invitation.FromUserID)
	if err != nil {
		return nil, NewServiceError("accept_invitation", "failed to retrieve sender", err)
	}
	acceptor, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("accept_invitation", "failed to retrieve accepting user", err)
	}

	relationshipKey, err := generateRelationshipKey()
	if err != nil {
		return nil, NewServiceError("accept_invitation", "failed to generate relationship key", err)
	}

	relationship, err := domain.NewRelationship(
		sender.UID, acceptor.UID,
		displayNameOrEmail(sender), displayNameOrEmail(acceptor),
		sender.Email, acceptor.Email,
		relationshipKey,
	)
	if err != nil {
		return nil, err
	}

	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.relationships.WithTx(tx).Create(ctx, relationship); err != nil {
			if errors.Is(err, store.ErrActiveRelationshipExists) {
				return ErrAlreadyPaired
			}
			return NewServiceError("accept_invitation", "failed to create relationship", err)
		}

		accepted := *invitation
		if err := accepted.Accept(now, relationship.ID); err != nil {
			return err
		}

		applied, err := s.invitations.WithTx(tx).UpdateIfStatusIn(ctx, &accepted,
			domain.InvitationStatusSent, domain.InvitationStatusDelivered)
		if err != nil {
			return NewServiceError("accept_invitation", "failed to update invitation", err)
		}
		if !applied {
			return errLostAcceptRace
		}

		txUsers := s.users.WithTx(tx)
		if err := sender.LinkPartner(acceptor.UID, relationship.ID); err != nil {
			return err
		}
		if err := txUsers.Update(ctx, sender); err != nil {
			return NewServiceError("accept_invitation", "failed to link sender", err)
		}
		if err := acceptor.LinkPartner(sender.UID, relationship.ID); err != nil {
			return err
		}
		if err := txUsers.Update(ctx, acceptor); err != nil {
			return NewServiceError("accept_invitation", "failed to link accepting user", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errLostAcceptRace) {
			return s.resolveLostAcceptRace(ctx, invitation.ID, userID)
		}
		return nil, err
	}

	s.logger.Info("invitation accepted",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("relationship_id", relationship.ID.String()))

	return relationship, nil
}

// DeclineInvitation implements InvitationService.DeclineInvitation
func (s *invitationServiceImpl) DeclineInvitation(
	ctx context.Context,
	connectionCode string,
	userID uuid.UUID,
) error {
	invitation, err := s.invitations.GetByCode(ctx, connectionCode)
	if err != nil {
		return NewServiceError("decline_invitation", "failed to retrieve invitation", err)
	}

	now := s.now()
	if invitation.ExpireIfDue(now) {
		if err := s.persistExpiry(ctx, invitation); err != nil {
			return err
		}
		return domain.ErrInvitationExpired
	}

	if err := invitation.Decline(now); err != nil {
		return err
	}

	applied, err := s.invitations.UpdateIfStatusIn(ctx, invitation,
		domain.InvitationStatusSent, domain.InvitationStatusDelivered)
	if err != nil {
		return NewServiceError("decline_invitation", "failed to update invitation", err)
	}
	if !applied {
		latest, err := s.invitations.GetByID(ctx, invitation.ID)
		if err != nil {
			return NewServiceError("decline_invitation", "failed to re-read invitation", err)
		}
		if latest.Status == domain.InvitationStatusDeclined {
			return nil
		}
		return domain.ErrInvalidTransition
	}

	s.logger.Info("invitation declined",
		slog.String("invitation_id", invitation.ID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// acceptedRelationshipFor resolves a repeat accept: the invitation already
// carries its relationship, and only a participant may claim it.
func (s *invitationServiceImpl) acceptedRelationshipFor(
	ctx context.Context,
	invitation *domain.Invitation,
	userID uuid.UUID,
) (*domain.Relationship, error) {
	if invitation.RelationshipID == nil {
		return nil, NewServiceError("accept_invitation",
			"accepted invitation carries no relationship",
			errors.New("inconsistent invitation state"))
	}

	relationship, err := s.relationships.GetByID(ctx, *invitation.RelationshipID)
	if err != nil {
		return nil, NewServiceError("accept_invitation", "failed to retrieve relationship", err)
	}
	if relationship.PartnerOf(userID) == uuid.Nil {
		return nil, domain.ErrInvalidTransition
	}

	return relationship, nil
}

// resolveLostAcceptRace re-reads the invitation after a lost compare-and-set
// and surfaces the winning writer's outcome.
func (s *invitationServiceImpl) resolveLostAcceptRace(
	ctx context.Context,
	invitationID, userID uuid.UUID,
) (*domain.Relationship, error) {
	latest, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, NewServiceError("accept_invitation", "failed to re-read invitation", err)
	}

	if latest.Status == domain.InvitationStatusAccepted {
		return s.acceptedRelationshipFor(ctx, latest, userID)
	}
	return nil, domain.ErrInvalidTransition
}

// persistExpiry writes a lazily-detected expiry back to the store. A lost
// write race is fine: some other writer already transitioned the row.
func (s *invitationServiceImpl) persistExpiry(ctx context.Context, invitation *domain.Invitation) error {
	_, err := s.invitations.UpdateIfStatusIn(ctx, invitation,
		domain.InvitationStatusSent, domain.InvitationStatusDelivered)
	if err != nil {
		return NewServiceError("expire_invitation", "failed to persist expiry", err)
	}
	return nil
}

// emitInvitationCreated queues email delivery for a stored invitation.
func (s *invitationServiceImpl) emitInvitationCreated(ctx context.Context, invitationID uuid.UUID) error {
	event, err := events.NewEvent(events.TypeInvitationCreated, events.InvitationCreatedPayload{
		InvitationID: invitationID,
	})
	if err != nil {
		return NewServiceError("create_invitation", "failed to create event", err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit invitation created event",
			slog.String("error", err.Error()),
			slog.String("invitation_id", invitationID.String()))
		return NewServiceError("create_invitation", "failed to emit event", err)
	}
	return nil
}

// displayNameOrEmail picks the human-facing name for invitation and
// relationship records.
func displayNameOrEmail(user *domain.UserProfile) string {
	if user.DisplayName != nil && *user.DisplayName != "" {
		return *user.DisplayName
	}
	return user.Email
}

// codeCharset omits characters that read ambiguously when typed from a
// partner's screen.
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateConnectionCode produces an 8-character code from the unambiguous
// charset.
func generateConnectionCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	code := make([]byte, len(buf))
	for i, b := range buf {
		code[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(code), nil
}

// generateRelationshipKey produces the shared key material handed to the
// encryption gate for the new pair.
func generateRelationshipKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
