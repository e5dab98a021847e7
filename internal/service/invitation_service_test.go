package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/oursapp/ours-api/internal/events"
	"github.com/oursapp/ours-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type invitationFixture struct {
	svc           *invitationServiceImpl
	invitations   *mockInvitationStore
	relationships *mockRelationshipStore
	users         *mockUserStore
	emitter       *capturingEmitter
	sender        *domain.UserProfile
	recipient     *domain.UserProfile
}

func newInvitationFixture(t *testing.T) *invitationFixture {
	t.Helper()

	invitations := new(mockInvitationStore)
	relationships := new(mockRelationshipStore)
	users := new(mockUserStore)
	emitter := &capturingEmitter{}

	svc, err := NewInvitationService(
		&fakeTxRunner{}, invitations, relationships, users, emitter, 72*time.Hour, nil)
	require.NoError(t, err)

	senderName := "Alex"
	sender, err := domain.NewUserProfile("alex@example.com", &senderName)
	require.NoError(t, err)
	recipient, err := domain.NewUserProfile("sam@example.com", nil)
	require.NoError(t, err)

	return &invitationFixture{
		svc:           svc.(*invitationServiceImpl),
		invitations:   invitations,
		relationships: relationships,
		users:         users,
		emitter:       emitter,
		sender:        sender,
		recipient:     recipient,
	}
}

func (f *invitationFixture) pendingInvitation(t *testing.T, method domain.InvitationMethod) *domain.Invitation {
	t.Helper()

	var toEmail *string
	if method == domain.InvitationMethodEmail {
		email := f.recipient.Email
		toEmail = &email
	}
	invitation, err := domain.NewInvitation(
		f.sender.UID, "Alex", f.sender.Email, toEmail,
		"CODE2345", "come join me", method, 72*time.Hour)
	require.NoError(t, err)
	return invitation
}

func TestCreateInvitationEmailMethod(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	toEmail := "sam@example.com"

	f.users.On("GetByID", mock.Anything, f.sender.UID).Return(f.sender, nil)
	f.relationships.On("GetActiveByPartner", mock.Anything, f.sender.UID).
		Return(nil, store.ErrRelationshipNotFound)
	f.invitations.On("Create", mock.Anything, mock.MatchedBy(func(i *domain.Invitation) bool {
		return i.Status == domain.InvitationStatusSent && len(i.ConnectionCode) == 8
	})).Return(nil)

	invitation, err := f.svc.CreateInvitation(context.Background(), CreateInvitationInput{
		FromUserID:      f.sender.UID,
		ToEmail:         &toEmail,
		PersonalMessage: "come join me",
		Method:          domain.InvitationMethodEmail,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alex", invitation.FromUserName)
	assert.True(t, invitation.ExpiresAt.After(invitation.CreatedAt))

	require.Len(t, f.emitter.events, 1)
	assert.Equal(t, events.TypeInvitationCreated, f.emitter.events[0].Type)
}

func TestCreateInvitationCodeMethodDoesNotQueueMail(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)

	f.users.On("GetByID", mock.Anything, f.sender.UID).Return(f.sender, nil)
	f.relationships.On("GetActiveByPartner", mock.Anything, f.sender.UID).
		Return(nil, store.ErrRelationshipNotFound)
	f.invitations.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.CreateInvitation(context.Background(), CreateInvitationInput{
		FromUserID: f.sender.UID,
		Method:     domain.InvitationMethodCode,
	})
	require.NoError(t, err)
	assert.Empty(t, f.emitter.events)
}

func TestCreateInvitationRetriesOnCodeCollision(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)

	f.users.On("GetByID", mock.Anything, f.sender.UID).Return(f.sender, nil)
	f.relationships.On("GetActiveByPartner", mock.Anything, f.sender.UID).
		Return(nil, store.ErrRelationshipNotFound)
	f.invitations.On("Create", mock.Anything, mock.Anything).
		Return(store.ErrDuplicateCode).Once()
	f.invitations.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := f.svc.CreateInvitation(context.Background(), CreateInvitationInput{
		FromUserID: f.sender.UID,
		Method:     domain.InvitationMethodCode,
	})
	require.NoError(t, err)
	f.invitations.AssertExpectations(t)
}

func TestCreateInvitationWhenAlreadyPaired(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	relationship := testRelationship(t)

	f.users.On("GetByID", mock.Anything, f.sender.UID).Return(f.sender, nil)
	f.relationships.On("GetActiveByPartner", mock.Anything, f.sender.UID).
		Return(relationship, nil)

	_, err := f.svc.CreateInvitation(context.Background(), CreateInvitationInput{
		FromUserID: f.sender.UID,
		Method:     domain.InvitationMethodCode,
	})
	assert.ErrorIs(t, err, ErrAlreadyPaired)
}

func TestAcceptInvitationCreatesRelationshipAndLinks(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	invitation := f.pendingInvitation(t, domain.InvitationMethodEmail)

	f.invitations.On("GetByCode", mock.Anything, invitation.ConnectionCode).Return(invitation, nil)
	f.users.On("GetByID", mock.Anything, f.sender.UID).Return(f.sender, nil)
	f.users.On("GetByID", mock.Anything, f.recipient.UID).Return(f.recipient, nil)

	var created *domain.Relationship
	f.relationships.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Relationship) bool {
		created = r
		return r.Partner1ID == f.sender.UID && r.Partner2ID == f.recipient.UID &&
			r.Status == domain.RelationshipStatusActive && r.RelationshipKey != ""
	})).Return(nil)
	f.invitations.On("UpdateIfStatusIn", mock.Anything,
		mock.MatchedBy(func(i *domain.Invitation) bool {
			return i.Status == domain.InvitationStatusAccepted &&
				i.AcceptedAt != nil && i.RelationshipID != nil
		}),
		[]domain.InvitationStatus{domain.InvitationStatusSent, domain.InvitationStatusDelivered},
	).Return(true, nil)
	f.users.On("Update", mock.Anything, f.sender).Return(nil)
	f.users.On("Update", mock.Anything, f.recipient).Return(nil)

	relationship, err := f.svc.AcceptInvitation(
		context.Background(), invitation.ConnectionCode, f.recipient.UID)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, created.ID, relationship.ID)

	require.NotNil(t, f.sender.PartnerID)
	assert.Equal(t, f.recipient.UID, *f.sender.PartnerID)
	require.NotNil(t, f.recipient.PartnerID)
	assert.Equal(t, f.sender.UID, *f.recipient.PartnerID)
	require.NotNil(t, f.recipient.RelationshipID)
	assert.Equal(t, relationship.ID, *f.recipient.RelationshipID)
}

func TestAcceptInvitationBySenderRejected(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	invitation := f.pendingInvitation(t, domain.InvitationMethodCode)

	f.invitations.On("GetByCode", mock.Anything, invitation.ConnectionCode).Return(invitation, nil)

	_, err := f.svc.AcceptInvitation(context.Background(), invitation.ConnectionCode, f.sender.UID)
	assert.ErrorIs(t, err, ErrSelfAccept)
}

func TestAcceptInvitationExpiredLazily(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	invitation := f.pendingInvitation(t, domain.InvitationMethodCode)
	f.svc.now = func() time.Time { return invitation.ExpiresAt.Add(time.Minute) }

	f.invitations.On("GetByCode", mock.Anything, invitation.ConnectionCode).Return(invitation, nil)
	f.invitations.On("UpdateIfStatusIn", mock.Anything,
		mock.MatchedBy(func(i *domain.Invitation) bool {
			return i.Status == domain.InvitationStatusExpired
		}),
		[]domain.InvitationStatus{domain.InvitationStatusSent, domain.InvitationStatusDelivered},
	).Return(true, nil)

	_, err := f.svc.AcceptInvitation(context.Background(), invitation.ConnectionCode, f.recipient.UID)
	assert.ErrorIs(t, err, domain.ErrInvitationExpired)
	f.invitations.AssertExpectations(t)
}

func TestAcceptInvitationRepeatIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	relationship, err := domain.NewRelationship(
		f.sender.UID, f.recipient.UID, "Alex", "sam@example.com",
		f.sender.Email, f.recipient.Email, "rel-key")
	require.NoError(t, err)

	invitation := f.pendingInvitation(t, domain.InvitationMethodCode)
	require.NoError(t, invitation.Accept(time.Now().UTC(), relationship.ID))

	f.invitations.On("GetByCode", mock.Anything, invitation.ConnectionCode).Return(invitation, nil)
	f.relationships.On("GetByID", mock.Anything, relationship.ID).Return(relationship, nil)

	got, err := f.svc.AcceptInvitation(context.Background(), invitation.ConnectionCode, f.recipient.UID)
	require.NoError(t, err)
	assert.Equal(t, relationship.ID, got.ID)

	// A third user cannot claim someone else's accepted invitation.
	_, err = f.svc.AcceptInvitation(context.Background(), invitation.ConnectionCode, uuid.New())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAcceptInvitationLostRaceResolvesToWinner(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	invitation := f.pendingInvitation(t, domain.InvitationMethodCode)

	winnerRelationship, err := domain.NewRelationship(
		f.sender.UID, f.recipient.UID, "Alex", "sam@example.com",
		f.sender.Email, f.recipient.Email, "rel-key")
	require.NoError(t, err)

	accepted := *invitation
	require.NoError(t, accepted.Accept(time.Now().UTC(), winnerRelationship.ID))

	f.invitations.On("GetByCode", mock.Anything, invitation.ConnectionCode).Return(invitation, nil)
	f.users.On("GetByID", mock.Anything, f.sender.UID).Return(f.sender, nil)
	f.users.On("GetByID", mock.Anything, f.recipient.UID).Return(f.recipient, nil)
	f.relationships.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.invitations.On("UpdateIfStatusIn", mock.Anything, mock.Anything, mock.Anything).
		Return(false, nil)
	f.invitations.On("GetByID", mock.Anything, invitation.ID).Return(&accepted, nil)
	f.relationships.On("GetByID", mock.Anything, winnerRelationship.ID).Return(winnerRelationship, nil)

	got, err := f.svc.AcceptInvitation(context.Background(), invitation.ConnectionCode, f.recipient.UID)
	require.NoError(t, err)
	assert.Equal(t, winnerRelationship.ID, got.ID)
}

func TestDeclineInvitation(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	invitation := f.pendingInvitation(t, domain.InvitationMethodCode)

	f.invitations.On("GetByCode", mock.Anything, invitation.ConnectionCode).Return(invitation, nil)
	f.invitations.On("UpdateIfStatusIn", mock.Anything,
		mock.MatchedBy(func(i *domain.Invitation) bool {
			return i.Status == domain.InvitationStatusDeclined
		}),
		[]domain.InvitationStatus{domain.InvitationStatusSent, domain.InvitationStatusDelivered},
	).Return(true, nil)

	err := f.svc.DeclineInvitation(context.Background(), invitation.ConnectionCode, f.recipient.UID)
	assert.NoError(t, err)
}

func TestDeclineAcceptedInvitationRejected(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	invitation := f.pendingInvitation(t, domain.InvitationMethodCode)
	require.NoError(t, invitation.Accept(time.Now().UTC(), uuid.New()))

	f.invitations.On("GetByCode", mock.Anything, invitation.ConnectionCode).Return(invitation, nil)

	err := f.svc.DeclineInvitation(context.Background(), invitation.ConnectionCode, f.recipient.UID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestMarkDelivered(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	invitation := f.pendingInvitation(t, domain.InvitationMethodEmail)

	f.invitations.On("GetByID", mock.Anything, invitation.ID).Return(invitation, nil)
	f.invitations.On("UpdateIfStatusIn", mock.Anything,
		mock.MatchedBy(func(i *domain.Invitation) bool {
			return i.Status == domain.InvitationStatusDelivered
		}),
		[]domain.InvitationStatus{domain.InvitationStatusSent},
	).Return(true, nil)

	assert.NoError(t, f.svc.MarkDelivered(context.Background(), invitation.ID))
}

func TestMarkDeliveredAlreadyDeliveredIsNoOp(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	invitation := f.pendingInvitation(t, domain.InvitationMethodEmail)
	require.NoError(t, invitation.Deliver(time.Now().UTC()))

	f.invitations.On("GetByID", mock.Anything, invitation.ID).Return(invitation, nil)

	assert.NoError(t, f.svc.MarkDelivered(context.Background(), invitation.ID))
	f.invitations.AssertNotCalled(t, "UpdateIfStatusIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetInvitationAppliesLazyExpiry(t *testing.T) {
	t.Parallel()

	f := newInvitationFixture(t)
	invitation := f.pendingInvitation(t, domain.InvitationMethodCode)
	f.svc.now = func() time.Time { return invitation.ExpiresAt.Add(time.Hour) }

	f.invitations.On("GetByID", mock.Anything, invitation.ID).Return(invitation, nil)
	f.invitations.On("UpdateIfStatusIn", mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil)

	got, err := f.svc.GetInvitation(context.Background(), invitation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationStatusExpired, got.Status)
}
