package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/oursapp/ours-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRelationshipService(
	t *testing.T,
	relationships *mockRelationshipStore,
	users *mockUserStore,
) RelationshipService {
	t.Helper()

	svc, err := NewRelationshipService(&fakeTxRunner{}, relationships, users, nil)
	require.NoError(t, err)
	return svc
}

func linkedUsers(t *testing.T, relationship *domain.Relationship) (*domain.UserProfile, *domain.UserProfile) {
	t.Helper()

	partner1, err := domain.NewUserProfile(relationship.Partner1Email, &relationship.Partner1Name)
	require.NoError(t, err)
	partner1.UID = relationship.Partner1ID
	partner2, err := domain.NewUserProfile(relationship.Partner2Email, &relationship.Partner2Name)
	require.NoError(t, err)
	partner2.UID = relationship.Partner2ID

	require.NoError(t, partner1.LinkPartner(partner2.UID, relationship.ID))
	require.NoError(t, partner2.LinkPartner(partner1.UID, relationship.ID))
	return partner1, partner2
}

func TestGetRelationshipParticipantsOnly(t *testing.T) {
	t.Parallel()

	relationship := testRelationship(t)
	relationships := new(mockRelationshipStore)
	relationships.On("GetByID", mock.Anything, relationship.ID).Return(relationship, nil)

	svc := newTestRelationshipService(t, relationships, new(mockUserStore))

	got, err := svc.GetRelationship(context.Background(), relationship.ID, relationship.Partner2ID)
	require.NoError(t, err)
	assert.Equal(t, relationship.ID, got.ID)

	_, err = svc.GetRelationship(context.Background(), relationship.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestDisconnectUnlinksBothPartners(t *testing.T) {
	t.Parallel()

	relationship := testRelationship(t)
	partner1, partner2 := linkedUsers(t, relationship)

	relationships := new(mockRelationshipStore)
	users := new(mockUserStore)
	relationships.On("GetByID", mock.Anything, relationship.ID).Return(relationship, nil)
	relationships.On("UpdateStatus", mock.Anything, relationship.ID,
		domain.RelationshipStatusInactive).Return(nil)
	users.On("GetByID", mock.Anything, partner1.UID).Return(partner1, nil)
	users.On("GetByID", mock.Anything, partner2.UID).Return(partner2, nil)
	users.On("Update", mock.Anything, partner1).Return(nil)
	users.On("Update", mock.Anything, partner2).Return(nil)

	svc := newTestRelationshipService(t, relationships, users)

	require.NoError(t, svc.Disconnect(context.Background(), relationship.ID, partner1.UID))
	assert.Nil(t, partner1.PartnerID)
	assert.Nil(t, partner1.RelationshipID)
	assert.Nil(t, partner2.PartnerID)
	assert.Nil(t, partner2.RelationshipID)
}

func TestDisconnectIdempotentOnInactive(t *testing.T) {
	t.Parallel()

	relationship := testRelationship(t)
	relationship.Deactivate()

	relationships := new(mockRelationshipStore)
	relationships.On("GetByID", mock.Anything, relationship.ID).Return(relationship, nil)

	svc := newTestRelationshipService(t, relationships, new(mockUserStore))

	assert.NoError(t, svc.Disconnect(context.Background(), relationship.ID, relationship.Partner1ID))
	relationships.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisconnectByStrangerRejected(t *testing.T) {
	t.Parallel()

	relationship := testRelationship(t)
	relationships := new(mockRelationshipStore)
	relationships.On("GetByID", mock.Anything, relationship.ID).Return(relationship, nil)

	svc := newTestRelationshipService(t, relationships, new(mockUserStore))

	assert.ErrorIs(t,
		svc.Disconnect(context.Background(), relationship.ID, uuid.New()),
		ErrNotParticipant)
}

func TestDisconnectSkipsRelinkedPartner(t *testing.T) {
	t.Parallel()

	relationship := testRelationship(t)
	partner1, partner2 := linkedUsers(t, relationship)

	// Partner2 already points at a newer pairing; disconnect must not
	// clobber it.
	otherRelationship := uuid.New()
	otherPartner := uuid.New()
	require.NoError(t, partner2.LinkPartner(otherPartner, otherRelationship))

	relationships := new(mockRelationshipStore)
	users := new(mockUserStore)
	relationships.On("GetByID", mock.Anything, relationship.ID).Return(relationship, nil)
	relationships.On("UpdateStatus", mock.Anything, relationship.ID,
		domain.RelationshipStatusInactive).Return(nil)
	users.On("GetByID", mock.Anything, partner1.UID).Return(partner1, nil)
	users.On("GetByID", mock.Anything, partner2.UID).Return(partner2, nil)
	users.On("Update", mock.Anything, partner1).Return(nil)

	svc := newTestRelationshipService(t, relationships, users)

	require.NoError(t, svc.Disconnect(context.Background(), relationship.ID, partner1.UID))
	assert.Nil(t, partner1.PartnerID)
	require.NotNil(t, partner2.RelationshipID)
	assert.Equal(t, otherRelationship, *partner2.RelationshipID)
	users.AssertNotCalled(t, "Update", mock.Anything, partner2)
}
