package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func pendingInvitation(t *testing.T, method InvitationMethod) *Invitation {
	t.Helper()

	var toEmail *string
	if method == InvitationMethodEmail {
		toEmail = strPtr("partner@example.com")
	}

	inv, err := NewInvitation(
		uuid.New(), "Alex", "alex@example.com",
		toEmail, "CODE-1234", "join me?", method,
		72*time.Hour,
	)
	if err != nil {
		t.Fatalf("Expected no error creating invitation, got %v", err)
	}
	return inv
}

func TestNewInvitation(t *testing.T) {
	t.Parallel()

	inv := pendingInvitation(t, InvitationMethodCode)

	if inv.Status != InvitationStatusSent {
		t.Errorf("Expected status %s, got %s", InvitationStatusSent, inv.Status)
	}
	if inv.AcceptedAt != nil || inv.RelationshipID != nil {
		t.Error("Expected fresh invitation to carry no acceptance data")
	}
	if !inv.ExpiresAt.After(inv.CreatedAt) {
		t.Error("Expected expiry after creation")
	}

	// Email invitations require a recipient email.
	_, err := NewInvitation(
		uuid.New(), "Alex", "alex@example.com",
		nil, "CODE-5678", "", InvitationMethodEmail,
		72*time.Hour,
	)
	if err != ErrInvitationEmailMissing {
		t.Errorf("Expected error %v, got %v", ErrInvitationEmailMissing, err)
	}

	// Empty connection codes are rejected.
	_, err = NewInvitation(
		uuid.New(), "Alex", "alex@example.com",
		nil, "", "", InvitationMethodCode,
		72*time.Hour,
	)
	if err != ErrConnectionCodeEmpty {
		t.Errorf("Expected error %v, got %v", ErrConnectionCodeEmpty, err)
	}
}

func TestInvitationDeliver(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	inv := pendingInvitation(t, InvitationMethodCode)

	if err := inv.Deliver(now); err != nil {
		t.Fatalf("Expected sent -> delivered to succeed, got %v", err)
	}
	if inv.Status != InvitationStatusDelivered {
		t.Errorf("Expected status delivered, got %s", inv.Status)
	}

	// Idempotent on delivered.
	if err := inv.Deliver(now); err != nil {
		t.Errorf("Expected repeat deliver to be a no-op, got %v", err)
	}

	// Terminal states reject delivery.
	inv.Status = InvitationStatusDeclined
	if err := inv.Deliver(now); err != ErrInvalidTransition {
		t.Errorf("Expected %v from terminal state, got %v", ErrInvalidTransition, err)
	}
}

func TestInvitationAccept(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	relationshipID := uuid.New()

	t.Run("accept from sent", func(t *testing.T) {
		t.Parallel()
		inv := pendingInvitation(t, InvitationMethodCode)

		if err := inv.Accept(now, relationshipID); err != nil {
			t.Fatalf("Expected accept to succeed, got %v", err)
		}
		if inv.Status != InvitationStatusAccepted {
			t.Errorf("Expected status accepted, got %s", inv.Status)
		}
		if inv.AcceptedAt == nil || !inv.AcceptedAt.Equal(now) {
			t.Error("Expected AcceptedAt to be stamped with now")
		}
		if inv.RelationshipID == nil || *inv.RelationshipID != relationshipID {
			t.Error("Expected relationship ID to be stamped")
		}
	})

	t.Run("repeat accept keeps first relationship", func(t *testing.T) {
		t.Parallel()
		inv := pendingInvitation(t, InvitationMethodCode)

		if err := inv.Accept(now, relationshipID); err != nil {
			t.Fatalf("Expected first accept to succeed, got %v", err)
		}
		if err := inv.Accept(now, uuid.New()); err != nil {
			t.Fatalf("Expected repeat accept to be a no-op, got %v", err)
		}
		if *inv.RelationshipID != relationshipID {
			t.Error("Expected repeat accept to keep the original relationship ID")
		}
	})

	t.Run("decline then accept fails", func(t *testing.T) {
		t.Parallel()
		inv := pendingInvitation(t, InvitationMethodCode)

		if err := inv.Decline(now); err != nil {
			t.Fatalf("Expected decline to succeed, got %v", err)
		}
		if err := inv.Accept(now, relationshipID); err != ErrInvalidTransition {
			t.Errorf("Expected %v after decline, got %v", ErrInvalidTransition, err)
		}
	})

	t.Run("accept past expiry flips to expired", func(t *testing.T) {
		t.Parallel()
		inv := pendingInvitation(t, InvitationMethodCode)
		late := inv.ExpiresAt.Add(time.Minute)

		if err := inv.Accept(late, relationshipID); err != ErrInvitationExpired {
			t.Errorf("Expected %v, got %v", ErrInvitationExpired, err)
		}
		if inv.Status != InvitationStatusExpired {
			t.Errorf("Expected status expired after lazy expiry, got %s", inv.Status)
		}
		if inv.RelationshipID != nil {
			t.Error("Expected no relationship to be stamped on expiry")
		}
	})
}

func TestInvitationDecline(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	inv := pendingInvitation(t, InvitationMethodCode)
	if err := inv.Deliver(now); err != nil {
		t.Fatalf("Expected deliver to succeed, got %v", err)
	}
	if err := inv.Decline(now); err != nil {
		t.Fatalf("Expected decline from delivered to succeed, got %v", err)
	}
	if err := inv.Decline(now); err != nil {
		t.Errorf("Expected repeat decline to be a no-op, got %v", err)
	}

	accepted := pendingInvitation(t, InvitationMethodCode)
	if err := accepted.Accept(now, uuid.New()); err != nil {
		t.Fatalf("Expected accept to succeed, got %v", err)
	}
	if err := accepted.Decline(now); err != ErrInvalidTransition {
		t.Errorf("Expected %v from accepted, got %v", ErrInvalidTransition, err)
	}

	expired := pendingInvitation(t, InvitationMethodCode)
	if err := expired.Decline(expired.ExpiresAt.Add(time.Hour)); err != ErrInvitationExpired {
		t.Errorf("Expected %v past expiry, got %v", ErrInvitationExpired, err)
	}
}

func TestInvitationExpireIfDue(t *testing.T) {
	t.Parallel()

	inv := pendingInvitation(t, InvitationMethodQR)

	if inv.ExpireIfDue(inv.ExpiresAt) {
		t.Error("Expected no expiry exactly at the deadline")
	}
	if !inv.ExpireIfDue(inv.ExpiresAt.Add(time.Second)) {
		t.Error("Expected expiry past the deadline")
	}
	if inv.ExpireIfDue(inv.ExpiresAt.Add(time.Hour)) {
		t.Error("Expected expiry to be applied only once")
	}
}
