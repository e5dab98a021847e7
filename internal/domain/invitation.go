package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents the lifecycle state of an invitation.
type InvitationStatus string

// Possible invitation status values. Accepted, declined and expired are
// terminal: no transition ever leaves them.
const (
	InvitationStatusSent      InvitationStatus = "sent"
	InvitationStatusDelivered InvitationStatus = "delivered"
	InvitationStatusAccepted  InvitationStatus = "accepted"
	InvitationStatusDeclined  InvitationStatus = "declined"
	InvitationStatusExpired   InvitationStatus = "expired"
)

// InvitationMethod represents how an invitation is conveyed to the recipient.
type InvitationMethod string

// Possible invitation method values
const (
	InvitationMethodEmail InvitationMethod = "email"
	InvitationMethodCode  InvitationMethod = "code"
	InvitationMethodQR    InvitationMethod = "qr"
)

// Invitation-specific errors
var (
	ErrInvitationIDEmpty       = errors.New("invitation ID cannot be empty")
	ErrInvitationSenderEmpty   = errors.New("invitation sender cannot be empty")
	ErrConnectionCodeEmpty     = errors.New("connection code cannot be empty")
	ErrInvitationEmailMissing  = errors.New("email invitations require a recipient email")
	ErrInvalidInvitationStatus = errors.New("invalid invitation status")
	ErrInvalidInvitationMethod = errors.New("invalid invitation method")
	ErrExpiryBeforeCreation    = errors.New("invitation expiry must be after creation")

	// ErrInvalidTransition is returned when an illegal lifecycle transition
	// is attempted on a terminal invitation.
	ErrInvalidTransition = errors.New("invalid invitation transition")

	// ErrInvitationExpired is returned when accept or decline is attempted
	// past the invitation's expiry.
	ErrInvitationExpired = errors.New("invitation has expired")
)

// Invitation is an offer from one user to another to form a relationship.
// The connection code acts as a capability token and must be unique among
// non-expired invitations.
//
// Status transitions are monotonic: sent -> delivered -> accepted | declined,
// and any non-terminal state -> expired once the expiry passes. Expiry is
// evaluated lazily at the time of any state query or transition attempt;
// correctness never depends on a background timer.
type Invitation struct {
	ID              uuid.UUID        `json:"id"`
	FromUserID      uuid.UUID        `json:"from_user_id"`
	FromUserName    string           `json:"from_user_name"`
	FromUserEmail   string           `json:"from_user_email"`
	ToEmail         *string          `json:"to_email,omitempty"`
	ConnectionCode  string           `json:"connection_code"`
	PersonalMessage string           `json:"personal_message"`
	Method          InvitationMethod `json:"method"`
	Status          InvitationStatus `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	ExpiresAt       time.Time        `json:"expires_at"`
	AcceptedAt      *time.Time       `json:"accepted_at,omitempty"`
	RelationshipID  *uuid.UUID       `json:"relationship_id,omitempty"`
}

// NewInvitation creates a new Invitation in the sent state. The connection
// code is supplied by the caller; code collision against other live
// invitations is detected at the store boundary.
// Returns an error if validation fails.
func NewInvitation(
	fromUserID uuid.UUID,
	fromUserName, fromUserEmail string,
	toEmail *string,
	connectionCode, personalMessage string,
	method InvitationMethod,
	ttl time.Duration,
) (*Invitation, error) {
	now := time.Now().UTC()
	invitation := &Invitation{
		ID:              uuid.New(),
		FromUserID:      fromUserID,
		FromUserName:    fromUserName,
		FromUserEmail:   fromUserEmail,
		ToEmail:         toEmail,
		ConnectionCode:  connectionCode,
		PersonalMessage: personalMessage,
		Method:          method,
		Status:          InvitationStatusSent,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	}

	if err := invitation.Validate(); err != nil {
		return nil, err
	}

	return invitation, nil
}

// Validate checks if the Invitation has valid data.
// Returns an error if any field fails validation.
func (i *Invitation) Validate() error {
	if i.ID == uuid.Nil {
		return ErrInvitationIDEmpty
	}

	if i.FromUserID == uuid.Nil {
		return ErrInvitationSenderEmpty
	}

	if i.ConnectionCode == "" {
		return ErrConnectionCodeEmpty
	}

	if !isValidInvitationMethod(i.Method) {
		return ErrInvalidInvitationMethod
	}

	if i.Method == InvitationMethodEmail && (i.ToEmail == nil || *i.ToEmail == "") {
		return ErrInvitationEmailMissing
	}

	if !isValidInvitationStatus(i.Status) {
		return ErrInvalidInvitationStatus
	}

	if !i.ExpiresAt.After(i.CreatedAt) {
		return ErrExpiryBeforeCreation
	}

	return nil
}

// IsTerminal reports whether the invitation has reached a terminal state.
func (i *Invitation) IsTerminal() bool {
	switch i.Status {
	case InvitationStatusAccepted, InvitationStatusDeclined, InvitationStatusExpired:
		return true
	default:
		return false
	}
}

// ExpireIfDue applies the lazy expiry rule: a non-terminal invitation whose
// expiry has passed flips to expired. Reports whether the flip happened.
func (i *Invitation) ExpireIfDue(now time.Time) bool {
	if i.IsTerminal() || !now.After(i.ExpiresAt) {
		return false
	}
	i.Status = InvitationStatusExpired
	return true
}

// Deliver transitions sent -> delivered. It is a no-op when the invitation
// is already delivered and fails with ErrInvalidTransition from any terminal
// state.
func (i *Invitation) Deliver(now time.Time) error {
	if i.ExpireIfDue(now) {
		return ErrInvitationExpired
	}

	switch i.Status {
	case InvitationStatusSent:
		i.Status = InvitationStatusDelivered
		return nil
	case InvitationStatusDelivered:
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Accept transitions sent or delivered -> accepted, stamping AcceptedAt and
// the resulting relationship ID. Past expiry it flips to expired and returns
// ErrInvitationExpired. A repeat accept on an already-accepted invitation is
// a no-op; the caller resolves idempotence by returning the stamped
// relationship ID.
func (i *Invitation) Accept(now time.Time, relationshipID uuid.UUID) error {
	if i.ExpireIfDue(now) {
		return ErrInvitationExpired
	}

	switch i.Status {
	case InvitationStatusSent, InvitationStatusDelivered:
		acceptedAt := now.UTC()
		i.Status = InvitationStatusAccepted
		i.AcceptedAt = &acceptedAt
		i.RelationshipID = &relationshipID
		return nil
	case InvitationStatusAccepted:
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Decline transitions sent or delivered -> declined. Idempotent on declined;
// fails with ErrInvalidTransition from accepted or expired, and with
// ErrInvitationExpired past expiry.
func (i *Invitation) Decline(now time.Time) error {
	if i.ExpireIfDue(now) {
		return ErrInvitationExpired
	}

	switch i.Status {
	case InvitationStatusSent, InvitationStatusDelivered:
		i.Status = InvitationStatusDeclined
		return nil
	case InvitationStatusDeclined:
		return nil
	default:
		return ErrInvalidTransition
	}
}

// isValidInvitationStatus checks if the given status is a valid InvitationStatus.
func isValidInvitationStatus(status InvitationStatus) bool {
	switch status {
	case InvitationStatusSent, InvitationStatusDelivered, InvitationStatusAccepted,
		InvitationStatusDeclined, InvitationStatusExpired:
		return true
	default:
		return false
	}
}

// isValidInvitationMethod checks if the given method is a valid InvitationMethod.
func isValidInvitationMethod(method InvitationMethod) bool {
	switch method {
	case InvitationMethodEmail, InvitationMethodCode, InvitationMethodQR:
		return true
	default:
		return false
	}
}
