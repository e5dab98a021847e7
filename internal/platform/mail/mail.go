// Package mail delivers invitation emails through the SendGrid v3 REST API.
// When no API key is configured the sender runs in disabled mode: sends are
// logged and reported as successful, which keeps local development and tests
// free of external calls.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oursapp/ours-api/internal/domain"
)

// Error variables for delivery failures
var (
	// ErrNoRecipient indicates the invitation carries no destination email.
	ErrNoRecipient = errors.New("invitation has no recipient email")
	// ErrSendFailed indicates the mail provider rejected the request.
	ErrSendFailed = errors.New("mail provider rejected the send")
)

const sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Config holds the mailer settings. An empty APIKey enables disabled mode.
type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
	AppURL    string
}

// Sender delivers invitation emails.
type Sender interface {
	SendInvitation(ctx context.Context, invitation *domain.Invitation) error
}

// SendGridSender implements Sender against the SendGrid v3 API.
type SendGridSender struct {
	cfg        Config
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSendGridSender creates a SendGridSender from the given config.
func NewSendGridSender(cfg Config, log *slog.Logger) *SendGridSender {
	if log == nil {
		log = slog.Default()
	}

	return &SendGridSender{
		cfg:        cfg,
		endpoint:   sendGridEndpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.With(slog.String("component", "mailer")),
	}
}

// Ensure SendGridSender implements Sender
var _ Sender = (*SendGridSender)(nil)

// sendGridRequest mirrors the SendGrid v3 mail/send payload.
type sendGridRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SendInvitation implements Sender.SendInvitation
func (s *SendGridSender) SendInvitation(ctx context.Context, invitation *domain.Invitation) error {
	if invitation.ToEmail == nil || *invitation.ToEmail == "" {
		return ErrNoRecipient
	}

	if s.cfg.APIKey == "" {
		s.logger.Info("mail delivery disabled, skipping send",
			slog.String("invitation_id", invitation.ID.String()),
			slog.String("to", *invitation.ToEmail))
		return nil
	}

	payload := sendGridRequest{
		Personalizations: []personalization{
			{To: []emailAddress{{Email: *invitation.ToEmail}}},
		},
		From: emailAddress{
			Email: s.cfg.FromEmail,
			Name:  s.cfg.FromName,
		},
		Subject: fmt.Sprintf("%s invited you to connect on Ours", invitation.FromUserName),
		Content: []content{
			{Type: "text/plain", Value: s.plainBody(invitation)},
			{Type: "text/html", Value: s.htmlBody(invitation)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call mail provider: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusAccepted {
		s.logger.Error("mail provider rejected send",
			slog.Int("status", resp.StatusCode),
			slog.String("invitation_id", invitation.ID.String()))
		return fmt.Errorf("%w: status %d", ErrSendFailed, resp.StatusCode)
	}

	s.logger.Info("invitation email sent",
		slog.String("invitation_id", invitation.ID.String()))
	return nil
}

// inviteLink builds the accept URL embedded in the email.
func (s *SendGridSender) inviteLink(invitation *domain.Invitation) string {
	return fmt.Sprintf("%s/invite/%s", s.cfg.AppURL, invitation.ConnectionCode)
}

func (s *SendGridSender) plainBody(invitation *domain.Invitation) string {
	body := fmt.Sprintf(
		"%s has invited you to share your journey together on Ours.\n\n",
		invitation.FromUserName)

	if invitation.PersonalMessage != "" {
		body += fmt.Sprintf("Their message: %q\n\n", invitation.PersonalMessage)
	}

	body += fmt.Sprintf(
		"Accept the invitation: %s\nOr enter this connection code in the app: %s\n\n"+
			"This invitation expires on %s.\n",
		s.inviteLink(invitation),
		invitation.ConnectionCode,
		invitation.ExpiresAt.Format("January 2, 2006"),
	)
	return body
}

func (s *SendGridSender) htmlBody(invitation *domain.Invitation) string {
	var message string
	if invitation.PersonalMessage != "" {
		message = fmt.Sprintf(
			`<blockquote style="color:#555;font-style:italic">%s</blockquote>`,
			html.EscapeString(invitation.PersonalMessage))
	}

	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:0 auto">
<h2 style="color:#E76F51">%s invited you to Ours</h2>
<p>%s has invited you to share your journey together on Ours.</p>
%s
<p style="text-align:center">
  <a href="%s" style="background:#E76F51;color:#fff;padding:12px 24px;border-radius:8px;text-decoration:none">Accept invitation</a>
</p>
<p>Or enter this connection code in the app: <strong>%s</strong></p>
<p style="color:#888;font-size:12px">This invitation expires on %s.</p>
</div>`,
		html.EscapeString(invitation.FromUserName),
		html.EscapeString(invitation.FromUserName),
		message,
		s.inviteLink(invitation),
		invitation.ConnectionCode,
		invitation.ExpiresAt.Format("January 2, 2006"),
	)
}
