package invitation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/admin-dashboard/internal/core/events"
)

// Notifier delivers tokens to their recipients. There is no mail transport;
// deliveries are written to the log for an operator to forward.
type Notifier struct {
	logger  *slog.Logger
	baseURL string
}

func NewNotifier(logger *slog.Logger, baseURL string) *Notifier {
	return &Notifier{
		logger:  logger,
		baseURL: baseURL,
	}
}

func (n *Notifier) HandleInvitationCreated(ctx context.Context, event events.Event) error {
	invite, ok := event.(*events.InvitationCreatedEvent)
	if !ok {
		n.logger.Error("invalid event type for invitation handler", "event_type", event.EventType())
		return fmt.Errorf("expected InvitationCreatedEvent, got %T", event)
	}

	n.logger.InfoContext(ctx, "invitation ready for delivery",
		"invitation_id", invite.InvitationID,
		"email", invite.Email,
		"organization_id", invite.OrganizationID,
		"link", fmt.Sprintf("%s/register?token=%s", n.baseURL, invite.Token),
		"expires_at", invite.ExpiresAt,
		"event_id", invite.EventID())
	return nil
}

func (n *Notifier) HandlePasswordResetRequested(ctx context.Context, event events.Event) error {
	reset, ok := event.(*events.PasswordResetRequestedEvent)
	if !ok {
		n.logger.Error("invalid event type for password reset handler", "event_type", event.EventType())
		return fmt.Errorf("expected PasswordResetRequestedEvent, got %T", event)
	}

	n.logger.InfoContext(ctx, "password reset ready for delivery",
		"user_id", reset.UserID,
		"email", reset.Email,
		"link", fmt.Sprintf("%s/reset-password?token=%s", n.baseURL, reset.Token),
		"expires_at", reset.ExpiresAt,
		"event_id", reset.EventID())
	return nil
}

func (n *Notifier) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeInvitationCreated, n.HandleInvitationCreated)
	eventBus.Subscribe(events.EventTypePasswordResetRequested, n.HandlePasswordResetRequested)

	n.logger.Info("notification handlers registered",
		"handlers", []string{events.EventTypeInvitationCreated, events.EventTypePasswordResetRequested})
}
