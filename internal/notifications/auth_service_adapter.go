package notifications

import (
	"context"

	"tally/internal/auth"
)

// AuthServiceAdapter implements the auth.Notifier interface and adapts calls
// to the delivery pipeline.
type AuthServiceAdapter struct {
	service Service
}

// NewAuthServiceAdapter creates a new adapter for account notifications
func NewAuthServiceAdapter(service Service) *AuthServiceAdapter {
	return &AuthServiceAdapter{service: service}
}

// SendVerifyCode implements the auth.Notifier interface
func (a *AuthServiceAdapter) SendVerifyCode(ctx context.Context, channel auth.Channel, purpose auth.Purpose, target, code string) error {
	return a.service.PublishVerifyCode(ctx, NotificationChannel(channel), string(purpose), target, code)
}

// SendWelcome implements the auth.Notifier interface
func (a *AuthServiceAdapter) SendWelcome(ctx context.Context, name, email string) error {
	return a.service.PublishWelcome(ctx, name, email)
}
