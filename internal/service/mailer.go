package service

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers account tokens out of band. Delivery itself is an external
// collaborator; only token generation and validation live in this service.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
	SendVerification(ctx context.Context, email, token string) error
}

// LogMailer writes tokens to the structured log instead of dispatching them.
// Default wiring for environments without a mail provider.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.logger.Info("password reset token issued",
		zap.String("email", email),
		zap.String("token", token),
	)
	return nil
}

func (m *LogMailer) SendVerification(_ context.Context, email, token string) error {
	m.logger.Info("verification token issued",
		zap.String("email", email),
		zap.String("token", token),
	)
	return nil
}
