package email

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sender delivers verification codes to users.
type Sender interface {
	SendVerificationCode(ctx context.Context, toEmail, code string, expiresAt time.Time) error
}

// LogSender is used when SMTP is not configured. It logs the code instead of
// delivering it, which keeps local development working without a mail server.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendVerificationCode(_ context.Context, toEmail, code string, expiresAt time.Time) error {
	s.logger.Info("email delivery disabled, logging verification code",
		zap.String("to", toEmail),
		zap.String("code", code),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}
