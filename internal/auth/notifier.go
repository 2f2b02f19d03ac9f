package auth

import (
	"context"
	"log/slog"
)

// Notifier delivers password reset codes to the account owner.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LogNotifier writes codes to the service log. Used until a mail provider is
// configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendOTP(ctx context.Context, email, code string) error {
	n.logger.InfoContext(ctx, "password reset code issued",
		slog.String("email", email),
		slog.String("code", code))
	return nil
}
