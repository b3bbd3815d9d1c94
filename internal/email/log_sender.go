package email

import (
	"context"
	"log/slog"
)

// LogSender logs the email instead of sending it. Not meant for
// production use, the addresses and full contents end up in the logs.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, from, to, subject, body string) error {
	s.logger.Info("send email",
		"from", from,
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
