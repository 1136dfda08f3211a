package notifications

import (
	"context"

	"github.com/CarlosPavajeau/cetus/pkg/enums"
	"github.com/CarlosPavajeau/cetus/pkg/logger"
)

// LogMailer writes outbound mail to the log instead of a provider. It is the
// default in dev and test environments; wiring a real provider replaces it in
// cmd/api only.
type LogMailer struct {
	logg *logger.Logger
}

func NewLogMailer(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

func (m *LogMailer) Send(ctx context.Context, recipient string, template enums.NotificationTemplate, payload []byte) error {
	ctx = m.logg.WithFields(ctx, map[string]any{
		"recipient": recipient,
		"template":  string(template),
		"payload":   string(payload),
	})
	m.logg.Info(ctx, "mail delivered to log sink")
	return nil
}
