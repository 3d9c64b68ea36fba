package mail

import (
	"context"

	"github.com/dmitrijs2005/shareme/internal/logging"
)

// LogDispatcher accepts every message and only logs it. Used in development
// when no mail transport is configured.
type LogDispatcher struct {
	logger logging.Logger
}

func NewLogDispatcher(logger logging.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.With("module", "mail", "transport", "log")}
}

func (d *LogDispatcher) Send(ctx context.Context, msg *Message) error {
	d.logger.Info(ctx, "email accepted (not delivered)",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
