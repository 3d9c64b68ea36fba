package mail

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shareme/internal/logging"
	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds relay settings. Authentication is used only when
// Username is set; TLS is negotiated with STARTTLS when the server offers it.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*gomail.Msg) error
}

// newSMTPClient is a seam for tests.
var newSMTPClient = func(cfg SMTPConfig) (smtpSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	return gomail.NewClient(cfg.Host, opts...)
}

// SMTPDispatcher sends messages through an SMTP relay. A new connection is
// dialed per message.
type SMTPDispatcher struct {
	cfg    SMTPConfig
	logger logging.Logger
}

func NewSMTPDispatcher(cfg SMTPConfig, logger logging.Logger) *SMTPDispatcher {
	return &SMTPDispatcher{cfg: cfg, logger: logger.With("module", "mail", "transport", "smtp")}
}

func (d *SMTPDispatcher) Send(ctx context.Context, msg *Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}

	client, err := newSMTPClient(d.cfg)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	d.logger.Info(ctx, "email sent", "to", msg.To, "host", d.cfg.Host)
	return nil
}

func buildMsg(msg *Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
