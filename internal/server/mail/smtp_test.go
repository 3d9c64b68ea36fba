package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/shareme/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

type fakeSMTP struct {
	sent []*gomail.Msg
	err  error
}

func (f *fakeSMTP) DialAndSendWithContext(ctx context.Context, msgs ...*gomail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msgs...)
	return nil
}

func withFakeSMTP(t *testing.T, fake *fakeSMTP, newErr error) *SMTPConfig {
	t.Helper()
	var gotCfg SMTPConfig
	orig := newSMTPClient
	newSMTPClient = func(cfg SMTPConfig) (smtpSender, error) {
		gotCfg = cfg
		if newErr != nil {
			return nil, newErr
		}
		return fake, nil
	}
	t.Cleanup(func() { newSMTPClient = orig })
	return &gotCfg
}

func testMessage() *Message {
	return &Message{
		From:    "alice@example.com",
		To:      "bob@example.com",
		Subject: "A file has been shared with you",
		Text:    "alice@example.com shared a file with you",
		HTML:    "<p>hello</p>",
	}
}

func TestSMTPDispatcher_Send(t *testing.T) {
	fake := &fakeSMTP{}
	gotCfg := withFakeSMTP(t, fake, nil)

	cfg := SMTPConfig{Host: "smtp-relay.example.com", Port: 587, Username: "u", Password: "p"}
	d := NewSMTPDispatcher(cfg, logging.Discard())
	require.NoError(t, d.Send(context.Background(), testMessage()))

	assert.Equal(t, cfg, *gotCfg)
	require.Len(t, fake.sent, 1)

	var buf bytes.Buffer
	_, err := fake.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "alice@example.com")
	assert.Contains(t, raw, "bob@example.com")
	assert.Contains(t, raw, "Subject: A file has been shared with you")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
}

func TestSMTPDispatcher_Errors(t *testing.T) {
	t.Run("transport", func(t *testing.T) {
		withFakeSMTP(t, &fakeSMTP{err: errors.New("454 try later")}, nil)
		err := NewSMTPDispatcher(SMTPConfig{Host: "h", Port: 25}, logging.Discard()).Send(context.Background(), testMessage())
		assert.ErrorContains(t, err, "smtp send: 454 try later")
	})

	t.Run("client", func(t *testing.T) {
		withFakeSMTP(t, nil, errors.New("bad host"))
		err := NewSMTPDispatcher(SMTPConfig{}, logging.Discard()).Send(context.Background(), testMessage())
		assert.ErrorContains(t, err, "create smtp client: bad host")
	})

	t.Run("bad address", func(t *testing.T) {
		fake := &fakeSMTP{}
		withFakeSMTP(t, fake, nil)
		msg := testMessage()
		msg.To = "not an address"
		err := NewSMTPDispatcher(SMTPConfig{Host: "h", Port: 25}, logging.Discard()).Send(context.Background(), msg)
		assert.ErrorContains(t, err, "invalid recipient address")
		assert.Empty(t, fake.sent)
	})
}
