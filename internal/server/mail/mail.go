// Package mail renders and delivers share notifications.
//
// A Dispatcher sends one Message synchronously; Dispatch runs it on its own
// goroutine and reports the outcome on a channel, so callers can decide what
// to do only once the transport has answered.
package mail

import (
	"context"
	"fmt"
)

// Message is a single notification email with a plain-text and an HTML body.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Dispatcher delivers a message through some transport. A nil error means
// the transport accepted the message.
type Dispatcher interface {
	Send(ctx context.Context, msg *Message) error
}

// Dispatch sends msg through d asynchronously. The returned channel receives
// exactly one value (nil on acceptance) and is then closed. A panicking
// dispatcher is reported as an error.
func Dispatch(ctx context.Context, d Dispatcher, msg *Message) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("mail dispatcher panic: %v", r)
			}
		}()
		done <- d.Send(ctx, msg)
	}()
	return done
}
