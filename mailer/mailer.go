// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package mailer renders and delivers outbound email.
//
// Sender is the transport. Mailjet delivers through the Mailjet v3.1 send API.
// Log writes messages to slog when no provider is configured. Recorder keeps
// them in memory for tests.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mailjet/mailjet-apiv3-go"
)

type Message struct {
	To       string
	ToName   string
	Subject  string
	HTML     string
	Text     string
	Category string
}

type PrizeNotification struct {
	Name             string
	Email            string
	PropertyAddress  string
	PrizeTitle       string
	PrizeDescription string
	PrizeImageURL    string
}

type Verification struct {
	Email           string
	PropertyAddress string
	URL             string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailjet sends through the Mailjet API.
type Mailjet struct {
	client   *mailjet.Client
	from     string
	fromName string
}

func NewMailjet(apiKey, secretKey, from string) *Mailjet {
	return &Mailjet{
		client:   mailjet.NewMailjetClient(apiKey, secretKey),
		from:     from,
		fromName: "Scan for a Prize",
	}
}

func (m *Mailjet) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	messages := mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{{
		From: &mailjet.RecipientV31{Email: m.from, Name: m.fromName},
		To: &mailjet.RecipientsV31{
			mailjet.RecipientV31{Email: msg.To, Name: msg.ToName},
		},
		Subject:  msg.Subject,
		TextPart: msg.Text,
		HTMLPart: msg.HTML,
		CustomID: msg.Category,
	}}}

	if _, err := m.client.SendMailV31(&messages); err != nil {
		return fmt.Errorf("mailjet send failed: %w", err)
	}
	slog.Info("email sent", "category", msg.Category, "to", msg.To)
	return nil
}

// Log writes messages to a logger instead of sending them. Bodies can hold
// one-time links, so they are only logged at debug level.
type Log struct {
	Logger *slog.Logger // nil uses slog.Default()
}

func (l Log) Send(ctx context.Context, msg Message) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "email not sent, no mail provider configured",
		"category", msg.Category,
		"to", msg.To,
		"subject", msg.Subject,
	)
	logger.DebugContext(ctx, "unsent email body", "to", msg.To, "text", msg.Text)
	return nil
}

// Recorder keeps every message in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// New picks Mailjet when credentials are present, Log otherwise.
func New(apiKey, secretKey, from string) Sender {
	if apiKey == "" || secretKey == "" {
		return Log{}
	}
	return NewMailjet(apiKey, secretKey, from)
}
