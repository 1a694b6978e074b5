// Package nats publishes the digest on a NATS subject for downstream
// consumers.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hejijunhao/fwdigest/internal/notify"
)

const (
	// DefaultSubject is used when no subject is configured.
	DefaultSubject = "fwdigest.digest"
	// ConnectTimeout bounds the initial connection.
	ConnectTimeout = 10 * time.Second
	// PublishTimeout bounds the flush after publishing.
	PublishTimeout = 5 * time.Second
)

// Payload is the JSON body of a digest message. Attachment data is base64.
type Payload struct {
	RunID       string       `json:"run_id"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is one artifact in the payload.
type Attachment struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// Publisher publishes digests to NATS.
type Publisher struct {
	mu      sync.Mutex
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to natsURL. It fails fast when the server is
// unreachable.
func NewPublisher(natsURL, subject string) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	conn, err := nats.Connect(natsURL, nats.Name("fwdigest"), nats.Timeout(ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("nats: connect %s: %w", natsURL, err)
	}
	slog.Info("nats publisher initialized", "url", natsURL, "subject", subject)
	return &Publisher{conn: conn, subject: subject}, nil
}

// Msg builds the message for d without sending it.
func Msg(subject string, d notify.Digest) (*nats.Msg, error) {
	p := Payload{
		RunID:       d.RunID,
		Subject:     d.Subject,
		Body:        d.Body,
		Attachments: make([]Attachment, len(d.Attachments)),
	}
	for i, a := range d.Attachments {
		p.Attachments[i] = Attachment{Name: a.Name, Data: a.Data}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("nats: marshal digest: %w", err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set("x-run-id", d.RunID)
	msg.Header.Set("x-attachments", strconv.Itoa(len(d.Attachments)))
	msg.Header.Set("content-type", "application/json")
	return msg, nil
}

// Notify publishes d and flushes so the server has it before returning.
func (p *Publisher) Notify(ctx context.Context, d notify.Digest) error {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("nats: publisher closed")
	}

	msg, err := Msg(p.subject, d)
	if err != nil {
		return err
	}
	if err := conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats: publish: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()
	if err := conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats: flush: %w", err)
	}
	slog.Debug("published digest", "subject", p.subject, "run_id", d.RunID)
	return nil
}

// IsReady reports whether the connection is up.
func (p *Publisher) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil && p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Drain()
	p.conn = nil
	return err
}
