// Package smtp sends the digest as an email with one attachment per artifact.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/hejijunhao/fwdigest/internal/notify"
)

const (
	defaultTimeout = 30 * time.Second

	// SSLPort is the submissions port; connections to it use implicit TLS.
	SSLPort = 465
)

// TLS policies accepted in Config.TLSPolicy.
const (
	PolicyNone          = "none"
	PolicyOpportunistic = "opportunistic"
	PolicyMandatory     = "mandatory"
)

// Config describes the relay and the envelope.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // defaults to Username
	To       []string

	// StartTLS selects PolicyMandatory when TLSPolicy is empty; otherwise
	// the session is plain text.
	StartTLS  bool
	TLSPolicy string

	// InsecureSkipVerify disables relay certificate checks.
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Notifier delivers digests over SMTP. Each Notify opens its own session.
type Notifier struct {
	cfg    Config
	policy mail.TLSPolicy
	now    func() time.Time
}

// New creates an SMTP notifier.
func New(cfg Config) (*Notifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp: host is required")
	}
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("smtp: at least one recipient is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp: sender address is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	policy, err := ParsePolicy(cfg.TLSPolicy, cfg.StartTLS)
	if err != nil {
		return nil, err
	}
	return &Notifier{cfg: cfg, policy: policy, now: time.Now}, nil
}

// ParsePolicy maps a policy name to a go-mail TLS policy. An empty name
// falls back to startTLS.
func ParsePolicy(name string, startTLS bool) (mail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		if startTLS {
			return mail.TLSMandatory, nil
		}
		return mail.NoTLS, nil
	case PolicyNone:
		return mail.NoTLS, nil
	case PolicyOpportunistic:
		return mail.TLSOpportunistic, nil
	case PolicyMandatory:
		return mail.TLSMandatory, nil
	default:
		return mail.NoTLS, fmt.Errorf("smtp: unknown tls policy %q", name)
	}
}

// implicitTLS reports whether the session is TLS from the first byte.
func (n *Notifier) implicitTLS() bool { return n.cfg.Port == SSLPort }

// authType picks PLAIN when the session is always encrypted. Otherwise the
// credentials are sent without the localhost-only guard, as SMTP relays
// without STARTTLS expect.
func (n *Notifier) authType() mail.SMTPAuthType {
	if n.implicitTLS() || n.policy == mail.TLSMandatory {
		return mail.SMTPAuthPlain
	}
	return mail.SMTPAuthPlainNoEnc
}

func (n *Notifier) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithTimeout(n.cfg.Timeout),
		mail.WithTLSPolicy(n.policy),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         n.cfg.Host,
			InsecureSkipVerify: n.cfg.InsecureSkipVerify, //nolint:gosec // opt-in
		}),
	}
	if n.implicitTLS() {
		opts = append(opts, mail.WithSSL())
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(n.authType()),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}
	// WithPort goes last so no other option resets it.
	opts = append(opts, mail.WithPort(n.cfg.Port))

	c, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp: client: %w", err)
	}
	return c, nil
}

// Notify sends d to every recipient in one message.
func (n *Notifier) Notify(ctx context.Context, d notify.Digest) error {
	msg, err := n.Message(d)
	if err != nil {
		return err
	}
	c, err := n.client()
	if err != nil {
		return err
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp: send via %s:%d: %w", n.cfg.Host, n.cfg.Port, err)
	}
	slog.Info("sent digest email", "to", strings.Join(n.cfg.To, ","), "attachments", len(d.Attachments))
	return nil
}

// Message renders d as a multipart message: a text body followed by one
// text/plain attachment per artifact.
func (n *Notifier) Message(d notify.Digest) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("smtp: from %q: %w", n.cfg.From, err)
	}
	if err := m.To(n.cfg.To...); err != nil {
		return nil, fmt.Errorf("smtp: to: %w", err)
	}

	subject := d.Subject
	if subject == "" {
		subject = notify.DefaultSubject
	}
	m.Subject(subject)
	m.SetDateWithValue(n.now())
	if d.RunID != "" {
		m.SetGenHeader(mail.Header("X-Run-Id"), d.RunID)
	}
	m.SetBodyString(mail.TypeTextPlain, d.Body)

	for _, a := range d.Attachments {
		if err := m.AttachReader(a.Name, bytes.NewReader(a.Data), mail.WithFileContentType(mail.TypeTextPlain)); err != nil {
			return nil, fmt.Errorf("smtp: attach %s: %w", a.Name, err)
		}
	}
	return m, nil
}

// Close is a no-op; sessions are per message.
func (n *Notifier) Close() error { return nil }
