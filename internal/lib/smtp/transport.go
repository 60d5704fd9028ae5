package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/lib/sl"
)

const (
	implicitTLSPort = "465"
	dialTimeout     = 10 * time.Second
)

// Transport dials the configured relay. Port 465 uses implicit TLS, any other
// port must offer STARTTLS. Credentials go over PLAIN auth once encrypted.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

// NewTransport returns a Transport for cfg.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log.With(slog.String("smtp_host", cfg.SMTPHost))}
}

// From returns the configured sender, falling back to the login user.
func (t *Transport) From() string {
	if t.cfg.SMTPFrom != "" {
		return t.cfg.SMTPFrom
	}
	return t.cfg.SMTPUser
}

// Dial opens an encrypted, authenticated session.
func (t *Transport) Dial(ctx context.Context) (Client, error) {
	const op = "smtp.Dial"
	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)
	tlsConfig := &tls.Config{ServerName: t.cfg.SMTPHost, MinVersion: tls.VersionTLS12}

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%s: dial %s: %w", op, addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	implicit := t.cfg.SMTPPort == implicitTLSPort
	if implicit {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: handshake: %w", op, err)
	}

	if !implicit {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			t.abort(client)
			return nil, fmt.Errorf("%s: server does not support STARTTLS", op)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			t.abort(client)
			return nil, fmt.Errorf("%s: starttls: %w", op, err)
		}
	}

	if t.cfg.SMTPUser != "" {
		if err := client.Auth(smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)); err != nil {
			t.abort(client)
			return nil, fmt.Errorf("%s: auth: %w", op, err)
		}
	}
	return client, nil
}

func (t *Transport) abort(client *smtp.Client) {
	if err := client.Close(); err != nil {
		t.log.Warn("failed to close smtp session", sl.Err(err))
	}
}
