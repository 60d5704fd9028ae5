package smtp

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"
)

// Message is a UTF-8 plain-text e-mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	Date    time.Time
}

// Bytes renders the message in RFC 5322 wire form with CRLF line endings.
// Non-ASCII subjects are Q-encoded.
func (m Message) Bytes() []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", m.From)
	header("To", strings.Join(m.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", m.Date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="UTF-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.Bytes()
}

// Send opens a session with d and delivers m to every recipient.
func Send(ctx context.Context, d Dialer, m Message) error {
	const op = "smtp.Send"
	if len(m.To) == 0 {
		return fmt.Errorf("%s: no recipients", op)
	}

	client, err := d.Dial(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("%s: mail from %s: %w", op, m.From, err)
	}
	for _, addr := range m.To {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("%s: rcpt to %s: %w", op, addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err := wc.Write(m.Bytes()); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("%s: data close: %w", op, err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}
