package smtp

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTransport_From(t *testing.T) {
	tr := NewTransport(config.SMTP{SMTPUser: "apikey"}, newNoopLogger())
	assert.Equal(t, "apikey", tr.From())

	tr = NewTransport(config.SMTP{SMTPUser: "apikey", SMTPFrom: "deals@businessdailydeals.co.za"}, newNoopLogger())
	assert.Equal(t, "deals@businessdailydeals.co.za", tr.From())
}

func TestTransport_DialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, newNoopLogger())
	client, err := tr.Dial(context.Background())
	assert.Nil(t, client)
	assert.ErrorContains(t, err, "smtp.Dial: dial")
}

// fakeRelay answers EHLO without advertising STARTTLS.
func fakeRelay(t *testing.T) (host, port string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.WriteString(conn, "220 localhost ESMTP\r\n")
		buf := make([]byte, 512)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			switch line := string(buf[:n]); {
			case strings.HasPrefix(line, "EHLO"):
				_, _ = io.WriteString(conn, "250-localhost\r\n250 8BITMIME\r\n")
			case strings.HasPrefix(line, "QUIT"):
				_, _ = io.WriteString(conn, "221 bye\r\n")
				return
			default:
				_, _ = io.WriteString(conn, "250 ok\r\n")
			}
		}
	}()

	host, port, err = net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host, port
}

func TestTransport_DialRequiresStartTLS(t *testing.T) {
	host, port := fakeRelay(t)
	tr := NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, newNoopLogger())

	_, err := tr.Dial(context.Background())
	assert.ErrorContains(t, err, "does not support STARTTLS")
}
