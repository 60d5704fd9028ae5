// Package smtp delivers plain-text mail through an authenticated relay.
package smtp

import (
	"context"
	"io"
)

// Client is the subset of *smtp.Client a delivery needs.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer opens authenticated sessions with the relay.
type Dialer interface {
	Dial(ctx context.Context) (Client, error)
	// From is the envelope and header sender address.
	From() string
}
