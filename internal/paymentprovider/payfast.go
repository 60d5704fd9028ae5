// Package paymentprovider talks to the PayFast hosted checkout: it signs outgoing
// checkout forms and verifies Instant Transaction Notifications (ITN).
package paymentprovider

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SimonStapletonCotton/businessdailydeals-sub001/internal/config"
)

var (
	ErrBadSignature = errors.New("payfast: signature mismatch")
	ErrBadMerchant  = errors.New("payfast: merchant id mismatch")
	ErrNotValid     = errors.New("payfast: notification rejected by validate endpoint")
)

// Field is a single form field. PayFast signatures depend on field order,
// so forms are kept as ordered slices rather than maps.
type Field struct {
	Key   string
	Value string
}

// Form is an ordered list of fields.
type Form []Field

// Get returns the first value stored under key.
func (f Form) Get(key string) string {
	for _, kv := range f {
		if kv.Key == key {
			return kv.Value
		}
	}
	return ""
}

// Map flattens the form.
func (f Form) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, kv := range f {
		m[kv.Key] = kv.Value
	}
	return m
}

// Keys returns the field names in order.
func (f Form) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, kv := range f {
		keys = append(keys, kv.Key)
	}
	return keys
}

// Client holds the merchant credentials.
type Client struct {
	merchantID  string
	merchantKey string
	passphrase  string
	processURL  string
	validateURL string
	httpClient  *http.Client
}

// NewClient creates a PayFast client.
func NewClient(cfg config.PayFast) *Client {
	return &Client{
		merchantID:  cfg.MerchantID,
		merchantKey: cfg.MerchantKey,
		passphrase:  cfg.Passphrase,
		processURL:  cfg.ProcessURL,
		validateURL: cfg.ValidateURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) MerchantID() string  { return c.merchantID }
func (c *Client) MerchantKey() string { return c.merchantKey }
func (c *Client) ProcessURL() string  { return c.processURL }

// Sign appends the signature field to form.
func (c *Client) Sign(form Form) Form {
	return append(form, Field{Key: "signature", Value: Signature(form, c.passphrase)})
}

// Signature signs an outgoing checkout form: the lowercase hex MD5 of the url-encoded
// non-empty fields in order, followed by the passphrase when one is configured. The
// signature field itself is skipped.
func Signature(form Form, passphrase string) string {
	parts := make([]string, 0, len(form)+1)
	for _, kv := range form {
		if kv.Key == "signature" || kv.Value == "" {
			continue
		}
		parts = append(parts, kv.Key+"="+encode(strings.TrimSpace(kv.Value)))
	}
	return digest(parts, passphrase)
}

// ITNSignature signs a received notification. Every field before signature counts,
// empty ones included, with values taken as received.
func ITNSignature(form Form, passphrase string) string {
	parts := make([]string, 0, len(form)+1)
	for _, kv := range form {
		if kv.Key == "signature" {
			break
		}
		parts = append(parts, kv.Key+"="+encode(kv.Value))
	}
	return digest(parts, passphrase)
}

func digest(parts []string, passphrase string) string {
	if passphrase != "" {
		parts = append(parts, "passphrase="+encode(strings.TrimSpace(passphrase)))
	}
	sum := md5.Sum([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(sum[:])
}

func encode(v string) string {
	return url.QueryEscape(v)
}

// ParseForm decodes an x-www-form-urlencoded body keeping the field order.
func ParseForm(body string) (Form, error) {
	const op = "paymentprovider.ParseForm"
	var form Form
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		form = append(form, Field{Key: key, Value: value})
	}
	return form, nil
}

// VerifyITN checks the signature and merchant of a notification.
func (c *Client) VerifyITN(form Form) error {
	if form.Get("signature") != ITNSignature(form, c.passphrase) {
		return ErrBadSignature
	}
	if form.Get("merchant_id") != c.merchantID {
		return ErrBadMerchant
	}
	return nil
}

// ValidateITN posts the received body back to PayFast, which answers VALID or INVALID.
func (c *Client) ValidateITN(ctx context.Context, body string) error {
	const op = "paymentprovider.ValidateITN"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.validateURL, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	answer, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if strings.TrimSpace(string(answer)) != "VALID" {
		return ErrNotValid
	}
	return nil
}
