// Package couponcode generates human-readable coupon codes of the form BDD-XXXXXX.
package couponcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	// Prefix starts every coupon code.
	Prefix   = "BDD-"
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	length   = 6
)

var pattern = regexp.MustCompile(`^BDD-[A-Z0-9]{6}$`)

// New returns a random code drawn from crypto/rand.
func New() (string, error) {
	const op = "couponcode.New"
	var b strings.Builder
	b.Grow(len(Prefix) + length)
	b.WriteString(Prefix)
	n := big.NewInt(int64(len(alphabet)))
	for range length {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String(), nil
}

// Normalize upper-cases and trims a code typed by a user.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code has the BDD-XXXXXX shape.
func Valid(code string) bool {
	return pattern.MatchString(code)
}
