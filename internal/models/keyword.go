package models

import (
	"strings"
	"time"
)

// Keyword is a search term a user subscribes to.
type Keyword struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"createdAt"`
}

// KeywordRequest is the body of the keyword creation endpoint.
type KeywordRequest struct {
	Keyword string `json:"keyword" validate:"required,min=2,max=64"`
}

// NormalizeKeyword lower-cases and trims a keyword so subscriptions and deal tags compare equal.
func NormalizeKeyword(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// NormalizeKeywords normalises, drops empties and removes duplicates, keeping first occurrences.
func NormalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, k := range in {
		k = NormalizeKeyword(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
