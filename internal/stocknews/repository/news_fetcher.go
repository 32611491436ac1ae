package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang-stock-sentiment/internal/stocknews/dto"
)

// NewsFetcher queries an external news provider for headlines about a ticker.
type NewsFetcher interface {
	Fetch(ctx context.Context, symbol string, aliases []string) ([]dto.CandidateHeadline, error)
	Name() string
}

// ProviderError is a non-successful answer from a news provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s returned status %d (%s): %s", e.Provider, e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, msg)
}

// IsRateLimited reports whether the provider refused the call because of its quota.
func (e *ProviderError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.Code == "rateLimited" ||
		strings.Contains(strings.ToLower(e.Message), "rate limit")
}

// BuildQuery ORs the quoted alias names with the quoted symbol.
func BuildQuery(symbol string, aliases []string) string {
	if len(aliases) == 0 {
		return quote(symbol)
	}
	terms := make([]string, 0, len(aliases)+1)
	for _, alias := range aliases {
		terms = append(terms, quote(alias))
	}
	terms = append(terms, quote(symbol))
	return "(" + strings.Join(terms, " OR ") + ")"
}

func quote(term string) string {
	return `"` + term + `"`
}
