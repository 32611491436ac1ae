package service

import (
	"errors"
	"fmt"
	"strings"

	"golang-stock-sentiment/internal/stocknews/repository"
)

var (
	// ErrInvalidSymbol is returned when the requested ticker is blank.
	ErrInvalidSymbol = errors.New("symbol is required")
	// ErrFetchFailed marks failures of the news provider call.
	ErrFetchFailed = errors.New("news fetch failed")
)

// FetchError wraps a provider failure together with the provider's name.
type FetchError struct {
	Provider string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFetchFailed) hold for every FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// IsRateLimited reports whether err is a provider failure caused by rate limiting.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var providerErr *repository.ProviderError
	if errors.As(err, &providerErr) && providerErr.IsRateLimited() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests")
}
