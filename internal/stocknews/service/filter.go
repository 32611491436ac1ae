package service

import (
	"strings"
	"time"

	"golang-stock-sentiment/pkg/utils"
)

// DefaultMaxNewsAge is the age beyond which an article is no longer recent.
const DefaultMaxNewsAge = 14 * 24 * time.Hour

// genericTitlePatterns are boilerplate market-wrap headlines that mention many tickers.
var genericTitlePatterns = []string{
	"10 things that will decide",
	"market action on monday",
	"market action on tuesday",
	"market action on wednesday",
}

// IsRelevant reports whether title mentions symbol or one of its aliases, ignoring case.
// Generic market-wrap headlines are never relevant.
func IsRelevant(title, symbol string, aliases []string) bool {
	lower := strings.ToLower(title)

	for _, pattern := range genericTitlePatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}

	if symbol != "" && utils.ContainsFold(title, symbol) {
		return true
	}
	for _, alias := range aliases {
		if alias != "" && utils.ContainsFold(title, alias) {
			return true
		}
	}
	return false
}

// IsRecent reports whether publishedAt (YYYY-MM-DDTHH:MM:SSZ) is less than 14 days old.
// Unparseable timestamps are not recent.
func IsRecent(publishedAt string) bool {
	return IsRecentAt(publishedAt, utils.TimeNowUTC(), DefaultMaxNewsAge)
}

// IsRecentAt is IsRecent against an explicit clock and maximum age.
func IsRecentAt(publishedAt string, now time.Time, maxAge time.Duration) bool {
	published, err := utils.ParseUTC(publishedAt)
	if err != nil {
		return false
	}
	return now.Sub(published) < maxAge
}
