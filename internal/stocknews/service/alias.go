package service

import (
	"strings"

	"golang-stock-sentiment/internal/entity"
)

// AliasTable maps an uppercase ticker to alternate company names. It is built once
// at startup and never modified afterwards.
type AliasTable struct {
	aliases map[string][]string
}

// DefaultAliases returns the built-in alias mapping for the supported NSE tickers.
func DefaultAliases() map[string][]string {
	return map[string][]string{
		"RELIANCE":   {"Reliance Industries", "RIL", "Mukesh Ambani"},
		"TCS":        {"Tata Consultancy Services", "TCS Ltd"},
		"HDFCBANK":   {"HDFC Bank", "Housing Development Finance Corporation"},
		"INFY":       {"Infosys", "Infosys Limited"},
		"WIPRO":      {"Wipro Limited", "Wipro Ltd"},
		"ITC":        {"ITC Limited", "Indian Tobacco Company"},
		"BHARTIARTL": {"Bharti Airtel", "Airtel"},
		"SBIN":       {"State Bank of India", "SBI"},
		"ICICIBANK":  {"ICICI Bank"},
		"HINDUNILVR": {"Hindustan Unilever", "HUL"},
	}
}

// NewAliasTable layers the sources in order: defaults, then stock rows, then config overrides.
// A later source replaces the alias list of a ticker entirely.
func NewAliasTable(defaults map[string][]string, stocks []entity.Stock, overrides map[string][]string) *AliasTable {
	t := &AliasTable{aliases: make(map[string][]string)}
	for symbol, names := range defaults {
		t.set(symbol, names)
	}
	for _, stock := range stocks {
		if len(stock.Aliases) == 0 {
			continue
		}
		t.set(stock.Code, stock.Aliases)
	}
	for symbol, names := range overrides {
		t.set(symbol, names)
	}
	return t
}

func (t *AliasTable) set(symbol string, names []string) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			cleaned = append(cleaned, name)
		}
	}
	t.aliases[strings.ToUpper(strings.TrimSpace(symbol))] = cleaned
}

// Lookup returns a copy of the aliases of symbol, or an empty slice for unknown tickers.
func (t *AliasTable) Lookup(symbol string) []string {
	if t == nil {
		return []string{}
	}
	names := t.aliases[strings.ToUpper(symbol)]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Len is the number of tickers with aliases.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.aliases)
}
