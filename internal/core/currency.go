package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "USD"

var currencySymbols = map[string]string{
	"USD": "$",
	"ZAR": "R",
	"RWF": "RWF ",
}

// Settings holds the display currency and the optional spending cap.
// A zero cap means no cap is enforced.
type Settings struct {
	Currency string          `json:"currency"`
	Cap      decimal.Decimal `json:"cap"`
}

// DefaultSettings returns USD with no cap.
func DefaultSettings() Settings {
	return Settings{Currency: DefaultCurrency, Cap: decimal.Zero}
}

// Normalize fills defaults for missing values and clamps a negative cap.
func (s Settings) Normalize() Settings {
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	if s.Cap.IsNegative() {
		s.Cap = decimal.Zero
	}
	return s
}

// Validate rejects a negative cap.
func (s Settings) Validate() error {
	if s.Cap.IsNegative() {
		return ErrInvalidCap
	}
	return nil
}

// CurrencySymbol looks up the display symbol; unknown codes use "$".
func CurrencySymbol(code string) string {
	if sym, ok := currencySymbols[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return sym
	}
	return "$"
}

// FormatMoney prefixes the two-digit amount with the currency symbol.
func FormatMoney(symbol string, d decimal.Decimal) string {
	return symbol + FormatAmount(d)
}
