package fiat

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency describes how amounts in a fiat currency are displayed.
type Currency struct {
	Code         string
	SymbolPrefix string
	SymbolSuffix string
}

var currencies = []Currency{
	{Code: "USD", SymbolPrefix: "$"},
	{Code: "EUR", SymbolSuffix: "€"},
	{Code: "GBP", SymbolPrefix: "£"},
	{Code: "JPY", SymbolPrefix: "¥"},
}

// Currencies returns the display table of all known currencies.
func Currencies() []Currency {
	list := make([]Currency, len(currencies))
	copy(list, currencies)

	return list
}

// DefaultCodes returns the codes the rate cache tracks when not configured otherwise.
func DefaultCodes() []string {
	codes := make([]string, 0, len(currencies))
	for _, c := range currencies {
		codes = append(codes, c.Code)
	}

	return codes
}

func lookup(code string) (Currency, bool) {
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}

	return Currency{}, false
}

// Supported reports whether code is in the currency table.
func Supported(code string) bool {
	_, ok := lookup(code)
	return ok
}

// Prefix returns the symbol shown before an amount, or "" if there is none.
func Prefix(code string) string {
	c, _ := lookup(code)
	return c.SymbolPrefix
}

// Suffix returns the symbol shown after an amount, or "" if there is none.
func Suffix(code string) string {
	c, _ := lookup(code)
	return c.SymbolSuffix
}

var printer = message.NewPrinter(language.English)

// FormatSats renders an amount as "1,234 sats". Millisatoshi amounts are
// rounded to whole satoshis.
func FormatSats(amount int64, msat bool) string {
	sats := amount

	if msat {
		sats = decimal.New(amount, -3).Round(0).IntPart()
	}

	return printer.Sprintf("%d sats", sats)
}
