package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the ISO code derived from the price symbol
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
)

// currencySymbols maps the leading price rune to its currency
var currencySymbols = map[rune]Currency{
	'€': CurrencyEUR,
	'$': CurrencyUSD,
}

// RaffleItem is the record extracted from one detail page. URL is its
// identity. Values are kept as displayed on the page.
type RaffleItem struct {
	URL           string   `json:"url" validate:"required,url"`
	PictureURL    string   `json:"picture_url" validate:"required,url"`
	Brand         string   `json:"brand" validate:"required"`
	Model         string   `json:"model" validate:"required"`
	ReferenceCode string   `json:"reference_code" validate:"required"`
	Price         string   `json:"price" validate:"required"`
	Currency      Currency `json:"currency" validate:"required,oneof=EUR USD"`

	ClosingMonth    string `json:"closing_month" validate:"required"`
	ClosingDay      string `json:"closing_day" validate:"required,numeric"`
	ClosingHour     string `json:"closing_hour" validate:"required,numeric"`
	ClosingTimezone string `json:"closing_timezone" validate:"required"`

	MinSize     string `json:"min_size" validate:"required"`
	MaxSize     string `json:"max_size" validate:"required"`
	SizeCountry string `json:"size_country" validate:"required"`
}

// Amount returns the price as a decimal
func (r *RaffleItem) Amount() (decimal.Decimal, error) {
	return ParseAmount(r.Price)
}

// ParseAmount parses a displayed price value. "1,299.99", "1.299,99" and
// "189,99" are all accepted: when both separators appear, the last one is
// the decimal separator.
func ParseAmount(value string) (decimal.Decimal, error) {
	v := strings.TrimSpace(value)
	comma := strings.LastIndex(v, ",")
	dot := strings.LastIndex(v, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		v = strings.ReplaceAll(v, ".", "")
		v = strings.Replace(v, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		v = strings.ReplaceAll(v, ",", "")
	case comma >= 0:
		v = strings.ReplaceAll(v, ",", ".")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %q is not numeric: %w", value, err)
	}
	return d, nil
}

// Selectors contains CSS selectors for the listing and detail pages
type Selectors struct {
	// Listing page
	RaffleMarker string
	ProductBlock string

	// Detail page
	Picture           string
	Heading           string
	Reference         string
	Price             string
	ClosingDate       string
	ClosingDateMarker string
	SizeSelect        string
	SizeOption        string
}

// SiteConfig describes the monitored site
type SiteConfig struct {
	Origin       *url.URL
	LocalePrefix string
	Selectors    Selectors
}
