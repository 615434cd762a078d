package crawler

import (
	"sjsage522/rafflemonitor/config"
)

// DefaultSelectors are the selectors of releases.43einhalb.com
func DefaultSelectors() Selectors {
	return Selectors{
		RaffleMarker: "span.display-variation.raffle",
		ProductBlock: "div.product-image",

		Picture:           `img[itemprop="associatedMedia"]`,
		Heading:           "h1.h3",
		Reference:         "span.text-muted",
		Price:             "span.price",
		ClosingDate:       "li",
		ClosingDateMarker: "Raffle closes on",
		SizeSelect:        "select#selectVariation",
		SizeOption:        "option.text-muted.dropdown-item",
	}
}

// CreateCrawler creates the crawler for the configured site
func CreateCrawler(cfg *config.Config) (*Crawler, error) {
	origin, err := cfg.SiteOrigin()
	if err != nil {
		return nil, err
	}

	c := NewCrawler(SiteConfig{
		Origin:       origin,
		LocalePrefix: cfg.LocalePrefix,
		Selectors:    DefaultSelectors(),
	})

	c.log.Info().
		Str("origin", origin.String()).
		Str("locale_prefix", cfg.LocalePrefix).
		Msg("Created crawler")

	return c, nil
}
