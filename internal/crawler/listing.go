package crawler

import (
	stderrors "errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/rafflemonitor/pkg/errors"
)

// ExtractOpenRaffles returns the detail URLs of every open raffle marker on
// the listing page, in document order and without duplicates. A marker whose
// product anchor cannot be resolved is reported in the returned error while
// the remaining markers are still extracted.
func (c *Crawler) ExtractOpenRaffles(doc *goquery.Document) ([]string, error) {
	sel := c.site.Selectors
	markers := doc.Find(sel.RaffleMarker)

	var urls []string
	var errs []error
	seen := make(map[string]struct{}, markers.Length())

	markers.Each(func(i int, marker *goquery.Selection) {
		link, err := c.resolveMarker(i, marker)
		if err != nil {
			errs = append(errs, err)
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		urls = append(urls, link)
	})

	c.log.Debug().
		Int("markers", markers.Length()).
		Int("urls", len(urls)).
		Int("errors", len(errs)).
		Msg("Listing extracted")

	return urls, stderrors.Join(errs...)
}

// resolveMarker walks from a raffle marker to its product block and returns
// the absolute URL of the block's locale anchor.
func (c *Crawler) resolveMarker(index int, marker *goquery.Selection) (string, error) {
	sel := c.site.Selectors
	subject := fmt.Sprintf("listing marker %d", index)

	block := marker.Parent().Find(sel.ProductBlock).First()
	if block.Length() == 0 {
		return "", errors.NewLookup(subject, fmt.Sprintf("missing product block %q", sel.ProductBlock))
	}

	anchorSelector := fmt.Sprintf("a[href*='%s']", c.site.LocalePrefix)
	anchor := block.Find(anchorSelector).First()
	if anchor.Length() == 0 {
		return "", errors.NewLookup(subject, fmt.Sprintf("missing anchor %q", anchorSelector))
	}

	href, _ := anchor.Attr("href")
	link, err := resolveURL(c.site.Origin, href)
	if err != nil {
		return "", errors.NewFormat(subject, "unresolvable anchor", err)
	}
	return link, nil
}
