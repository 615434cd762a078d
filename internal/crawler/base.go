package crawler

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"sjsage522/rafflemonitor/internal/fetch"
	"sjsage522/rafflemonitor/logger"
	"sjsage522/rafflemonitor/pkg/errors"
)

// Crawler extracts raffle data from the listing and detail pages of one site.
// It holds no state between calls.
type Crawler struct {
	site SiteConfig
	log  *logger.Logger
}

// NewCrawler creates a new crawler
func NewCrawler(site SiteConfig) *Crawler {
	return &Crawler{
		site: site,
		log:  logger.ForCrawler(),
	}
}

// Site returns the crawler's site configuration
func (c *Crawler) Site() SiteConfig {
	return c.site
}

// ListOpenRaffles parses a fetched listing document and returns the detail
// URLs of the open raffles on it.
func (c *Crawler) ListOpenRaffles(doc *fetch.Document) ([]string, error) {
	parsed, err := c.createDocument(doc.Reader())
	if err != nil {
		return nil, err
	}
	return c.ExtractOpenRaffles(parsed)
}

// ParseRecord parses a fetched detail document into a RaffleItem.
func (c *Crawler) ParseRecord(doc *fetch.Document) (*RaffleItem, error) {
	parsed, err := c.createDocument(doc.Reader())
	if err != nil {
		return nil, err
	}
	return c.ExtractRecord(parsed, doc.URL)
}

// createDocument creates a goquery document from a reader
func (c *Crawler) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, errors.NewFormat("document", "HTML parsing failed", err)
	}
	return doc, nil
}

// resolveURL resolves href against base
func resolveURL(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// ownText returns the text nodes directly under the first element of s,
// ignoring text inside child elements.
func ownText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for n := s.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
	}
	return strings.TrimSpace(b.String())
}
