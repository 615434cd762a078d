// Package fetch retrieves listing and detail documents over HTTP.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	browser "github.com/EDDYCJY/fake-useragent"
	"golang.org/x/net/html/charset"

	"sjsage522/rafflemonitor/logger"
	"sjsage522/rafflemonitor/pkg/errors"
)

// fallbackUserAgent is used if the generator returns nothing.
const fallbackUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Safari/605.1.15"

// Identity is the request identity presented to the source site. It is
// generated once per process and never changes afterwards.
type Identity struct {
	UserAgent string
}

// NewIdentity picks a desktop macOS or Linux user agent.
func NewIdentity() Identity {
	var ua string
	if rand.IntN(2) == 0 {
		ua = browser.MacOSX()
	} else {
		ua = browser.Linux()
	}
	ua = strings.TrimSpace(ua)
	if ua == "" {
		ua = fallbackUserAgent
	}
	return Identity{UserAgent: ua}
}

// Document is a successfully fetched page, already decoded to UTF-8.
type Document struct {
	URL        string
	StatusCode int
	Body       []byte
}

// Reader returns a reader over the document body
func (d *Document) Reader() io.Reader {
	return bytes.NewReader(d.Body)
}

// Fetcher issues GET requests with a fixed identity. It does not retry.
type Fetcher struct {
	client   *http.Client
	identity Identity
	log      *logger.Logger
}

// New creates a fetcher. A nil client gets a default one with timeout.
func New(client *http.Client, identity Identity, timeout time.Duration) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{
		client:   client,
		identity: identity,
		log:      logger.ForFetcher(),
	}
}

// Identity returns the identity this fetcher presents
func (f *Fetcher) Identity() Identity {
	return f.identity
}

// Fetch retrieves url. Transport failures come back as ErrorTypeNetwork,
// any status other than 200 as ErrorTypeStatus.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errors.NewNetwork(url, "failed to create request", err)
	}
	req.Header.Set("User-Agent", f.identity.UserAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.NewNetwork(url, "failed to fetch URL", err)
	}
	defer resp.Body.Close()

	f.log.Debug().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("HTTP request completed")

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errors.NewStatus(url, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetwork(url, "failed to read response body", err)
	}

	body, err := toUTF8(bodyBytes, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, errors.NewFormat(url, "failed to decode body", err)
	}

	return &Document{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// toUTF8 converts body to UTF-8 using the Content-Type header and content sniffing.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if strings.EqualFold(name, "utf-8") {
		return body, nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, encoding.NewDecoder().Reader(bytes.NewReader(body))); err != nil {
		return nil, fmt.Errorf("convert %s body to UTF-8: %w", name, err)
	}
	return buf.Bytes(), nil
}
