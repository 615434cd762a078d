package crawler

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"

	"sjsage522/rafflemonitor/helpers"
	"sjsage522/rafflemonitor/pkg/errors"
)

// Field names used as error subjects
const (
	fieldPicture     = "picture"
	fieldHeading     = "heading"
	fieldReference   = "reference"
	fieldPrice       = "price"
	fieldClosingDate = "closing_date"
	fieldSizes       = "sizes"
)

var validate = validator.New()

// ExtractRecord extracts the RaffleItem of one detail page. Every field is
// extracted independently and all failures are reported together; no item is
// returned unless every field succeeded.
func (c *Crawler) ExtractRecord(doc *goquery.Document, detailURL string) (*RaffleItem, error) {
	base, err := url.Parse(detailURL)
	if err != nil {
		return nil, errors.NewFormat("url", fmt.Sprintf("invalid detail URL %q", detailURL), err)
	}

	item := &RaffleItem{URL: detailURL}
	var errs []error

	if item.PictureURL, err = c.extractPicture(doc, base); err != nil {
		errs = append(errs, err)
	}
	if item.Brand, item.Model, item.ReferenceCode, err = c.extractBrandModelReference(doc); err != nil {
		errs = append(errs, err)
	}
	if item.Price, item.Currency, err = c.extractPrice(doc); err != nil {
		errs = append(errs, err)
	}
	if item.ClosingMonth, item.ClosingDay, item.ClosingHour, item.ClosingTimezone, err = c.extractClosingDate(doc); err != nil {
		errs = append(errs, err)
	}
	if item.MinSize, item.MaxSize, item.SizeCountry, err = c.extractSizes(doc); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, stderrors.Join(errs...)
	}

	if err := validate.Struct(item); err != nil {
		return nil, errors.NewValidation(detailURL, "extracted record is incomplete", err)
	}

	return item, nil
}

func (c *Crawler) extractPicture(doc *goquery.Document, base *url.URL) (string, error) {
	sel := c.site.Selectors.Picture
	img := doc.Find(sel).First()
	if img.Length() == 0 {
		return "", errors.NewLookup(fieldPicture, fmt.Sprintf("no element matches %q", sel))
	}

	src, ok := img.Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return "", errors.NewFormat(fieldPicture, "image has no src", nil)
	}

	picture, err := resolveURL(base, src)
	if err != nil {
		return "", errors.NewFormat(fieldPicture, "unresolvable src", err)
	}
	return picture, nil
}

// extractBrandModelReference reads "Brand - Model" from the page heading and
// the reference code from the muted text next to it.
func (c *Crawler) extractBrandModelReference(doc *goquery.Document) (brand, model, reference string, err error) {
	sel := c.site.Selectors
	heading := doc.Find(sel.Heading).First()
	if heading.Length() == 0 {
		return "", "", "", errors.NewLookup(fieldHeading, fmt.Sprintf("no element matches %q", sel.Heading))
	}

	text := ownText(heading)
	parts := strings.Split(text, "-")
	if len(parts) != 2 {
		return "", "", "", errors.NewFormat(fieldHeading,
			fmt.Sprintf("expected \"brand - model\", got %d parts in %q", len(parts), text), nil)
	}
	brand = helpers.CollapseSpace(parts[0])
	model = helpers.CollapseSpace(parts[1])
	if brand == "" || model == "" {
		return "", "", "", errors.NewFormat(fieldHeading, fmt.Sprintf("empty brand or model in %q", text), nil)
	}

	ref := heading.Parent().Find(sel.Reference).First()
	if ref.Length() == 0 {
		return "", "", "", errors.NewLookup(fieldReference,
			fmt.Sprintf("no element matches %q next to the heading", sel.Reference))
	}
	reference = helpers.CollapseSpace(ref.Text())
	if reference == "" {
		return "", "", "", errors.NewFormat(fieldReference, "reference code is empty", nil)
	}

	return brand, model, reference, nil
}

// extractPrice splits the displayed price into value and currency. Only the
// symbols in currencySymbols are accepted.
func (c *Crawler) extractPrice(doc *goquery.Document) (string, Currency, error) {
	sel := c.site.Selectors.Price
	priceSel := doc.Find(sel).First()
	if priceSel.Length() == 0 {
		return "", "", errors.NewLookup(fieldPrice, fmt.Sprintf("no element matches %q", sel))
	}

	text := ownText(priceSel)
	if text == "" {
		text = strings.TrimSpace(priceSel.Text())
	}
	return parsePrice(text)
}

func parsePrice(text string) (string, Currency, error) {
	if text == "" {
		return "", "", errors.NewFormat(fieldPrice, "price text is empty", nil)
	}

	symbol, size := utf8.DecodeRuneInString(text)
	currency, ok := currencySymbols[symbol]
	if !ok {
		return "", "", errors.NewFormat(fieldPrice, fmt.Sprintf("unrecognized currency %q in %q", string(symbol), text), nil)
	}

	value := strings.TrimSpace(text[size:])
	if _, err := ParseAmount(value); err != nil {
		return "", "", errors.NewFormat(fieldPrice, "price value is not numeric", err)
	}
	return value, currency, nil
}

// extractClosingDate finds the innermost "Raffle closes on ..." list item and
// decomposes it. An enclosing item that only holds the marker through a
// nested item is skipped.
func (c *Crawler) extractClosingDate(doc *goquery.Document) (month, day, hour, timezone string, err error) {
	sel := c.site.Selectors
	hasMarker := func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), sel.ClosingDateMarker)
	}
	item := doc.Find(sel.ClosingDate).FilterFunction(func(i int, s *goquery.Selection) bool {
		return hasMarker(i, s) && s.Find(sel.ClosingDate).FilterFunction(hasMarker).Length() == 0
	}).First()
	if item.Length() == 0 {
		return "", "", "", "", errors.NewLookup(fieldClosingDate,
			fmt.Sprintf("no %q contains %q", sel.ClosingDate, sel.ClosingDateMarker))
	}

	return parseClosingDate(helpers.CollapseSpace(item.Text()))
}

// parseClosingDate decomposes text shaped like
// "Raffle closes on June 21st, 2021 at 18:00 CEST." by word position: the
// first comma segment holds month and day at words 3 and 4, the second holds
// the hour at word 2 followed by the timezone.
func parseClosingDate(text string) (month, day, hour, timezone string, err error) {
	fail := func(format string, args ...any) (string, string, string, string, error) {
		msg := fmt.Sprintf(format, args...)
		return "", "", "", "", errors.NewFormat(fieldClosingDate, fmt.Sprintf("%s in %q", msg, text), nil)
	}

	dateSegment, err := helpers.GetSplitPart(text, ",", 0)
	if err != nil {
		return fail("missing date segment")
	}
	timeSegment, err := helpers.GetSplitPart(text, ",", 1)
	if err != nil {
		return fail("missing time segment")
	}

	if month, err = helpers.GetField(dateSegment, 3); err != nil {
		return fail("missing month")
	}
	dayToken, err := helpers.GetField(dateSegment, 4)
	if err != nil {
		return fail("missing day")
	}
	day = helpers.TrimLetterSuffix(dayToken)
	if !isDigits(day) {
		return fail("day %q is not numeric", dayToken)
	}

	hourToken, err := helpers.GetField(timeSegment, 2)
	if err != nil {
		return fail("missing hour")
	}
	hour, _, _ = strings.Cut(hourToken, ":")
	if !isDigits(hour) {
		return fail("hour %q is not numeric", hourToken)
	}

	// the timezone sits at word 4; some variants drop the word between hour
	// and timezone, leaving it as the last word instead
	zoneToken, err := helpers.GetField(timeSegment, 4)
	if err != nil {
		words := strings.Fields(timeSegment)
		if len(words) < 4 {
			return fail("missing timezone")
		}
		zoneToken = words[len(words)-1]
	}
	timezone = strings.Trim(zoneToken, ".,;:()[]")
	if timezone == "" {
		return fail("empty timezone")
	}

	return month, day, hour, timezone, nil
}

// extractSizes reads the first and last option of the size selector.
func (c *Crawler) extractSizes(doc *goquery.Document) (minSize, maxSize, country string, err error) {
	sel := c.site.Selectors
	selectSel := doc.Find(sel.SizeSelect).First()
	if selectSel.Length() == 0 {
		return "", "", "", errors.NewLookup(fieldSizes, fmt.Sprintf("no element matches %q", sel.SizeSelect))
	}

	options := selectSel.Find(sel.SizeOption)
	if options.Length() == 0 {
		return "", "", "", errors.NewLookup(fieldSizes, fmt.Sprintf("no option matches %q", sel.SizeOption))
	}

	minSize, country, err = parseSizeOption(options.First().Text())
	if err != nil {
		return "", "", "", err
	}
	maxSize, _, err = parseSizeOption(options.Last().Text())
	if err != nil {
		return "", "", "", err
	}
	return minSize, maxSize, country, nil
}

// parseSizeOption splits an option label on its middle dot. The part after
// the dot is "<size> <country>:" ("US 7 · 40 EU:"); when it only carries the
// country, the size is the last word before the dot ("38 · EU:").
func parseSizeOption(text string) (size, country string, err error) {
	text = helpers.CollapseSpace(text)
	parts := strings.Split(text, "·")
	if len(parts) != 2 {
		return "", "", errors.NewFormat(fieldSizes, fmt.Sprintf("expected one \"·\" in %q", text), nil)
	}

	before := strings.Fields(parts[0])
	after := strings.Fields(parts[1])

	switch {
	case len(after) >= 2:
		size, country = after[0], helpers.TrimLastRune(after[1])
	case len(after) == 1 && len(before) > 0:
		size, country = before[len(before)-1], helpers.TrimLastRune(after[0])
	default:
		return "", "", errors.NewFormat(fieldSizes, fmt.Sprintf("no size in %q", text), nil)
	}

	if country == "" {
		return "", "", errors.NewFormat(fieldSizes, fmt.Sprintf("no sizing country in %q", text), nil)
	}
	return size, country, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
