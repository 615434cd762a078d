// Package crawlertest renders listing and detail pages shaped like the
// monitored site, for tests.
package crawlertest

import (
	"fmt"
	"strings"
)

// Product is one entry on a listing page
type Product struct {
	Href string
	// Open marks the product with the open raffle marker
	Open bool
}

// ListingHTML renders a listing page with the given products in order.
func ListingHTML(products ...Product) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Releases</title></head><body><div class="row">`)
	for i, p := range products {
		b.WriteString(`<div class="col-6 col-md-4 product">`)
		if p.Open {
			b.WriteString(`<span class="display-variation raffle">Raffle</span>`)
		} else {
			b.WriteString(`<span class="display-variation closed">Closed</span>`)
		}
		fmt.Fprintf(&b, `<div class="product-image mb-2 mb-md-3 bg-gray-100">`+
			`<a href="/de/product/%d">DE</a><a href="%s"><img src="/media/%d.jpg"></a></div>`, i, p.Href, i)
		fmt.Fprintf(&b, `<div class="product-name">Product %d</div>`, i)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// Detail describes a detail page
type Detail struct {
	Picture     string
	Heading     string
	Reference   string
	Price       string
	ClosingDate string
	Sizes       []string
}

// DefaultDetail returns a complete, well-formed detail page description
func DefaultDetail() Detail {
	return Detail{
		Picture:     "https://releases.43einhalb.com/media/air-max-1.jpg",
		Heading:     "Nike - Air Max 1 Anniversary",
		Reference:   "DQ3989-100",
		Price:       "€159.99",
		ClosingDate: "Raffle closes on June 21st, 2021 at 18:00 CEST.",
		Sizes:       []string{"US 6 · 38 EU:", "US 6.5 · 39 EU:", "US 7 · 40 EU:"},
	}
}

// DetailHTML renders a detail page. Empty fields leave their element out.
func DetailHTML(d Detail) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Detail</title></head><body>`)
	b.WriteString(`<span class="text-muted small">Free shipping</span>`)
	if d.Picture != "" {
		fmt.Fprintf(&b, `<div class="gallery"><img class="img-fluid" itemprop="associatedMedia" src="%s" alt=""></div>`, d.Picture)
	}
	b.WriteString(`<div class="product-header">`)
	if d.Heading != "" {
		fmt.Fprintf(&b, `<h1 class="h3">%s</h1>`, d.Heading)
	}
	if d.Reference != "" {
		fmt.Fprintf(&b, `<span class="text-muted">%s</span>`, d.Reference)
	}
	b.WriteString(`</div>`)
	if d.Price != "" {
		fmt.Fprintf(&b, `<span class="price h3 m-0 py-1">%s</span>`, d.Price)
	}
	b.WriteString(`<ul class="raffle-info"><li>Only one entry per person</li>`)
	if d.ClosingDate != "" {
		fmt.Fprintf(&b, `<li>%s</li>`, d.ClosingDate)
	}
	b.WriteString(`</ul>`)
	if d.Sizes != nil {
		b.WriteString(`<select id="selectVariation" class="custom-select"><option value="">Choose size</option>`)
		for i, s := range d.Sizes {
			fmt.Fprintf(&b, `<option class="text-muted dropdown-item" value="%d">%s</option>`, i, s)
		}
		b.WriteString(`</select>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}
