package karriere

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobscraper/internal/core/listing"
)

var whitespace = regexp.MustCompile(`\s+`)

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// ParsePage extracts postings and the next-page signal from a rendered
// result document. Listings come back in document order; entries without
// a usable link are dropped. A page with zero listings is end-of-results,
// so HasNext is forced to false to keep the paginator from spinning on
// empty result pages.
func (s *Site) ParsePage(html, pageURL string) (listing.PageResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return listing.PageResult{}, err
	}

	base, _ := url.Parse(pageURL)

	var postings []listing.Posting
	doc.Find(s.profile.ListingSelector).Each(func(_ int, card *goquery.Selection) {
		if p, ok := s.parseCard(card, base); ok {
			postings = append(postings, p)
		}
	})

	if len(postings) == 0 {
		if fromLD := parseJSONLD(doc, base); len(fromLD) > 0 {
			postings = fromLD
		}
	}

	if len(postings) == 0 {
		return listing.PageResult{Postings: []listing.Posting{}, HasNext: false}, nil
	}
	return listing.PageResult{Postings: postings, HasNext: s.hasNext(doc)}, nil
}

func (s *Site) parseCard(card *goquery.Selection, base *url.URL) (listing.Posting, bool) {
	anchor := card.Find(s.profile.TitleSelector).First()
	href, _ := anchor.Attr("href")
	link := absolutize(base, href)
	if link == "" {
		return listing.Posting{}, false
	}

	p := listing.Posting{
		Title:    collapse(anchor.Text()),
		Company:  collapse(card.Find(s.profile.CompanySelector).First().Text()),
		Location: collapse(card.Find(s.profile.LocationSelector).First().Text()),
		Link:     link,
	}
	if p.Title == "" {
		return listing.Posting{}, false
	}

	date := card.Find(s.profile.DateSelector).First()
	if dt, ok := date.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
		p.PostedAt = strings.TrimSpace(dt)
	} else {
		p.PostedAt = collapse(date.Text())
	}
	return p, true
}

// hasNext reports whether the pagination-next control is present and
// enabled. A greyed-out control carries a disabled attribute, an
// aria-disabled marker or a disabled class variant.
func (s *Site) hasNext(doc *goquery.Document) bool {
	next := doc.Find(s.profile.NextSelector).First()
	if next.Length() == 0 {
		return false
	}
	if _, disabled := next.Attr("disabled"); disabled {
		return false
	}
	if v, ok := next.Attr("aria-disabled"); ok && v == "true" {
		return false
	}
	if cls, ok := next.Attr("class"); ok && strings.Contains(cls, "disabled") {
		return false
	}
	return true
}

func absolutize(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	return ref.String()
}

// JSON-LD fallback: some result variants render listings only through
// structured data. Accepts a single JobPosting, a list, an @graph wrapper
// or an ItemList of JobPosting elements.
func parseJSONLD(doc *goquery.Document, base *url.URL) []listing.Posting {
	var postings []listing.Posting
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return
		}
		walkJSONLD(payload, base, &postings)
	})
	return postings
}

func walkJSONLD(payload any, base *url.URL, out *[]listing.Posting) {
	switch t := payload.(type) {
	case []any:
		for _, item := range t {
			walkJSONLD(item, base, out)
		}
	case map[string]any:
		if isType(t["@type"], "JobPosting") {
			if p, ok := jobPostingFromLD(t, base); ok {
				*out = append(*out, p)
			}
			return
		}
		if graph, ok := t["@graph"].([]any); ok {
			walkJSONLD(graph, base, out)
		}
		if isType(t["@type"], "ItemList") {
			if elems, ok := t["itemListElement"].([]any); ok {
				for _, e := range elems {
					if m, ok := e.(map[string]any); ok {
						if item, ok := m["item"]; ok {
							walkJSONLD(item, base, out)
						} else {
							walkJSONLD(m, base, out)
						}
					}
				}
			}
		}
	}
}

func isType(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func jobPostingFromLD(m map[string]any, base *url.URL) (listing.Posting, bool) {
	p := listing.Posting{
		Title:    collapse(str(m["title"])),
		Link:     absolutize(base, str(m["url"])),
		PostedAt: strings.TrimSpace(str(m["datePosted"])),
	}
	if org, ok := m["hiringOrganization"].(map[string]any); ok {
		p.Company = collapse(str(org["name"]))
	}
	loc := m["jobLocation"]
	if arr, ok := loc.([]any); ok && len(arr) > 0 {
		loc = arr[0]
	}
	if locMap, ok := loc.(map[string]any); ok {
		if addr, ok := locMap["address"].(map[string]any); ok {
			p.Location = collapse(str(addr["addressLocality"]))
			if p.Location == "" {
				p.Location = collapse(str(addr["addressRegion"]))
			}
		}
	}
	if p.Link == "" || p.Title == "" {
		return listing.Posting{}, false
	}
	return p, true
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
