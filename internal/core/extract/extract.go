package extract

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"jobscraper/internal/core/karriere"
	"jobscraper/internal/core/listing"
	"jobscraper/internal/logger"
)

// Extractor maps the page's current rendered document to a page of
// postings. It only reads the page; pagination state lives in the
// paginator.
type Extractor struct {
	page playwright.Page
	site *karriere.Site
	log  *logger.Logger
}

func New(page playwright.Page, site *karriere.Site) *Extractor {
	return &Extractor{page: page, site: site, log: logger.New("Extractor")}
}

// Extract reads the current page content and parses it. Zero listings on
// a page that loaded fine is end-of-results, not an error.
func (e *Extractor) Extract(ctx context.Context) (listing.PageResult, error) {
	if err := ctx.Err(); err != nil {
		return listing.PageResult{}, err
	}
	html, err := e.page.Content()
	if err != nil {
		return listing.PageResult{}, fmt.Errorf("read page content: %w", err)
	}
	res, err := e.site.ParsePage(html, e.page.URL())
	if err != nil {
		return listing.PageResult{}, err
	}
	e.log.LogDebugf("extracted %d postings (has_next=%v)", len(res.Postings), res.HasNext)
	return res, nil
}
