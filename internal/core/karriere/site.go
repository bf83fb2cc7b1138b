// Package karriere implements the site-specific document structure of
// karriere.at result pages: search URL shape, listing selectors and the
// pagination-next control. Navigation and orchestration live elsewhere so
// this parsing logic can be swapped or tested on static HTML.
package karriere

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Profile holds the selectors and URL shape the extractor works
// against. The defaults target karriere.at; a YAML file can override
// individual fields when the site markup shifts between deploys.
type Profile struct {
	BaseURL string `yaml:"base_url"`

	ListingSelector  string `yaml:"listing_selector"`
	TitleSelector    string `yaml:"title_selector"`
	CompanySelector  string `yaml:"company_selector"`
	LocationSelector string `yaml:"location_selector"`
	DateSelector     string `yaml:"date_selector"`
	NextSelector     string `yaml:"next_selector"`

	// ReadySelector marks a result page as rendered enough to extract.
	ReadySelector string `yaml:"ready_selector"`
}

func DefaultProfile() Profile {
	return Profile{
		BaseURL:          "https://www.karriere.at/jobs",
		ListingSelector:  ".m-jobsList__item, [data-qa='jobsListItem']",
		TitleSelector:    "a[href*='/jobs/'], h2 a",
		CompanySelector:  ".m-jobsListItem__company, [data-qa='company-name']",
		LocationSelector: ".m-jobsListItem__locations, [data-qa='job-location']",
		DateSelector:     ".m-jobsListItem__date, time[datetime]",
		NextSelector:     ".m-pagination__button--next, [data-qa='paginationNext']",
		ReadySelector:    ".m-jobsList, [data-qa='jobsList']",
	}
}

// LoadProfile overlays the defaults with fields from a YAML file. Empty
// path returns the defaults unchanged.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("site profile: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("site profile %s: %w", path, err)
	}
	return p, nil
}

// Site computes URLs and parses result pages for one profile.
type Site struct {
	profile Profile
}

func New(profile Profile) *Site { return &Site{profile: profile} }

// ReadySelector exposes the readiness condition for the fetcher.
func (s *Site) ReadySelector() string { return s.profile.ReadySelector }

// SearchURL builds the result URL for a field/region query. Page 1 is
// the bare path; later pages carry a page query parameter.
func (s *Site) SearchURL(field, region string, page int) string {
	u := s.profile.BaseURL + "/" + url.PathEscape(field) + "/" + url.PathEscape(region)
	if page > 1 {
		u += "?page=" + strconv.Itoa(page)
	}
	return u
}

// NextURL advances the page query parameter on the current URL. The
// transform is deterministic: pagination is driven by URL, never by
// clicking the next control, so re-running a job walks the same pages.
func (s *Site) NextURL(current string, next int) string {
	u, err := url.Parse(current)
	if err != nil {
		return current + "?page=" + strconv.Itoa(next)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(next))
	u.RawQuery = q.Encode()
	return u.String()
}
