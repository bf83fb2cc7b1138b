package listing

// Posting is one structured job listing extracted from a result page.
// Link is always non-empty and absolute; optional fields stay empty when
// the page does not carry them.
type Posting struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location,omitempty"`
	Link     string `json:"link"`
	PostedAt string `json:"posted_at,omitempty"`
}

// PageResult is the outcome of extracting a single result page, in
// document order.
type PageResult struct {
	Postings []Posting
	HasNext  bool
}

// Status is the terminal state of a scrape job.
type Status string

const (
	// StatusCompleted: every reachable page up to the cap was extracted.
	StatusCompleted Status = "completed"
	// StatusPartial: a page failed after at least one page succeeded;
	// already-collected postings are kept.
	StatusPartial Status = "partial"
	// StatusFailed: no page was collected.
	StatusFailed Status = "failed"
)

// Outcome aggregates a whole scrape job. Postings are concatenated in
// fetch order with duplicate links suppressed across pages.
type Outcome struct {
	Postings   []Posting `json:"jobs"`
	Pages      int       `json:"pages_visited"`
	Status     Status    `json:"status"`
	CapReached bool      `json:"cap_reached"`
	Error      string    `json:"error,omitempty"`
}

// Failed builds the terminal outcome for a job that collected nothing.
func Failed(err error) Outcome {
	out := Outcome{Status: StatusFailed, Postings: []Posting{}}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}
