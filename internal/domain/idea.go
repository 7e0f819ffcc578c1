package domain

// Method tags the heuristic that produced a candidate.
type Method string

const (
	// MethodAnchor extracts names from links to stock detail pages.
	MethodAnchor Method = "A"
	// MethodPattern extracts names from text preceding a "Market Cap:" marker.
	MethodPattern Method = "B"
)

// IdeaLink references one idea page found on the discovery page.
// The (Title, URL) pair is its identity.
type IdeaLink struct {
	Title string
	URL   string
}

// Candidate is an uncleaned company name pulled from an idea page.
type Candidate struct {
	Text   string
	Method Method
}

// IdeaRecord is the persisted shape of one idea.
type IdeaRecord struct {
	Title     string   `json:"title"`
	Link      string   `json:"link"`
	Companies []string `json:"companies"`
}

// IdeaResult is the outcome of processing one idea page. A failed result
// still carries a record with an empty company list.
type IdeaResult struct {
	Record IdeaRecord
	Err    error
}

// Failed reports whether fetching or extraction failed for the idea.
func (r IdeaResult) Failed() bool {
	return r.Err != nil
}

// RunSummary describes a finished scrape.
type RunSummary struct {
	RunID       string
	Ideas       int
	FailedIdeas []string
	Companies   int
	OutputPath  string
}
