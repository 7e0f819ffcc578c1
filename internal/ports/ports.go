package ports

import (
	"context"

	"InvestingIdeas/internal/domain"
)

// PageFetcher retrieves raw markup for a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string, headers map[string]string) (string, error)
}

// LinkExtractor turns discovery-page markup into idea references.
type LinkExtractor interface {
	ExtractLinks(markup string) ([]domain.IdeaLink, error)
}

// CompanyExtractor pulls raw company candidates out of an idea page.
type CompanyExtractor interface {
	ExtractCandidates(markup string) ([]domain.Candidate, error)
}

// Normalizer cleans a candidate into a company name or rejects it.
type Normalizer interface {
	Clean(candidate domain.Candidate) (string, bool)
}

// RecordWriter persists the full, sorted output document.
type RecordWriter interface {
	WriteRecords(ctx context.Context, records []domain.IdeaRecord) error
}

// RecordRepository mirrors the output document into a database.
type RecordRepository interface {
	ReplaceAll(ctx context.Context, runID string, records []domain.IdeaRecord) error
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Reporter prints human-facing progress lines.
type Reporter interface {
	Printf(format string, v ...any)
}
