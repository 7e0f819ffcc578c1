package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"InvestingIdeas/internal/domain"
	"InvestingIdeas/internal/ports"
)

const previewSize = 10

// ErrNoFetcher is returned when the pipeline is run without a page fetcher.
var ErrNoFetcher = errors.New("page fetcher is not configured")

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Fetcher    ports.PageFetcher
	Links      ports.LinkExtractor
	Companies  ports.CompanyExtractor
	Normalizer ports.Normalizer
	Writer     ports.RecordWriter
	Repository ports.RecordRepository
	Notifier   ports.Notifier
	Reporter   ports.Reporter
	Logger     *slog.Logger

	DiscoveryURL     string
	DiscoveryHeaders map[string]string
	IdeaHeaders      map[string]string
	OutputPath       string
	Workers          int
}

// Pipeline implements the discover, extract and assemble workflow.
type Pipeline struct {
	fetcher    ports.PageFetcher
	links      ports.LinkExtractor
	companies  ports.CompanyExtractor
	normalizer ports.Normalizer
	writer     ports.RecordWriter
	repository ports.RecordRepository
	notifier   ports.Notifier
	reporter   ports.Reporter
	logger     *slog.Logger

	discoveryURL     string
	discoveryHeaders map[string]string
	ideaHeaders      map[string]string
	outputPath       string
	workers          int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		fetcher:          deps.Fetcher,
		links:            deps.Links,
		companies:        deps.Companies,
		normalizer:       deps.Normalizer,
		writer:           deps.Writer,
		repository:       deps.Repository,
		notifier:         deps.Notifier,
		reporter:         deps.Reporter,
		logger:           deps.Logger,
		discoveryURL:     deps.DiscoveryURL,
		discoveryHeaders: deps.DiscoveryHeaders,
		ideaHeaders:      deps.IdeaHeaders,
		outputPath:       deps.OutputPath,
		workers:          workers,
	}
}

// Run scrapes every idea and writes the sorted document. A discovery failure
// aborts before anything is written; idea failures degrade to empty company lists.
func (p *Pipeline) Run(ctx context.Context, runID string) (domain.RunSummary, error) {
	summary := domain.RunSummary{RunID: runID, OutputPath: p.outputPath}
	if p.fetcher == nil {
		return summary, ErrNoFetcher
	}

	markup, err := p.fetcher.Fetch(ctx, p.discoveryURL, p.discoveryHeaders)
	if err != nil {
		return summary, fmt.Errorf("fetch discovery page: %w", err)
	}

	links, err := p.links.ExtractLinks(markup)
	if err != nil {
		return summary, fmt.Errorf("extract idea links: %w", err)
	}
	p.debug("discovered ideas", "count", len(links))

	results, err := p.processAll(ctx, links)
	if err != nil {
		return summary, fmt.Errorf("process ideas: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("run interrupted: %w", err)
	}

	records := make([]domain.IdeaRecord, 0, len(results))
	for _, res := range results {
		records = append(records, res.Record)
		summary.Companies += len(res.Record.Companies)
		if res.Failed() {
			summary.FailedIdeas = append(summary.FailedIdeas, res.Record.Title)
		}
	}
	SortRecords(records)
	summary.Ideas = len(records)

	p.printf("Found %d investing ideas.", len(records))
	for i, rec := range records {
		if i == previewSize {
			break
		}
		p.printf("- %s -> %s", rec.Title, rec.Link)
	}

	if p.writer != nil {
		if err := p.writer.WriteRecords(ctx, records); err != nil {
			return summary, fmt.Errorf("write output: %w", err)
		}
	}

	if p.repository != nil {
		if err := p.repository.ReplaceAll(ctx, runID, records); err != nil {
			return summary, fmt.Errorf("persist snapshot: %w", err)
		}
	}

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, buildDigestMessage(summary)); err != nil {
			return summary, fmt.Errorf("publish digest: %w", err)
		}
	}

	return summary, nil
}

// processAll keeps results in discovery order regardless of worker count.
func (p *Pipeline) processAll(ctx context.Context, links []domain.IdeaLink) ([]domain.IdeaResult, error) {
	results := make([]domain.IdeaResult, len(links))

	if p.workers == 1 {
		for i, link := range links {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = p.processIdea(ctx, link)
		}
		return results, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = p.processIdea(gCtx, link)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) processIdea(ctx context.Context, link domain.IdeaLink) domain.IdeaResult {
	p.printf("Scraping companies for %s", link.Title)

	record := domain.IdeaRecord{Title: link.Title, Link: link.URL, Companies: []string{}}

	markup, err := p.fetcher.Fetch(ctx, link.URL, p.ideaHeaders)
	if err != nil {
		return p.failed(record, err)
	}

	candidates, err := p.companies.ExtractCandidates(markup)
	if err != nil {
		return p.failed(record, err)
	}

	record.Companies = MergeCompanies(candidates, p.normalizer)
	p.debug("idea processed", "title", link.Title, "candidates", len(candidates), "companies", len(record.Companies))
	return domain.IdeaResult{Record: record}
}

func (p *Pipeline) failed(record domain.IdeaRecord, err error) domain.IdeaResult {
	if p.logger != nil {
		p.logger.Warn("idea processing failed", "title", record.Title, "link", record.Link, "error", err)
	}
	return domain.IdeaResult{Record: record, Err: err}
}

func (p *Pipeline) printf(format string, args ...any) {
	if p.reporter != nil {
		p.reporter.Printf(format, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func buildDigestMessage(summary domain.RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Investing ideas refreshed: %d ideas, %d companies\n", summary.Ideas, summary.Companies)
	if len(summary.FailedIdeas) > 0 {
		fmt.Fprintf(&b, "Failed (%d):\n", len(summary.FailedIdeas))
		for _, title := range summary.FailedIdeas {
			fmt.Fprintf(&b, "- %s\n", title)
		}
	}
	if summary.OutputPath != "" {
		fmt.Fprintf(&b, "Output: %s\n", summary.OutputPath)
	}
	return b.String()
}
