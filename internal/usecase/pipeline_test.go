package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InvestingIdeas/internal/config"
	"InvestingIdeas/internal/domain"
	"InvestingIdeas/internal/infrastructure/fetch"
	"InvestingIdeas/internal/infrastructure/parser"
	"InvestingIdeas/internal/normalize"
)

const discoveryURL = "https://simplywall.st/discover/investing-ideas"

type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	headers map[string]map[string]string
}

func (f *fakeFetcher) Fetch(_ context.Context, pageURL string, headers map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headers == nil {
		f.headers = map[string]map[string]string{}
	}
	f.headers[pageURL] = headers
	page, ok := f.pages[pageURL]
	if !ok {
		return "", &fetch.Error{URL: pageURL, StatusCode: 500, Cause: errors.New("status 500")}
	}
	return page, nil
}

type memoryWriter struct {
	records []domain.IdeaRecord
	calls   int
}

func (w *memoryWriter) WriteRecords(_ context.Context, records []domain.IdeaRecord) error {
	w.calls++
	w.records = append([]domain.IdeaRecord(nil), records...)
	return nil
}

type memoryRepo struct {
	runID   string
	records []domain.IdeaRecord
	err     error
}

func (r *memoryRepo) ReplaceAll(_ context.Context, runID string, records []domain.IdeaRecord) error {
	r.runID = runID
	r.records = records
	return r.err
}

type memoryNotifier struct{ digests []string }

func (n *memoryNotifier) PublishDigest(_ context.Context, digest string) error {
	n.digests = append(n.digests, digest)
	return nil
}

type lines struct {
	mu  sync.Mutex
	out []string
}

func (l *lines) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = append(l.out, fmt.Sprintf(format, v...))
}

func site() config.SiteConfig {
	return config.SiteConfig{
		BaseURL:          "https://simplywall.st",
		DiscoveryURL:     discoveryURL,
		IdeaPathPrefix:   "/discover/investing-ideas/",
		IdeaURLSuffix:    "/global",
		TitleSelector:    "p.font-serif",
		StockPathPattern: "/stocks/",
		MarketCapMarker:  "Market Cap:",
	}
}

func newTestPipeline(t *testing.T, fetcher *fakeFetcher, writer *memoryWriter, workers int) (*Pipeline, *lines) {
	t.Helper()

	links, err := parser.NewLinkExtractor(site())
	require.NoError(t, err)
	reg, err := parser.NewDefaultRegistry(site())
	require.NoError(t, err)

	reporter := &lines{}
	p := NewPipeline(PipelineDeps{
		Fetcher:          fetcher,
		Links:            links,
		Companies:        parser.NewCompanyExtractor(reg),
		Normalizer:       normalize.New(),
		Writer:           writer,
		Reporter:         reporter,
		DiscoveryURL:     discoveryURL,
		DiscoveryHeaders: map[string]string{"User-Agent": "Mozilla/5.0"},
		IdeaHeaders:      map[string]string{"User-Agent": "Chrome"},
		Workers:          workers,
	})
	return p, reporter
}

const discoveryPage = `
<html><body>
  <a href="/discover/investing-ideas/2/semis/global"><p class="font-serif">semiconductors</p><span>+12 companies</span></a>
  <a href="/discover/investing-ideas/1/banks/global"><p class="font-serif">Banks</p></a>
  <a href="/discover/investing-ideas/2/semis/global"><p class="font-serif">semiconductors</p></a>
  <a href="/discover/investing-ideas/3/ev/us"><p class="font-serif">EV</p></a>
</body></html>`

const semisPage = `
<html><body>
  <a href="/stocks/us/semiconductors/nasdaq-nvda/nvidia"><span>NVIDIA</span><span>Market Cap: US$3.2t</span></a>
  <a href="/stocks/us/semiconductors/nasdaq-amd/amd"><span>Advanced Micro Devices</span><span>12.5%</span></a>
  <div><h4>Intel Designs chips</h4><p>Market Cap: 90</p></div>
  <div><h4>NVIDIA</h4><p>Market Cap: 3200</p></div>
</body></html>`

func TestPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{
		discoveryURL: discoveryPage,
		"https://simplywall.st/discover/investing-ideas/2/semis/global": semisPage,
	}}
	writer := &memoryWriter{}
	repo := &memoryRepo{}
	notifier := &memoryNotifier{}

	p, reporter := newTestPipeline(t, fetcher, writer, 1)
	p.repository = repo
	p.notifier = notifier

	summary, err := p.Run(context.Background(), "run-1")
	require.NoError(t, err)

	require.Len(t, writer.records, 2)
	assert.Equal(t, domain.IdeaRecord{
		Title:     "Banks",
		Link:      "https://simplywall.st/discover/investing-ideas/1/banks/global",
		Companies: []string{},
	}, writer.records[0])
	assert.Equal(t, domain.IdeaRecord{
		Title:     "semiconductors",
		Link:      "https://simplywall.st/discover/investing-ideas/2/semis/global",
		Companies: []string{"NVIDIA", "Advanced Micro Devices", "Intel"},
	}, writer.records[1])

	assert.Equal(t, 2, summary.Ideas)
	assert.Equal(t, 3, summary.Companies)
	assert.Equal(t, []string{"Banks"}, summary.FailedIdeas)

	assert.Equal(t, "run-1", repo.runID)
	assert.Equal(t, writer.records, repo.records)
	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "2 ideas, 3 companies")
	assert.Contains(t, notifier.digests[0], "- Banks")

	assert.Equal(t, []string{
		"Scraping companies for semiconductors",
		"Scraping companies for Banks",
		"Found 2 investing ideas.",
		"- Banks -> https://simplywall.st/discover/investing-ideas/1/banks/global",
		"- semiconductors -> https://simplywall.st/discover/investing-ideas/2/semis/global",
	}, reporter.out)

	assert.Equal(t, "Mozilla/5.0", fetcher.headers[discoveryURL]["User-Agent"])
	assert.Equal(t, "Chrome", fetcher.headers["https://simplywall.st/discover/investing-ideas/2/semis/global"]["User-Agent"])
}

func TestPipelineDiscoveryFailureIsFatal(t *testing.T) {
	t.Parallel()

	writer := &memoryWriter{}
	p, _ := newTestPipeline(t, &fakeFetcher{pages: map[string]string{}}, writer, 1)

	_, err := p.Run(context.Background(), "run")
	require.Error(t, err)

	var fetchErr *fetch.Error
	assert.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 0, writer.calls)
}

func TestPipelineParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	var discovery strings.Builder
	pages := map[string]string{}
	for i := 0; i < 25; i++ {
		link := fmt.Sprintf("https://simplywall.st/discover/investing-ideas/%d/idea/global", i)
		fmt.Fprintf(&discovery, `<a href="%s"><p class="font-serif">Idea %c%02d</p></a>`, link, 'z'-rune(i%3), i)
		pages[link] = fmt.Sprintf(`<a href="/stocks/x/%d">Company %c Holdings</a>`, i, 'A'+rune(i))
	}
	pages[discoveryURL] = discovery.String()

	sequential := &memoryWriter{}
	p, _ := newTestPipeline(t, &fakeFetcher{pages: pages}, sequential, 1)
	_, err := p.Run(context.Background(), "seq")
	require.NoError(t, err)

	parallel := &memoryWriter{}
	p, _ = newTestPipeline(t, &fakeFetcher{pages: pages}, parallel, 8)
	_, err = p.Run(context.Background(), "par")
	require.NoError(t, err)

	require.Len(t, sequential.records, 25)
	assert.Equal(t, sequential.records, parallel.records)
	for i := 1; i < len(parallel.records); i++ {
		prev := strings.ToLower(parallel.records[i-1].Title)
		cur := strings.ToLower(parallel.records[i].Title)
		assert.LessOrEqual(t, prev, cur)
	}
}

func TestPipelineRepositoryFailureAfterWrite(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{discoveryURL: `<p>nothing</p>`}}
	writer := &memoryWriter{}
	p, _ := newTestPipeline(t, fetcher, writer, 1)
	p.repository = &memoryRepo{err: errors.New("db down")}

	_, err := p.Run(context.Background(), "run")
	require.Error(t, err)
	assert.Equal(t, 1, writer.calls)
	assert.Empty(t, writer.records)
}

func TestPipelineCancelledRunWritesNothing(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{pages: map[string]string{discoveryURL: discoveryPage}}
	writer := &memoryWriter{}
	p, _ := newTestPipeline(t, fetcher, writer, 1)

	_, err := p.Run(ctx, "run")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, writer.calls)
}

func TestPipelineWithoutFetcher(t *testing.T) {
	t.Parallel()

	_, err := NewPipeline(PipelineDeps{}).Run(context.Background(), "run")
	assert.ErrorIs(t, err, ErrNoFetcher)
}
