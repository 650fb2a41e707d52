// Package translator turns CiNii Research pages into bibliographic items.
//
// A Translator classifies a loaded page, lists search results for selection,
// and imports the RIS export of each selected record. Every network and user
// interaction goes through the collaborators in Config, so the whole flow runs
// against fakes in tests.
package translator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/cinii-translator/models"
	"github.com/dtnitsch/cinii-translator/pkg/detector"
	"github.com/dtnitsch/cinii-translator/pkg/results"
	"github.com/dtnitsch/cinii-translator/pkg/ris"
)

var (
	// ErrFetch wraps any failure to retrieve a page or its RIS export.
	ErrFetch = errors.New("fetch failed")
	// ErrNotRecordPage is returned when scraping a URL that is not /crid/<digits>.
	ErrNotRecordPage = errors.New("not a record page")
	// ErrSelectionCancelled may be returned by a Selector when the user backs out.
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Metadata describes the translator to hosts.
type Metadata struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	Target   string `yaml:"target" json:"target"`
	Priority int    `yaml:"priority" json:"priority"`
}

var Info = Metadata{
	ID:       "46291dc3-5cbd-47b7-8af4-d009078186f6",
	Label:    "CiNii",
	Target:   `https://cir\.nii\.ac\.jp`,
	Priority: 100,
}

const risSuffix = ".ris"

type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
}

type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Selector asks the user which results to import. A nil or empty selection,
// or ErrSelectionCancelled, means the user declined.
type Selector interface {
	SelectItems(ctx context.Context, set *results.Set) ([]string, error)
}

// Importer parses citation text and hands each record to its handler.
type Importer interface {
	SetString(text string)
	SetHandler(h ris.ItemHandler)
	Translate(ctx context.Context) error
}

// ImporterFactory returns a fresh Importer for each record page.
type ImporterFactory func() Importer

// ItemSink receives completed items and owns them afterwards.
type ItemSink interface {
	Commit(ctx context.Context, item *models.Item) error
}

// ItemSinkFunc adapts a function to ItemSink.
type ItemSinkFunc func(ctx context.Context, item *models.Item) error

func (f ItemSinkFunc) Commit(ctx context.Context, item *models.Item) error {
	return f(ctx, item)
}

type Config struct {
	Host        string
	Documents   DocumentFetcher
	Text        TextFetcher
	Selector    Selector
	NewImporter ImporterFactory
	Logger      *slog.Logger
}

type Translator struct {
	detector    *detector.Detector
	documents   DocumentFetcher
	text        TextFetcher
	selector    Selector
	newImporter ImporterFactory
	logger      *slog.Logger
}

// New validates cfg. Host defaults to models.DefaultHost and the importer to RIS.
func New(cfg Config) (*Translator, error) {
	if cfg.Documents == nil {
		return nil, errors.New("translator: document fetcher is required")
	}
	if cfg.Text == nil {
		return nil, errors.New("translator: text fetcher is required")
	}
	if cfg.Selector == nil {
		return nil, errors.New("translator: selector is required")
	}
	if cfg.Host == "" {
		cfg.Host = models.DefaultHost
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.NewImporter == nil {
		logger := cfg.Logger
		cfg.NewImporter = func() Importer { return ris.NewImporter(logger) }
	}

	return &Translator{
		detector:    detector.New(cfg.Host),
		documents:   cfg.Documents,
		text:        cfg.Text,
		selector:    cfg.Selector,
		newImporter: cfg.NewImporter,
		logger:      cfg.Logger,
	}, nil
}

// DetectWeb classifies doc as loaded from pageURL. An empty pageURL falls
// back to doc.Url.
func (t *Translator) DetectWeb(doc *goquery.Document, pageURL string) (models.PageType, error) {
	return t.detector.Classify(doc, documentURL(doc, pageURL))
}

// GetSearchResults lists the results on a search page; see results.GetSearchResults.
func (t *Translator) GetSearchResults(doc *goquery.Document, checkOnly bool) (*results.Set, bool) {
	return results.GetSearchResults(doc, checkOnly)
}

// DoWeb imports everything doc offers into sink. Search pages go through the
// selector and each chosen record is fetched and scraped in selection order;
// the first failing record stops the batch. Record pages are scraped directly.
func (t *Translator) DoWeb(ctx context.Context, doc *goquery.Document, pageURL string, sink ItemSink) error {
	pageURL = documentURL(doc, pageURL)
	pageType, err := t.DetectWeb(doc, pageURL)
	if err != nil {
		return fmt.Errorf("failed to classify %s: %w", pageURL, err)
	}
	t.logger.Debug("Page classified", "url", pageURL, "type", pageType.String())

	switch {
	case pageType == models.PageTypeMultiple:
		return t.doMultiple(ctx, doc, pageURL, sink)
	case pageType.IsSingle():
		return t.Scrape(ctx, doc, pageURL, sink)
	default:
		t.logger.Info("Nothing to import", "url", pageURL)
		return nil
	}
}

func (t *Translator) doMultiple(ctx context.Context, doc *goquery.Document, pageURL string, sink ItemSink) error {
	set, ok := t.GetSearchResults(doc, false)
	if !ok {
		t.logger.Info("No search results found", "url", pageURL)
		return nil
	}

	selected, err := t.selector.SelectItems(ctx, set)
	if errors.Is(err, ErrSelectionCancelled) || (err == nil && len(selected) == 0) {
		t.logger.Info("Selection cancelled", "url", pageURL, "candidates", set.Len())
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to select items: %w", err)
	}

	t.logger.Info("Importing selected results", "selected", len(selected), "candidates", set.Len())
	for i, itemURL := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.scrapeURL(ctx, itemURL, sink); err != nil {
			return fmt.Errorf("item %d of %d (%s): %w", i+1, len(selected), itemURL, err)
		}
	}
	return nil
}

func (t *Translator) scrapeURL(ctx context.Context, itemURL string, sink ItemSink) error {
	doc, err := t.documents.FetchDocument(ctx, itemURL)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFetch, itemURL, err)
	}
	return t.Scrape(ctx, doc, "", sink)
}

// Scrape fetches the RIS export of the record page doc and commits every
// item the importer produces. pageURL overrides doc.Url when set.
func (t *Translator) Scrape(ctx context.Context, doc *goquery.Document, pageURL string, sink ItemSink) error {
	pageURL = documentURL(doc, pageURL)
	if !t.detector.IsRecordURL(pageURL) {
		return fmt.Errorf("%w: %q", ErrNotRecordPage, pageURL)
	}

	risURL, err := RISURL(pageURL)
	if err != nil {
		return err
	}
	t.logger.Info("Fetching RIS export", "url", risURL)

	risText, err := t.text.FetchText(ctx, risURL)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFetch, risURL, err)
	}

	count := 0
	importer := t.newImporter()
	importer.SetString(risText)
	importer.SetHandler(func(item *models.Item) error {
		count++
		return commit(ctx, sink, item)
	})
	if err := importer.Translate(ctx); err != nil {
		return fmt.Errorf("failed to import %s: %w", risURL, err)
	}

	t.logger.Debug("RIS export imported", "url", risURL, "items", count)
	return nil
}

// RISURL derives the export URL of a record page: the page URL without query,
// fragment or trailing slash, plus ".ris".
func RISURL(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	return u.String() + risSuffix, nil
}

// commit completes an item the way hosts expect and passes it on unchanged otherwise.
func commit(ctx context.Context, sink ItemSink, item *models.Item) error {
	if item.LibraryCatalog == "" {
		item.LibraryCatalog = Info.Label
	}
	return sink.Commit(ctx, item)
}

func documentURL(doc *goquery.Document, pageURL string) string {
	if pageURL == "" && doc != nil && doc.Url != nil {
		return doc.Url.String()
	}
	return pageURL
}
