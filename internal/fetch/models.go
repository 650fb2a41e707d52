package fetch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/cinii-translator/models"
	"github.com/dtnitsch/cinii-translator/pkg/db"
	"github.com/dtnitsch/cinii-translator/pkg/fetcher"
	"github.com/dtnitsch/cinii-translator/pkg/manifest"
	"github.com/dtnitsch/cinii-translator/pkg/results"
	"github.com/dtnitsch/cinii-translator/pkg/translator"
)

// Error types recorded in the library's url_accesses table.
const (
	errorTypeFetch  = "fetch_error"
	errorTypeStatus = "http_error"
	errorTypeEmpty  = "empty_body"
)

// collector is the ItemSink for one run. Items are kept for output and, when
// a library is attached, saved as they arrive.
type collector struct {
	items    []*models.Item
	library  *db.DB
	manifest *manifest.Builder
	logger   *slog.Logger
}

func (c *collector) Commit(ctx context.Context, item *models.Item) error {
	var itemID int64
	if c.library != nil {
		id, err := c.library.SaveItem(ctx, item)
		if err != nil {
			return err
		}
		itemID = id
	}

	c.items = append(c.items, item)
	c.manifest.Add(item, itemID)
	c.logger.Info("Item committed", "item_type", item.ItemType, "title", item.Title, "item_id", itemID)
	return nil
}

// recordingFetcher logs every request in the library's access history.
type recordingFetcher struct {
	inner   *fetcher.Fetcher
	library *db.DB
	logger  *slog.Logger
}

func (f *recordingFetcher) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	doc, err := f.inner.FetchDocument(ctx, url)
	f.record(ctx, url, err)
	return doc, err
}

func (f *recordingFetcher) FetchText(ctx context.Context, url string) (string, error) {
	text, err := f.inner.FetchText(ctx, url)
	f.record(ctx, url, err)
	return text, err
}

func (f *recordingFetcher) record(ctx context.Context, url string, fetchErr error) {
	if f.library == nil {
		return
	}
	if err := f.library.RecordAccess(ctx, url, classifyError(fetchErr), fetchErr == nil); err != nil {
		f.logger.Warn("Failed to record URL access", "url", url, "error", err)
	}
}

func classifyError(err error) string {
	var statusErr *fetcher.StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return errorTypeStatus
	case errors.Is(err, fetcher.ErrEmptyBody):
		return errorTypeEmpty
	default:
		return errorTypeFetch
	}
}

// cancelTracker remembers whether the user declined the selection, which
// DoWeb reports as a plain nil.
type cancelTracker struct {
	translator.Selector
	cancelled bool
}

func (s *cancelTracker) SelectItems(ctx context.Context, set *results.Set) ([]string, error) {
	urls, err := s.Selector.SelectItems(ctx, set)
	if errors.Is(err, translator.ErrSelectionCancelled) || (err == nil && len(urls) == 0) {
		s.cancelled = true
	}
	return urls, err
}
