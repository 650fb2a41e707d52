package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dtnitsch/cinii-translator/internal/common"
	"github.com/dtnitsch/cinii-translator/models"
	"github.com/dtnitsch/cinii-translator/pkg/db"
	"github.com/dtnitsch/cinii-translator/pkg/fetcher"
	"github.com/dtnitsch/cinii-translator/pkg/manifest"
	"github.com/dtnitsch/cinii-translator/pkg/selector"
	"github.com/dtnitsch/cinii-translator/pkg/storage"
	"github.com/dtnitsch/cinii-translator/pkg/translator"
	"github.com/urfave/cli/v2"
)

// Options describes one fetch run independent of the CLI.
type Options struct {
	PageURL  string
	Config   *models.Config
	Selector translator.Selector
	Fetcher  *fetcher.Fetcher
	Library  *db.DB // optional
	Logger   *slog.Logger
}

// Outcome is what a run produced. Items holds everything committed before
// any error.
type Outcome struct {
	Items    []*models.Item
	Manifest manifest.RunManifest
}

func FetchAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	startTime := time.Now()

	config, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one page URL, got %d arguments", c.NArg())
	}
	pageURL, err := common.ValidateURL(c.Args().First())
	if err != nil {
		return err
	}

	sel, err := buildSelector(c)
	if err != nil {
		return err
	}

	var library *db.DB
	if config.DBPath != "" {
		library, err = db.Open(config.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open library: %w", err)
		}
		defer library.Close()
		logger.Info("Library attached", "path", library.Path())
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	outcome, runErr := Run(ctx, Options{
		PageURL:  pageURL,
		Config:   config,
		Selector: sel,
		Fetcher:  fetcher.NewFetcher(config.UserAgent, config.Timeout),
		Library:  library,
		Logger:   logger,
	})

	s := &storage.Storage{}
	output := c.String("output")
	if output != "" && s.HasFile(output) {
		logger.Warn("Overwriting existing output file", "path", output)
	}
	if err := writeItems(output, config.Format, outcome.Items, s, os.Stdout); err != nil {
		return err
	}
	if output != "" {
		if stats, err := s.GetFileStats(output); err == nil {
			logger.Info("Items written", "path", output, "bytes", stats.SizeBytes)
		}
	}
	if path := c.String("manifest"); path != "" {
		if err := manifest.Save(outcome.Manifest, path, s); err != nil {
			logger.Warn("Failed to write run manifest", "path", path, "error", err)
		} else {
			logger.Info("Run manifest saved", "path", path)
		}
	}

	logger.Info("Fetch finished", "items", len(outcome.Items), "status", outcome.Manifest.Status, "took", common.Elapsed(startTime))
	return runErr
}

// Run loads PageURL and hands it to the translator.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	tracker := &cancelTracker{Selector: opts.Selector}
	web := &recordingFetcher{inner: opts.Fetcher, library: opts.Library, logger: opts.Logger}
	sink := &collector{
		library:  opts.Library,
		manifest: manifest.NewBuilder(opts.PageURL, models.PageTypeNone),
		logger:   opts.Logger,
	}
	finish := func(err error) (*Outcome, error) {
		return &Outcome{Items: sink.items, Manifest: sink.manifest.Finish(err, tracker.cancelled)}, err
	}

	tr, err := translator.New(translator.Config{
		Host:      opts.Config.Host,
		Documents: web,
		Text:      web,
		Selector:  tracker,
		Logger:    opts.Logger,
	})
	if err != nil {
		return finish(err)
	}

	doc, err := web.FetchDocument(ctx, opts.PageURL)
	if err != nil {
		return finish(fmt.Errorf("%w: %s: %w", translator.ErrFetch, opts.PageURL, err))
	}

	pageType, err := tr.DetectWeb(doc, opts.PageURL)
	if err != nil {
		return finish(fmt.Errorf("failed to classify %s: %w", opts.PageURL, err))
	}
	sink.manifest = manifest.NewBuilder(opts.PageURL, pageType)
	opts.Logger.Info("Page classified", "url", opts.PageURL, "type", pageType.String())

	return finish(tr.DoWeb(ctx, doc, opts.PageURL, sink))
}

func buildSelector(c *cli.Context) (translator.Selector, error) {
	switch {
	case c.IsSet("select") && c.Bool("all"):
		return nil, fmt.Errorf("--select and --all cannot be combined")
	case c.IsSet("select"):
		return selector.Static{Expr: c.String("select")}, nil
	case c.Bool("all"):
		return selector.All{}, nil
	default:
		// stdout carries the records, so the checklist draws on stderr.
		return selector.TUI{In: os.Stdin, Out: os.Stderr}, nil
	}
}

// writeItems encodes items to path, or to stdout when path is empty.
func writeItems(path, format string, items []*models.Item, s *storage.Storage, stdout io.Writer) error {
	if items == nil {
		items = []*models.Item{}
	}
	if path == "" {
		return common.Encode(stdout, format, items)
	}

	var buf bytes.Buffer
	if err := common.Encode(&buf, format, items); err != nil {
		return err
	}
	if err := s.SaveFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write items: %w", err)
	}
	return nil
}
