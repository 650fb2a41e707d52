package detect

import (
	"context"
	"fmt"
	"os"

	"github.com/dtnitsch/cinii-translator/internal/common"
	"github.com/dtnitsch/cinii-translator/models"
	"github.com/dtnitsch/cinii-translator/pkg/detector"
	"github.com/dtnitsch/cinii-translator/pkg/fetcher"
	"github.com/dtnitsch/cinii-translator/pkg/results"
	"github.com/dtnitsch/cinii-translator/pkg/translator"
	"github.com/urfave/cli/v2"
)

// Report is the output of the detect command.
type Report struct {
	URL      string `yaml:"url" json:"url"`
	PageType string `yaml:"page_type" json:"page_type"`
	CRID     string `yaml:"crid,omitempty" json:"crid,omitempty"`
	RISURL   string `yaml:"ris_url,omitempty" json:"ris_url,omitempty"`
	Results  int    `yaml:"results,omitempty" json:"results,omitempty"`
}

// SearchReport is the output of the search command.
type SearchReport struct {
	URL     string          `yaml:"url" json:"url"`
	Count   int             `yaml:"count" json:"count"`
	Results []results.Entry `yaml:"results" json:"results"`
}

func DetectAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	config, pageURL, err := setup(c)
	if err != nil {
		return err
	}

	f := fetcher.NewFetcher(config.UserAgent, config.Timeout)
	report, err := Detect(c.Context, f, config.Host, pageURL)
	if err != nil {
		return err
	}
	logger.Info("Page classified", "url", pageURL, "type", report.PageType)
	return common.Encode(os.Stdout, config.Format, report)
}

func SearchAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	config, pageURL, err := setup(c)
	if err != nil {
		return err
	}

	f := fetcher.NewFetcher(config.UserAgent, config.Timeout)
	report, err := Search(c.Context, f, pageURL)
	if err != nil {
		return err
	}
	if report.Count == 0 {
		logger.Info("No search results found", "url", pageURL)
	}
	return common.Encode(os.Stdout, config.Format, report)
}

// Detect fetches pageURL and classifies it for host.
func Detect(ctx context.Context, docs translator.DocumentFetcher, host, pageURL string) (*Report, error) {
	doc, err := docs.FetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", translator.ErrFetch, pageURL, err)
	}

	d := detector.New(host)
	pageType, err := d.Classify(doc, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to classify %s: %w", pageURL, err)
	}

	report := &Report{URL: pageURL, PageType: pageType.String()}
	switch {
	case pageType.IsSingle():
		report.CRID = d.CRID(pageURL)
		if report.RISURL, err = translator.RISURL(pageURL); err != nil {
			return nil, err
		}
	case pageType == models.PageTypeMultiple:
		set, _ := results.GetSearchResults(doc, false)
		report.Results = set.Len()
	}
	return report, nil
}

// Search fetches pageURL and lists its result rows. A page without rows
// yields an empty report, not an error.
func Search(ctx context.Context, docs translator.DocumentFetcher, pageURL string) (*SearchReport, error) {
	doc, err := docs.FetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", translator.ErrFetch, pageURL, err)
	}

	report := &SearchReport{URL: pageURL, Results: []results.Entry{}}
	if set, ok := results.GetSearchResults(doc, false); ok {
		report.Results = set.Entries()
		report.Count = set.Len()
	}
	return report, nil
}

func setup(c *cli.Context) (*models.Config, string, error) {
	config, err := common.LoadConfig(c)
	if err != nil {
		return nil, "", err
	}
	if c.NArg() != 1 {
		return nil, "", fmt.Errorf("expected exactly one page URL, got %d arguments", c.NArg())
	}
	pageURL, err := common.ValidateURL(c.Args().First())
	if err != nil {
		return nil, "", err
	}
	return config, pageURL, nil
}
