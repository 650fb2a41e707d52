// Package detector classifies CiNii Research pages.
package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/cinii-translator/models"
)

// ErrStructuredData is returned when a record page lacks a readable JSON-LD block.
var ErrStructuredData = errors.New("structured data unavailable")

const (
	ldJSONSelector  = `head > script[type="application/ld+json"]`
	resultListClass = "result_list"
	typeScholarly   = "ScholarlyArticle"
	typeBook        = "Book"
)

// Detector recognizes record pages on a single CiNii host.
type Detector struct {
	recordURL *regexp.Regexp
}

// New returns a Detector for host, e.g. "cir.nii.ac.jp".
func New(host string) *Detector {
	return &Detector{
		recordURL: regexp.MustCompile(`^https?://` + regexp.QuoteMeta(host) + `/crid/(\d+)`),
	}
}

// IsRecordURL reports whether rawURL points at a single record (/crid/<digits>).
func (d *Detector) IsRecordURL(rawURL string) bool {
	return d.recordURL.MatchString(rawURL)
}

// CRID returns the numeric record identifier in rawURL, or "".
func (d *Detector) CRID(rawURL string) string {
	m := d.recordURL.FindStringSubmatch(rawURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// Classify inspects doc loaded from rawURL.
//
// Record pages are typed by the first @graph entry of their JSON-LD block; a
// missing or unreadable block is an error, an unknown type is PageTypeNone.
// Any other page whose body has the result_list class is a search listing.
func (d *Detector) Classify(doc *goquery.Document, rawURL string) (models.PageType, error) {
	if d.IsRecordURL(rawURL) {
		schemaType, err := graphType(doc)
		if err != nil {
			return models.PageTypeNone, err
		}
		switch schemaType {
		case typeScholarly:
			return models.PageTypeJournalArticle, nil
		case typeBook:
			return models.PageTypeBook, nil
		default:
			return models.PageTypeNone, nil
		}
	}

	if doc.Find("body").HasClass(resultListClass) {
		return models.PageTypeMultiple, nil
	}

	return models.PageTypeNone, nil
}

type ldDocument struct {
	Graph []struct {
		Type json.RawMessage `json:"@type"`
	} `json:"@graph"`
}

// graphType returns the @type of the first @graph entry. @type may be a
// string or a list of strings, in which case the first one counts.
func graphType(doc *goquery.Document) (string, error) {
	script := doc.Find(ldJSONSelector).First()
	if script.Length() == 0 {
		return "", fmt.Errorf("no JSON-LD block: %w", ErrStructuredData)
	}

	var ld ldDocument
	if err := json.Unmarshal([]byte(strings.TrimSpace(script.Text())), &ld); err != nil {
		return "", fmt.Errorf("malformed JSON-LD: %v: %w", err, ErrStructuredData)
	}
	if len(ld.Graph) == 0 {
		return "", fmt.Errorf("JSON-LD has no @graph entries: %w", ErrStructuredData)
	}

	raw := ld.Graph[0].Type
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0], nil
	}
	return "", nil
}
