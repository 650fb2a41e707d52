// Package results enumerates publications listed on a CiNii search results page.
package results

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const rowSelector = ".listContainer dt.item_title a.taggedlink"

// Entry is one selectable search result.
type Entry struct {
	URL   string `yaml:"url" json:"url"`
	Title string `yaml:"title" json:"title"`
}

// Set is an insertion-ordered url→title mapping. Adding a URL twice keeps its
// first position and the last title.
type Set struct {
	entries []Entry
	index   map[string]int
}

func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

func (s *Set) Add(url, title string) {
	if i, ok := s.index[url]; ok {
		s.entries[i].Title = title
		return
	}
	s.index[url] = len(s.entries)
	s.entries = append(s.entries, Entry{URL: url, Title: title})
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Title returns the title recorded for url.
func (s *Set) Title(url string) (string, bool) {
	i, ok := s.index[url]
	if !ok {
		return "", false
	}
	return s.entries[i].Title, true
}

// Entries returns a copy of the entries in insertion order.
func (s *Set) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Set) URLs() []string {
	urls := make([]string, 0, s.Len())
	for _, e := range s.Entries() {
		urls = append(urls, e.URL)
	}
	return urls
}

func (s *Set) MarshalYAML() (interface{}, error) {
	return s.Entries(), nil
}

// GetSearchResults collects result rows from doc. With checkOnly it stops at
// the first usable row and returns (nil, true). Otherwise it returns the set
// and true, or nil and false when no usable row exists.
//
// Hrefs are resolved against doc.Url; rows without an absolute href or with
// blank text are skipped.
func GetSearchResults(doc *goquery.Document, checkOnly bool) (*Set, bool) {
	set := NewSet()
	found := false

	doc.Find(rowSelector).EachWithBreak(func(i int, a *goquery.Selection) bool {
		href := resolveHref(doc.Url, a.AttrOr("href", ""))
		title := trimInternal(a.Text())
		if href == "" || title == "" {
			return true
		}
		found = true
		if checkOnly {
			return false
		}
		set.Add(href, title)
		return true
	})

	if !found {
		return nil, false
	}
	if checkOnly {
		return nil, true
	}
	return set, true
}

// HasSearchResults reports whether doc lists at least one usable result.
func HasSearchResults(doc *goquery.Document) bool {
	_, ok := GetSearchResults(doc, true)
	return ok
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if !ref.IsAbs() {
		return ""
	}
	return ref.String()
}

// trimInternal collapses runs of whitespace to one space and trims the ends.
func trimInternal(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
