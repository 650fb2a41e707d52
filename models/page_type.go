package models

// PageType is the classification of a loaded page.
type PageType string

const (
	// PageTypeNone means the page carries nothing the translator can import.
	PageTypeNone           PageType = ""
	PageTypeJournalArticle PageType = "journalArticle"
	PageTypeBook           PageType = "book"
	PageTypeMultiple       PageType = "multiple" // search results listing
)

// IsSingle reports whether the page describes exactly one publication.
func (t PageType) IsSingle() bool {
	return t == PageTypeJournalArticle || t == PageTypeBook
}

func (t PageType) String() string {
	if t == PageTypeNone {
		return "none"
	}
	return string(t)
}
