package models

import "strings"

// Item is a normalized bibliographic record produced by an importer.
type Item struct {
	ItemType         string    `yaml:"itemType" json:"itemType"`
	Title            string    `yaml:"title,omitempty" json:"title,omitempty"`
	ShortTitle       string    `yaml:"shortTitle,omitempty" json:"shortTitle,omitempty"`
	Creators         []Creator `yaml:"creators,omitempty" json:"creators,omitempty"`
	Date             string    `yaml:"date,omitempty" json:"date,omitempty"`
	DOI              string    `yaml:"DOI,omitempty" json:"DOI,omitempty"`
	ISSN             string    `yaml:"ISSN,omitempty" json:"ISSN,omitempty"`
	ISBN             string    `yaml:"ISBN,omitempty" json:"ISBN,omitempty"`
	Volume           string    `yaml:"volume,omitempty" json:"volume,omitempty"`
	Issue            string    `yaml:"issue,omitempty" json:"issue,omitempty"`
	Pages            string    `yaml:"pages,omitempty" json:"pages,omitempty"`
	Edition          string    `yaml:"edition,omitempty" json:"edition,omitempty"`
	PublicationTitle string    `yaml:"publicationTitle,omitempty" json:"publicationTitle,omitempty"`
	Publisher        string    `yaml:"publisher,omitempty" json:"publisher,omitempty"`
	Place            string    `yaml:"place,omitempty" json:"place,omitempty"`
	Series           string    `yaml:"series,omitempty" json:"series,omitempty"`
	URL              string    `yaml:"url,omitempty" json:"url,omitempty"`
	AbstractNote     string    `yaml:"abstractNote,omitempty" json:"abstractNote,omitempty"`
	Language         string    `yaml:"language,omitempty" json:"language,omitempty"`
	LibraryCatalog   string    `yaml:"libraryCatalog,omitempty" json:"libraryCatalog,omitempty"`
	Extra            string    `yaml:"extra,omitempty" json:"extra,omitempty"`
	Tags             []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	Notes            []string  `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Creator is a person or organization credited on an item.
type Creator struct {
	FirstName   string `yaml:"firstName,omitempty" json:"firstName,omitempty"`
	LastName    string `yaml:"lastName" json:"lastName"`
	CreatorType string `yaml:"creatorType" json:"creatorType"`
	// FieldMode 1 marks a single-field name stored in LastName.
	FieldMode int `yaml:"fieldMode,omitempty" json:"fieldMode,omitempty"`
}

// DisplayName joins the name parts family-first, e.g. "大井 謙一".
func (c Creator) DisplayName() string {
	return strings.TrimSpace(c.LastName + " " + c.FirstName)
}
