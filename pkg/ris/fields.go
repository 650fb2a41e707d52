package ris

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/dtnitsch/cinii-translator/models"
)

var itemTypes = map[string]string{
	"JOUR":   "journalArticle",
	"JFULL":  "journalArticle",
	"EJOUR":  "journalArticle",
	"MGZN":   "magazineArticle",
	"NEWS":   "newspaperArticle",
	"BOOK":   "book",
	"EBOOK":  "book",
	"CHAP":   "bookSection",
	"ECHAP":  "bookSection",
	"THES":   "thesis",
	"RPRT":   "report",
	"CONF":   "conferencePaper",
	"CPAPER": "conferencePaper",
	"ELEC":   "webpage",
	"GEN":    "document",
}

var creatorRoles = map[string]string{
	"AU": "author",
	"A1": "author",
	"A2": "editor",
	"ED": "editor",
	"A3": "seriesEditor",
	"A4": "translator",
}

var doiPrefix = regexp.MustCompile(`(?i)^(?:https?://(?:dx\.)?doi\.org/|doi:\s*)`)

func isBookType(itemType string) bool {
	return itemType == "book" || itemType == "bookSection"
}

func setOnce(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

func (r record) toItem(logger *slog.Logger) *models.Item {
	item := &models.Item{ItemType: "document"}
	var startPage, endPage, year, date string

	for _, f := range r {
		if f.tag == "TY" {
			if t, ok := itemTypes[strings.ToUpper(f.value)]; ok {
				item.ItemType = t
			} else {
				logger.Debug("unknown RIS type", "type", f.value)
			}
			break
		}
	}

	for _, f := range r {
		v := f.value
		if v == "" {
			continue
		}
		if role, ok := creatorRoles[f.tag]; ok {
			item.Creators = append(item.Creators, parseName(v, role))
			continue
		}

		switch f.tag {
		case "TY":
		case "TI", "T1", "CT", "BT":
			setOnce(&item.Title, v)
		case "ST":
			setOnce(&item.ShortTitle, v)
		case "T2":
			if item.ItemType == "book" {
				setOnce(&item.Series, v)
			} else {
				setOnce(&item.PublicationTitle, v)
			}
		case "JF", "JO":
			setOnce(&item.PublicationTitle, v)
		case "T3":
			setOnce(&item.Series, v)
		case "PY", "Y1":
			setOnce(&year, v)
		case "DA":
			setOnce(&date, v)
		case "DO":
			setOnce(&item.DOI, doiPrefix.ReplaceAllString(v, ""))
		case "SN":
			if isBookType(item.ItemType) {
				setOnce(&item.ISBN, v)
			} else {
				setOnce(&item.ISSN, v)
			}
		case "VL":
			setOnce(&item.Volume, v)
		case "IS":
			setOnce(&item.Issue, v)
		case "SP":
			setOnce(&startPage, v)
		case "EP":
			setOnce(&endPage, v)
		case "ET":
			setOnce(&item.Edition, v)
		case "PB":
			setOnce(&item.Publisher, v)
		case "CY", "PP":
			setOnce(&item.Place, v)
		case "UR":
			setOnce(&item.URL, v)
		case "AB", "N2":
			setOnce(&item.AbstractNote, v)
		case "LA":
			setOnce(&item.Language, v)
		case "KW":
			item.Tags = append(item.Tags, v)
		case "N1":
			item.Notes = append(item.Notes, v)
		default:
			logger.Debug("RIS tag ignored", "tag", f.tag)
		}
	}

	if date != "" {
		item.Date = normalizeDate(date)
	} else {
		item.Date = normalizeDate(year)
	}
	item.Pages = joinPages(startPage, endPage)
	return item
}

// parseName reads "Last, First" or "First Last"; a name with neither comma
// nor space is kept whole in LastName.
func parseName(raw, role string) models.Creator {
	raw = strings.TrimSpace(raw)
	if last, first, ok := strings.Cut(raw, ","); ok {
		return models.Creator{
			LastName:    strings.TrimSpace(last),
			FirstName:   strings.TrimSpace(first),
			CreatorType: role,
		}
	}
	if i := strings.LastIndex(raw, " "); i > 0 {
		return models.Creator{
			LastName:    raw[i+1:],
			FirstName:   strings.TrimSpace(raw[:i]),
			CreatorType: role,
		}
	}
	return models.Creator{LastName: raw, CreatorType: role, FieldMode: 1}
}

// normalizeDate turns RIS "YYYY/MM/DD/other" into "YYYY-MM-DD other",
// dropping empty parts. Other forms pass through.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "/") {
		return raw
	}
	parts := strings.SplitN(raw, "/", 4)
	var ymd []string
	for _, p := range parts[:min(3, len(parts))] {
		p = strings.TrimSpace(p)
		if p == "" {
			break
		}
		ymd = append(ymd, p)
	}
	date := strings.Join(ymd, "-")
	if len(parts) == 4 {
		if other := strings.TrimSpace(parts[3]); other != "" {
			date = strings.TrimSpace(date + " " + other)
		}
	}
	return date
}

func joinPages(start, end string) string {
	switch {
	case start == "":
		return end
	case end == "" || end == start:
		return start
	default:
		return start + "-" + end
	}
}

// complete fills fields the importer derives from others.
func complete(item *models.Item) {
	if item.ShortTitle == "" {
		if short := shortTitle(item.Title); short != item.Title {
			item.ShortTitle = short
		}
	}
}

// shortTitle is the title up to the first colon (excluded) or question mark
// (included).
func shortTitle(title string) string {
	i := strings.IndexAny(title, ":?")
	if i < 0 {
		return title
	}
	if title[i] == '?' {
		return strings.TrimSpace(title[:i+1])
	}
	return strings.TrimSpace(title[:i])
}
