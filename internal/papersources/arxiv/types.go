// Package arxiv provides the arXiv API adapter.
//
// arXiv answers with an Atom feed. The adapter projects every entry into a
// domain.NormalizedResult; a missing or malformed field falls back to its
// default instead of failing the batch.
//
// API Documentation: https://info.arxiv.org/help/api/user-manual.html
package arxiv

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/helixir/scholarly-search-proxy/internal/domain"
	"github.com/helixir/scholarly-search-proxy/internal/json"
)

// Feed represents the Atom XML response from the arXiv API.
// Every field is optional; absent elements decode to "" or nil.
type Feed struct {
	XMLName      xml.Name `xml:"feed"`
	TotalResults string   `xml:"totalResults"`
	StartIndex   string   `xml:"startIndex"`
	ItemsPerPage string   `xml:"itemsPerPage"`
	Entries      []Entry  `xml:"entry"`
}

// Entry represents a single arXiv paper in the Atom feed.
type Entry struct {
	ID         string     `xml:"id"`        // "http://arxiv.org/abs/2301.12345v1"
	Title      string     `xml:"title"`
	Summary    string     `xml:"summary"`
	Published  string     `xml:"published"` // "2023-01-15T18:30:00Z"
	Updated    string     `xml:"updated"`
	Authors    []Author   `xml:"author"`
	Categories []Category `xml:"category"`
	Links      []Link     `xml:"link"`
	DOI        string     `xml:"doi"`
	JournalRef string     `xml:"journal_ref"`
	Comment    string     `xml:"comment"`
}

// Author represents a paper author in the arXiv Atom feed.
type Author struct {
	Name        string `xml:"name"`
	Affiliation string `xml:"affiliation"`
}

// Category represents an arXiv subject category.
type Category struct {
	Term string `xml:"term,attr"`
}

// Link represents a link element in the Atom feed.
type Link struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// total returns opensearch:totalResults when it is a non-negative integer,
// otherwise offset plus the number of entries in this page.
func (f *Feed) total(offset int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(f.TotalResults)); err == nil && n >= 0 {
		return n
	}
	return offset + len(f.Entries)
}

// normalize projects an entry into the common result shape. Authors and
// categories keep one element per feed element, "" when the value is missing.
func (e *Entry) normalize() domain.NormalizedResult {
	authors := make([]string, len(e.Authors))
	for i, a := range e.Authors {
		authors[i] = strings.TrimSpace(a.Name)
	}

	categories := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		categories[i] = strings.TrimSpace(c.Term)
	}

	return domain.NormalizedResult{
		Title:      collapseWhitespace(e.Title),
		Link:       e.absLink(),
		PDFLink:    e.pdfLink(),
		Year:       publishedYear(e.Published),
		Identifier: strings.TrimSpace(e.DOI),
		Authors:    authors,
		Categories: categories,
	}
}

// absLink prefers rel="alternate", then the first link without rel, then the entry id.
func (e *Entry) absLink() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" && l.Href != "" {
			return l.Href
		}
	}
	for _, l := range e.Links {
		if l.Rel == "" && l.Href != "" {
			return l.Href
		}
	}
	return strings.TrimSpace(e.ID)
}

func (e *Entry) pdfLink() string {
	for _, l := range e.Links {
		if l.Type == "application/pdf" || l.Title == "pdf" {
			return l.Href
		}
	}
	return ""
}

// publishedYear reads the year from the first four characters of an RFC 3339
// timestamp. It returns nil rather than failing on short or non-numeric input.
func publishedYear(published string) *int {
	published = strings.TrimSpace(published)
	if len(published) < 4 {
		return nil
	}
	year, err := strconv.Atoi(published[:4])
	if err != nil || year < 0 {
		return nil
	}
	return &year
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsOpenAccess reports true for every arXiv result; preprints are free to read.
func IsOpenAccess(json.RawMessage) (bool, error) {
	return true, nil
}
