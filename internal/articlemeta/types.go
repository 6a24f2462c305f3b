// Package articlemeta is a client for the article/journal metadata catalog.
package articlemeta

import "sort"

// Document is a catalog article as seen by the report scripts.
// Values are built by the client and treated as read-only.
type Document struct {
	// Identity
	PID        string // Canonical identifier, e.g. S0102-67202009000300001
	Collection string // Collection acronym, e.g. scl
	DOI        string

	// Full-text links keyed by format (pdf, html) then language.
	Fulltexts map[string]map[string]string

	// Dates
	PublicationDate string // ISO-like, at least year precision
	ProcessingDate  string

	DocumentType     string
	Languages        []string
	OriginalLanguage string

	OriginalTitle    string
	TranslatedTitles map[string]string // language -> title

	MixedAffiliations      []Affiliation
	NormalizedAffiliations []Affiliation

	// Issue
	Volume           string
	Issue            string
	SupplementVolume string
	SupplementIssue  string

	Journal Journal
}

// Affiliation is an author affiliation attached to a document.
type Affiliation struct {
	Institution string `json:"institution,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryISO  string `json:"country_iso_3166,omitempty"`
}

// Journal is a catalog journal.
type Journal struct {
	ISSN             string // Collection ISSN (scielo_issn)
	PrintISSN        string
	ElectronicISSN   string
	Collection       string
	Title            string
	AbbreviatedTitle string
	SubjectAreas     []string
}

// PDFURLs returns the document's PDF full-text URLs ordered by language.
func (d *Document) PDFURLs() []string {
	byLang := d.Fulltexts["pdf"]
	if len(byLang) == 0 {
		return nil
	}

	langs := make([]string, 0, len(byLang))
	for lang := range byLang {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	urls := make([]string, 0, len(langs))
	for _, lang := range langs {
		urls = append(urls, byLang[lang])
	}
	return urls
}

// Title returns the original title, falling back to the first non-empty
// translated title in language order.
func (d *Document) Title() string {
	if d.OriginalTitle != "" {
		return d.OriginalTitle
	}

	langs := make([]string, 0, len(d.TranslatedTitles))
	for lang := range d.TranslatedTitles {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		if t := d.TranslatedTitles[lang]; t != "" {
			return t
		}
	}
	return ""
}

// PublicationYear returns the first four characters of the publication date.
func (d *Document) PublicationYear() string {
	if len(d.PublicationDate) < 4 {
		return d.PublicationDate
	}
	return d.PublicationDate[:4]
}
