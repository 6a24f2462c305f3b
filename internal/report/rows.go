// Package report builds flat report rows from catalog and access data and
// writes them to CSV, JSON or SQLite sinks.
package report

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fabiobatalha/processing/internal/access"
	"github.com/fabiobatalha/processing/internal/articlemeta"
)

// Row is one output record with a fixed column layout.
type Row interface {
	// Columns returns the column names in output order.
	Columns() []string
	// Values returns the row's values rendered as text, in column order.
	Values() []string
}

// listSep joins multi-valued fields in text output.
const listSep = ", "

var (
	supplBegin = regexp.MustCompile(`^0 `)
	supplEnd   = regexp.MustCompile(` 0$`)
)

// AccessRow joins a document's metadata with its accesses for one period.
type AccessRow struct {
	ID              string   `json:"id"`
	PID             string   `json:"pid"`
	ISSN            string   `json:"issn"`
	JournalTitle    string   `json:"journal_title"`
	Issue           string   `json:"issue"`
	IssueTitle      string   `json:"issue_title"`
	DocumentTitle   string   `json:"document_title"`
	ProcessingDate  string   `json:"processing_date"`
	PublicationDate string   `json:"publication_date"`
	PublicationYear string   `json:"publication_year"`
	SubjectAreas    []string `json:"subject_areas"`
	Collection      string   `json:"collection"`
	DocumentType    string   `json:"document_type"`
	Languages       []string `json:"languages"`
	AffCountries    []string `json:"aff_countries"`
	AccessDate      string   `json:"access_date"`
	AccessYear      string   `json:"access_year"`
	AccessMonth     string   `json:"access_month"`
	AccessDay       string   `json:"access_day"`
	AccessAbstract  int      `json:"access_abstract"`
	AccessHTML      int      `json:"access_html"`
	AccessPDF       int      `json:"access_pdf"`
	AccessEPDF      int      `json:"access_epdf"`
	AccessTotal     int      `json:"access_total"`
}

var accessColumns = []string{
	"collection", "pid", "issn", "journal_title", "issue", "issue_title",
	"document_title", "processing_date", "publication_date", "publication_year",
	"document_type", "subject_areas", "languages", "aff_countries",
	"access_date", "access_year", "access_month", "access_day",
	"access_abstract", "access_html", "access_pdf", "access_epdf", "access_total",
}

// Columns implements Row.
func (r AccessRow) Columns() []string { return accessColumns }

// Values implements Row.
func (r AccessRow) Values() []string {
	return []string{
		r.Collection,
		r.PID,
		r.ISSN,
		r.JournalTitle,
		r.Issue,
		r.IssueTitle,
		r.DocumentTitle,
		r.ProcessingDate,
		r.PublicationDate,
		r.PublicationYear,
		r.DocumentType,
		strings.Join(r.SubjectAreas, listSep),
		strings.Join(r.Languages, listSep),
		strings.Join(r.AffCountries, listSep),
		r.AccessDate,
		r.AccessYear,
		r.AccessMonth,
		r.AccessDay,
		strconv.Itoa(r.AccessAbstract),
		strconv.Itoa(r.AccessHTML),
		strconv.Itoa(r.AccessPDF),
		strconv.Itoa(r.AccessEPDF),
		strconv.Itoa(r.AccessTotal),
	}
}

// BuildAccessRow joins doc with the accesses counted in period, a YYYY-MM or
// YYYY-MM-DD string. Missing access types count as zero.
func BuildAccessRow(doc *articlemeta.Document, period string, counts access.Counts) AccessRow {
	row := AccessRow{
		ID:              doc.Collection + "_" + doc.PID,
		PID:             doc.PID,
		ISSN:            doc.Journal.ISSN,
		JournalTitle:    doc.Journal.Title,
		Issue:           prefix(doc.PID, 18),
		IssueTitle:      IssueLabel(doc),
		DocumentTitle:   doc.Title(),
		ProcessingDate:  doc.ProcessingDate,
		PublicationDate: doc.PublicationDate,
		PublicationYear: doc.PublicationYear(),
		SubjectAreas:    SubjectAreas(doc.Journal),
		Collection:      doc.Collection,
		DocumentType:    doc.DocumentType,
		Languages:       Languages(doc),
		AffCountries:    AffiliationCountries(doc),
		AccessDate:      AccessTimestamp(period),
		AccessYear:      slice(period, 0, 4),
		AccessMonth:     slice(period, 5, 7),
		AccessDay:       slice(period, 8, len(period)),
		AccessAbstract:  counts[access.TypeAbstract],
		AccessHTML:      counts[access.TypeHTML],
		AccessPDF:       counts[access.TypePDF],
		AccessEPDF:      counts[access.TypeReadcube],
	}
	row.AccessTotal = row.AccessAbstract + row.AccessHTML + row.AccessPDF + row.AccessEPDF
	return row
}

// IssueLabel renders "<abbreviated title>, v.<volume> n.<issue>, <year>".
// Supplements are appended to the issue part; a leading "0 " and a trailing
// " 0" mark absent values and are removed.
func IssueLabel(doc *articlemeta.Document) string {
	issue := doc.Issue
	if doc.SupplementIssue != "" {
		issue += " suppl " + doc.SupplementIssue
	}
	if doc.SupplementVolume != "" {
		issue += " suppl " + doc.SupplementVolume
	}
	issue = supplBegin.ReplaceAllString(issue, "")
	issue = supplEnd.ReplaceAllString(issue, "")

	return strings.Join([]string{
		doc.Journal.AbbreviatedTitle,
		"v." + doc.Volume + " n." + issue,
		doc.PublicationYear(),
	}, listSep)
}

// SubjectAreas returns the journal's subject areas or ["undefined"].
func SubjectAreas(j articlemeta.Journal) []string {
	if len(j.SubjectAreas) == 0 {
		return []string{undefined}
	}
	return append([]string(nil), j.SubjectAreas...)
}

// Languages returns the sorted set of the document's languages, including
// the original language ("undefined" when unknown).
func Languages(doc *articlemeta.Document) []string {
	original := doc.OriginalLanguage
	if original == "" {
		original = undefined
	}
	return sortedSet(append(append([]string(nil), doc.Languages...), original))
}

// AffiliationCountries returns the sorted set of ISO 3166 codes of the
// document's affiliations, or ["undefined"] when it has none.
func AffiliationCountries(doc *articlemeta.Document) []string {
	if len(doc.MixedAffiliations) == 0 {
		return []string{undefined}
	}
	codes := make([]string, 0, len(doc.MixedAffiliations))
	for _, aff := range doc.MixedAffiliations {
		country := aff.Country
		if country == "" {
			country = undefined
		}
		codes = append(codes, CountryCode(country))
	}
	return sortedSet(codes)
}

// AccessTimestamp renders a YYYY-MM or YYYY-MM-DD period as an ISO 8601
// timestamp at midnight. Other values are returned unchanged.
func AccessTimestamp(period string) string {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, period); err == nil {
			return t.Format("2006-01-02T15:04:05")
		}
	}
	return period
}

// sortedSet returns the distinct values of in, sorted.
func sortedSet(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// slice returns s[i:j] clamped to the string's bounds.
func slice(s string, i, j int) string {
	if i >= len(s) {
		return ""
	}
	if j > len(s) {
		j = len(s)
	}
	return s[i:j]
}
