package report

import (
	"strconv"
	"strings"

	"github.com/fabiobatalha/processing/internal/accessstats"
	"github.com/fabiobatalha/processing/internal/analytics"
	"github.com/fabiobatalha/processing/internal/articlemeta"
)

// DefaultHomeCountry is the country affiliations are compared against.
const DefaultHomeCountry = "brazil"

// nationalLanguage marks national publications in the languages report.
const nationalLanguage = "pt"

// AffiliationRow classifies a document by the countries of its authors'
// affiliations.
type AffiliationRow struct {
	PID                string   `json:"pid"`
	ISSN               string   `json:"issn"`
	JournalTitle       string   `json:"journal_title"`
	SubjectAreas       []string `json:"subject_areas"`
	PublicationYear    string   `json:"publication_year"`
	DocumentType       string   `json:"document_type"`
	Countries          []string `json:"countries"`
	NationalOnly       bool     `json:"national_only"`
	ForeignOnly        bool     `json:"foreign_only"`
	NationalAndForeign bool     `json:"national_and_foreign"`
}

var affiliationColumns = []string{
	"PID", "ISSN", "título", "área temática", "ano de publicação",
	"tipo de documento", "paises de afiliação", "exclusivo nacional",
	"exclusivo estrangeiro", "nacional + estrangeiro",
}

// Columns implements Row.
func (r AffiliationRow) Columns() []string { return affiliationColumns }

// Values implements Row.
func (r AffiliationRow) Values() []string {
	return []string{
		r.PID,
		r.ISSN,
		r.JournalTitle,
		strings.Join(r.SubjectAreas, ","),
		r.PublicationYear,
		r.DocumentType,
		strings.Join(r.Countries, listSep),
		flag(r.NationalOnly, "1", "0"),
		flag(r.ForeignOnly, "1", "0"),
		flag(r.NationalAndForeign, "1", "0"),
	}
}

// BuildAffiliationRow classifies doc against home, a lower-cased country
// name. Normalized affiliations without a country, or with "undefined", are
// ignored.
func BuildAffiliationRow(doc *articlemeta.Document, home string) AffiliationRow {
	home = strings.ToLower(home)
	var names []string
	for _, aff := range doc.NormalizedAffiliations {
		c := strings.ToLower(aff.Country)
		if c == "" || c == undefined {
			continue
		}
		names = append(names, c)
	}
	countries := sortedSet(names)

	hasHome := false
	for _, c := range countries {
		if c == home {
			hasHome = true
			break
		}
	}

	return AffiliationRow{
		PID:                doc.PID,
		ISSN:               doc.Journal.ISSN,
		JournalTitle:       doc.Journal.Title,
		SubjectAreas:       append([]string(nil), doc.Journal.SubjectAreas...),
		PublicationYear:    doc.PublicationYear(),
		DocumentType:       doc.DocumentType,
		Countries:          countries,
		NationalOnly:       hasHome && len(countries) == 1,
		ForeignOnly:        !hasHome && len(countries) > 0,
		NationalAndForeign: hasHome && len(countries) > 1,
	}
}

// LanguageRow classifies a document by its publication languages.
type LanguageRow struct {
	PID                string   `json:"pid"`
	ISSN               string   `json:"issn"`
	JournalTitle       string   `json:"journal_title"`
	PublicationYear    string   `json:"publication_year"`
	DocumentType       string   `json:"document_type"`
	Languages          []string `json:"languages"`
	PT                 bool     `json:"pt"`
	ES                 bool     `json:"es"`
	EN                 bool     `json:"en"`
	Other              bool     `json:"other"`
	PTES               bool     `json:"pt_es"`
	PTEN               bool     `json:"pt_en"`
	ENES               bool     `json:"en_es"`
	NationalOnly       bool     `json:"national_only"`
	ForeignOnly        bool     `json:"foreign_only"`
	NationalAndForeign bool     `json:"national_and_foreign"`
}

var languageColumns = []string{
	"PID", "ISSN", "título", "ano de publicação", "tipo de documento",
	"idiomas", "pt", "es", "en", "other", "pt-es", "pt-en", "en-es",
	"exclusivo nacional", "exclusivo estrangeiro", "nacional + estrangeiro",
}

// Columns implements Row.
func (r LanguageRow) Columns() []string { return languageColumns }

// Values implements Row.
func (r LanguageRow) Values() []string {
	x := func(b bool) string { return flag(b, "X", "") }
	return []string{
		r.PID,
		r.ISSN,
		r.JournalTitle,
		r.PublicationYear,
		r.DocumentType,
		strings.Join(r.Languages, listSep),
		x(r.PT), x(r.ES), x(r.EN), x(r.Other),
		x(r.PTES), x(r.PTEN), x(r.ENES),
		x(r.NationalOnly), x(r.ForeignOnly), x(r.NationalAndForeign),
	}
}

// BuildLanguageRow classifies doc by the set of its languages.
func BuildLanguageRow(doc *articlemeta.Document) LanguageRow {
	langs := sortedSet(doc.Languages)
	has := make(map[string]bool, len(langs))
	for _, l := range langs {
		has[l] = true
	}
	other := false
	for _, l := range langs {
		if l != "pt" && l != "es" && l != "en" {
			other = true
			break
		}
	}
	pair := len(langs) == 2
	national := has[nationalLanguage]

	return LanguageRow{
		PID:                doc.PID,
		ISSN:               doc.Journal.ISSN,
		JournalTitle:       doc.Journal.Title,
		PublicationYear:    doc.PublicationYear(),
		DocumentType:       doc.DocumentType,
		Languages:          langs,
		PT:                 has["pt"],
		ES:                 has["es"],
		EN:                 has["en"],
		Other:              other,
		PTES:               pair && has["pt"] && has["es"],
		PTEN:               pair && has["pt"] && has["en"],
		ENES:               pair && has["en"] && has["es"],
		NationalOnly:       national && len(langs) == 1,
		ForeignOnly:        !national && len(langs) > 0,
		NationalAndForeign: national && len(langs) > 1,
	}
}

// LifetimeRow is one publication year / access year cell of a journal's
// access lifetime.
type LifetimeRow struct {
	ISSN            string `json:"issn"`
	JournalTitle    string `json:"journal_title"`
	PublicationYear string `json:"publication_year"`
	AccessYear      string `json:"access_year"`
	AccessHTML      int    `json:"access_html"`
	AccessAbstract  int    `json:"access_abstract"`
	AccessPDF       int    `json:"access_pdf"`
	AccessEPDF      int    `json:"access_epdf"`
	AccessTotal     int    `json:"access_total"`
}

var lifetimeColumns = []string{
	"issn", "journal_title", "publication_year", "access_year",
	"access_html", "access_abstract", "access_pdf", "access_epdf", "access_total",
}

// Columns implements Row.
func (r LifetimeRow) Columns() []string { return lifetimeColumns }

// Values implements Row.
func (r LifetimeRow) Values() []string {
	return []string{
		r.ISSN,
		r.JournalTitle,
		r.PublicationYear,
		r.AccessYear,
		strconv.Itoa(r.AccessHTML),
		strconv.Itoa(r.AccessAbstract),
		strconv.Itoa(r.AccessPDF),
		strconv.Itoa(r.AccessEPDF),
		strconv.Itoa(r.AccessTotal),
	}
}

// BuildLifetimeRow labels a lifetime cell with its journal.
func BuildLifetimeRow(j *articlemeta.Journal, l accessstats.Lifetime) LifetimeRow {
	return LifetimeRow{
		ISSN:            j.ISSN,
		JournalTitle:    j.Title,
		PublicationYear: l.PublicationYear,
		AccessYear:      l.AccessYear,
		AccessHTML:      l.HTML,
		AccessAbstract:  l.Abstract,
		AccessPDF:       l.PDF,
		AccessEPDF:      l.EPDF,
		AccessTotal:     l.Total,
	}
}

func flag(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}

// ImpactFactorRow is one base year of a journal's bibliometric indicators.
type ImpactFactorRow struct {
	ScieloISSN     string   `json:"scielo_issn"`
	PrintISSN      string   `json:"print_issn"`
	ElectronicISSN string   `json:"electronic_issn"`
	JournalTitle   string   `json:"journal_title"`
	SubjectAreas   []string `json:"subject_areas"`
	BaseYear       string   `json:"base_year"`
	Immediacy      string   `json:"immediacy"`
	ImpactFactor1  string   `json:"impact_factor_1"`
	ImpactFactor2  string   `json:"impact_factor_2"`
	ImpactFactor3  string   `json:"impact_factor_3"`
	ImpactFactor4  string   `json:"impact_factor_4"`
	ImpactFactor5  string   `json:"impact_factor_5"`
}

var impactFactorColumns = []string{
	"issn scielo", "issn impresso", "issn eletrônico", "título", "área temática",
	"ano base", "imediatez", "fator de impacto 1 ano", "fator de impacto 2 anos",
	"fator de impacto 3 anos", "fator de impacto 4 anos", "fator de impacto 5 anos",
}

// Columns implements Row.
func (r ImpactFactorRow) Columns() []string { return impactFactorColumns }

// Values implements Row.
func (r ImpactFactorRow) Values() []string {
	return []string{
		r.ScieloISSN,
		r.PrintISSN,
		r.ElectronicISSN,
		r.JournalTitle,
		strings.Join(r.SubjectAreas, ","),
		r.BaseYear,
		r.Immediacy,
		r.ImpactFactor1,
		r.ImpactFactor2,
		r.ImpactFactor3,
		r.ImpactFactor4,
		r.ImpactFactor5,
	}
}

// BuildImpactFactorRow labels one base year of indicators with its journal.
func BuildImpactFactorRow(j *articlemeta.Journal, f analytics.ImpactFactor) ImpactFactorRow {
	return ImpactFactorRow{
		ScieloISSN:     j.ISSN,
		PrintISSN:      j.PrintISSN,
		ElectronicISSN: j.ElectronicISSN,
		JournalTitle:   j.Title,
		SubjectAreas:   append([]string(nil), j.SubjectAreas...),
		BaseYear:       f.BaseYear,
		Immediacy:      f.Immediacy,
		ImpactFactor1:  f.Factors[0],
		ImpactFactor2:  f.Factors[1],
		ImpactFactor3:  f.Factors[2],
		ImpactFactor4:  f.Factors[3],
		ImpactFactor5:  f.Factors[4],
	}
}
