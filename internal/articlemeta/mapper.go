package articlemeta

import (
	"encoding/json"
	"strings"
)

// identifier is one entry of an identifiers page.
type identifier struct {
	Code           code   `json:"code"`
	Collection     string `json:"collection"`
	ProcessingDate string `json:"processing_date"`
}

// identifiersPage is the envelope of the identifiers endpoints.
type identifiersPage struct {
	Meta struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
		Total  int `json:"total"`
	} `json:"meta"`
	Objects []identifier `json:"objects"`
}

// code accepts both a plain string and a list of strings. Journal
// identifiers carry their ISSNs as a list; the first one is the code.
type code string

func (c *code) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = code(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		*c = code(list[0])
	}
	return nil
}

// articleDTO is the catalog's JSON representation of an article.
type articleDTO struct {
	Code             string                       `json:"code"`
	Collection       string                       `json:"collection"`
	DOI              string                       `json:"doi"`
	Fulltexts        map[string]map[string]string `json:"fulltexts"`
	PublicationDate  string                       `json:"publication_date"`
	ProcessingDate   string                       `json:"processing_date"`
	DocumentType     string                       `json:"document_type"`
	Languages        []string                     `json:"languages"`
	OriginalLanguage string                       `json:"original_language"`
	OriginalTitle    string                       `json:"original_title"`
	TranslatedTitles map[string]string            `json:"translated_titles"`

	MixedAffiliations      []Affiliation `json:"mixed_affiliations"`
	NormalizedAffiliations []Affiliation `json:"normalized_affiliations"`

	Issue struct {
		Volume           string `json:"volume"`
		Number           string `json:"number"`
		SupplementVolume string `json:"supplement_volume"`
		SupplementNumber string `json:"supplement_number"`
	} `json:"issue"`

	Journal journalDTO `json:"journal"`
}

// journalDTO is the catalog's JSON representation of a journal.
type journalDTO struct {
	ScieloISSN       string   `json:"scielo_issn"`
	PrintISSN        string   `json:"print_issn"`
	ElectronicISSN   string   `json:"electronic_issn"`
	Collection       string   `json:"collection"`
	Title            string   `json:"title"`
	AbbreviatedTitle string   `json:"abbreviated_title"`
	SubjectAreas     []string `json:"subject_areas"`
}

// mapDocument converts the wire representation into a Document.
func mapDocument(dto articleDTO) *Document {
	doc := &Document{
		PID:                    strings.TrimSpace(dto.Code),
		Collection:             dto.Collection,
		DOI:                    strings.TrimSpace(dto.DOI),
		Fulltexts:              dto.Fulltexts,
		PublicationDate:        dto.PublicationDate,
		ProcessingDate:         dto.ProcessingDate,
		DocumentType:           dto.DocumentType,
		Languages:              dto.Languages,
		OriginalLanguage:       dto.OriginalLanguage,
		OriginalTitle:          dto.OriginalTitle,
		TranslatedTitles:       dto.TranslatedTitles,
		MixedAffiliations:      dto.MixedAffiliations,
		NormalizedAffiliations: dto.NormalizedAffiliations,
		Volume:                 dto.Issue.Volume,
		Issue:                  dto.Issue.Number,
		SupplementVolume:       dto.Issue.SupplementVolume,
		SupplementIssue:        dto.Issue.SupplementNumber,
		Journal:                mapJournal(dto.Journal),
	}

	// Journals embedded in articles may omit their collection
	if doc.Journal.Collection == "" {
		doc.Journal.Collection = doc.Collection
	}

	return doc
}

// mapJournal converts the wire representation into a Journal.
func mapJournal(dto journalDTO) Journal {
	return Journal{
		ISSN:             dto.ScieloISSN,
		PrintISSN:        dto.PrintISSN,
		ElectronicISSN:   dto.ElectronicISSN,
		Collection:       dto.Collection,
		Title:            dto.Title,
		AbbreviatedTitle: dto.AbbreviatedTitle,
		SubjectAreas:     dto.SubjectAreas,
	}
}
