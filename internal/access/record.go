// Package access joins access-log statistics with catalog documents.
//
// Access events for one document may be recorded under several keys (the
// canonical PID, the legacy PID and PDF file paths). The package derives
// those keys, fetches the raw per-key records and folds them into per-period
// counts.
package access

import (
	"encoding/json"
	"fmt"
)

// Access types recognized in raw records.
const (
	TypeAbstract = "abstract"
	TypeHTML     = "html"
	TypePDF      = "pdf"
	TypeReadcube = "readcube"
)

// Types lists the recognized access types in output order.
var Types = []string{TypeAbstract, TypeHTML, TypePDF, TypeReadcube}

// totalKey is the redundant subtotal present at every level of a record.
const totalKey = "total"

// Record is the raw access history recorded under a single key, keyed by
// access type. Keys other than the recognized access types are dropped at
// decode time.
type Record map[string]Series

// Series is the history of one access type: Y<yyyy> -> Year.
type Series struct {
	Total int
	Years map[string]Year
}

// Year is Mmm -> Month.
type Year struct {
	Total  int
	Months map[string]Month
}

// Month holds the month's count in Total and Ddd -> count in Days.
type Month struct {
	Total int
	Days  map[string]int
}

// UnmarshalJSON decodes a raw access record, ignoring non-access keys
// such as code, journal or issue.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rec := make(Record)
	for _, t := range Types {
		v, ok := raw[t]
		if !ok {
			continue
		}
		var s Series
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("decoding %s: %w", t, err)
		}
		rec[t] = s
	}
	*r = rec
	return nil
}

// UnmarshalJSON splits the total subtotal off the year entries.
func (s *Series) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Years = make(map[string]Year, len(raw))
	for k, v := range raw {
		if k == totalKey {
			if err := json.Unmarshal(v, &s.Total); err != nil {
				return fmt.Errorf("decoding total: %w", err)
			}
			continue
		}
		var y Year
		if err := json.Unmarshal(v, &y); err != nil {
			return fmt.Errorf("decoding %s: %w", k, err)
		}
		s.Years[k] = y
	}
	return nil
}

// UnmarshalJSON splits the total subtotal off the month entries.
func (y *Year) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	y.Months = make(map[string]Month, len(raw))
	for k, v := range raw {
		if k == totalKey {
			if err := json.Unmarshal(v, &y.Total); err != nil {
				return fmt.Errorf("decoding total: %w", err)
			}
			continue
		}
		var m Month
		if err := json.Unmarshal(v, &m); err != nil {
			return fmt.Errorf("decoding %s: %w", k, err)
		}
		y.Months[k] = m
	}
	return nil
}

// UnmarshalJSON splits the total subtotal off the day counts.
func (m *Month) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Total = raw[totalKey]
	delete(raw, totalKey)
	m.Days = raw
	return nil
}
