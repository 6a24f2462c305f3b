package access

import (
	"fmt"
	"sort"
)

// Granularity is the time resolution of aggregated periods.
type Granularity int

const (
	// Monthly aggregates into YYYY-MM periods.
	Monthly Granularity = iota
	// Daily aggregates into YYYY-MM-DD periods.
	Daily
)

func (g Granularity) String() string {
	switch g {
	case Monthly:
		return "monthly"
	case Daily:
		return "daily"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

// monthPrefixLen is the length of a YYYY-MM period.
const monthPrefixLen = 7

// Window selects which periods are aggregated. From and Until are
// YYYY-MM-DD dates, both inclusive.
type Window struct {
	From        string
	Until       string
	Granularity Granularity
}

// contains reports whether period lies inside the window, comparing at the
// period's precision.
func (w Window) contains(period string) bool {
	from, until := w.From, w.Until
	if w.Granularity == Monthly {
		from, until = truncate(from, monthPrefixLen), truncate(until, monthPrefixLen)
	}
	return period >= from && period <= until
}

// Counts maps access type to number of accesses.
type Counts map[string]int

// Total is the sum of the recognized access types.
func (c Counts) Total() int {
	total := 0
	for _, t := range Types {
		total += c[t]
	}
	return total
}

// Periods maps a YYYY-MM or YYYY-MM-DD period to its counts. Periods with
// no accesses inside the window are absent.
type Periods map[string]Counts

// add accumulates n accesses of type t into period.
func (p Periods) add(period, t string, n int) {
	c, ok := p[period]
	if !ok {
		c = make(Counts)
		p[period] = c
	}
	c[t] += n
}

// Keys returns the periods in chronological order.
func (p Periods) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Aggregate folds the records found for one document into per-period counts.
// Records add up: the same period reported under two keys is summed. The
// subtotals carried by the records are ignored except for the month total,
// which is the month's count under monthly granularity.
func Aggregate(records []Record, w Window) Periods {
	result := make(Periods)
	for _, rec := range records {
		for _, t := range Types {
			series, ok := rec[t]
			if !ok {
				continue
			}
			switch w.Granularity {
			case Daily:
				aggregateDaily(result, t, series, w)
			default:
				aggregateMonthly(result, t, series, w)
			}
		}
	}
	return result
}

func aggregateMonthly(result Periods, t string, s Series, w Window) {
	for year, months := range s.Years {
		for month, m := range months.Months {
			period := stripPrefix(year) + "-" + stripPrefix(month)
			if !w.contains(period) {
				continue
			}
			result.add(period, t, m.Total)
		}
	}
}

func aggregateDaily(result Periods, t string, s Series, w Window) {
	for year, months := range s.Years {
		for month, m := range months.Months {
			for day, n := range m.Days {
				period := stripPrefix(year) + "-" + stripPrefix(month) + "-" + stripPrefix(day)
				if !w.contains(period) {
					continue
				}
				result.add(period, t, n)
			}
		}
	}
}

// stripPrefix drops the one-character marker of Y2009, M03 and D01 keys.
func stripPrefix(key string) string {
	if key == "" {
		return ""
	}
	return key[1:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
