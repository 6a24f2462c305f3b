package access

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleRecord is shaped like a record returned by the access service.
const sampleRecord = `{
	"code": "S0102-67202009000300001",
	"journal": "0102-6720",
	"total": 31,
	"pdf": {
		"total": 12,
		"Y2019": {"total": 2, "M12": {"total": 2, "D31": 2}},
		"Y2020": {
			"total": 10,
			"M01": {"total": 7, "D01": 3, "D31": 4},
			"M02": {"total": 3, "D01": 3}
		}
	},
	"html": {
		"total": 19,
		"Y2020": {
			"total": 19,
			"M01": {"total": 19, "D15": 19}
		}
	}
}`

func decodeRecord(t *testing.T, data string) Record {
	t.Helper()
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(data), &rec))
	return rec
}

// monthRecord builds a record with n accesses of type t in one month.
func monthRecord(t, year, month string, n int) Record {
	return Record{
		t: Series{
			Total: n,
			Years: map[string]Year{
				"Y" + year: {
					Total: n,
					Months: map[string]Month{
						"M" + month: {Total: n, Days: map[string]int{"D01": n}},
					},
				},
			},
		},
	}
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	rec := decodeRecord(t, sampleRecord)

	assert.Len(t, rec, 2, "only access types are kept")
	assert.Contains(t, rec, TypePDF)
	assert.Contains(t, rec, TypeHTML)

	pdf := rec[TypePDF]
	assert.Equal(t, 12, pdf.Total)
	assert.NotContains(t, pdf.Years, "total")
	assert.Len(t, pdf.Years, 2)

	y2020 := pdf.Years["Y2020"]
	assert.Equal(t, 10, y2020.Total)
	assert.NotContains(t, y2020.Months, "total")

	jan := y2020.Months["M01"]
	assert.Equal(t, 7, jan.Total)
	assert.Equal(t, map[string]int{"D01": 3, "D31": 4}, jan.Days)
}

func TestRecord_UnmarshalJSON_Malformed(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"pdf": {"Y2020": "lots"}}`), &rec)
	assert.Error(t, err)
}

func TestAggregate_Monthly(t *testing.T) {
	rec := decodeRecord(t, sampleRecord)
	w := Window{From: "1500-01-01", Until: "2030-12-31", Granularity: Monthly}

	got := Aggregate([]Record{rec}, w)
	assert.Equal(t, Periods{
		"2019-12": {TypePDF: 2},
		"2020-01": {TypePDF: 7, TypeHTML: 19},
		"2020-02": {TypePDF: 3},
	}, got)
}

func TestAggregate_Daily(t *testing.T) {
	rec := decodeRecord(t, sampleRecord)
	w := Window{From: "2020-01-01", Until: "2020-01-31", Granularity: Daily}

	got := Aggregate([]Record{rec}, w)
	assert.Equal(t, Periods{
		"2020-01-01": {TypePDF: 3},
		"2020-01-15": {TypeHTML: 19},
		"2020-01-31": {TypePDF: 4},
	}, got)
}

func TestAggregate_MergesKeys(t *testing.T) {
	// Two keys of the same document, each with 5 PDF accesses in 2020-03.
	records := []Record{
		monthRecord(TypePDF, "2020", "03", 5),
		monthRecord(TypePDF, "2020", "03", 5),
	}
	w := Window{From: "2020-01-01", Until: "2020-12-31", Granularity: Monthly}

	got := Aggregate(records, w)
	require.Contains(t, got, "2020-03")
	assert.Equal(t, 10, got["2020-03"][TypePDF])
}

func TestAggregate_MonthlyWindow(t *testing.T) {
	records := []Record{
		monthRecord(TypePDF, "2019", "12", 4),
		monthRecord(TypePDF, "2020", "02", 6),
		monthRecord(TypePDF, "2020", "01", 9),
	}
	w := Window{From: "2020-01-01", Until: "2020-01-31", Granularity: Monthly}

	got := Aggregate(records, w)
	assert.Equal(t, Periods{"2020-01": {TypePDF: 9}}, got)
}

func TestAggregate_OutsideWindowIsSparse(t *testing.T) {
	records := []Record{monthRecord(TypeHTML, "2010", "05", 3)}
	w := Window{From: "2020-01-01", Until: "2020-12-31", Granularity: Monthly}

	assert.Empty(t, Aggregate(records, w))
}

func TestAggregate_PeriodsWithinWindow(t *testing.T) {
	rec := decodeRecord(t, sampleRecord)

	windows := []Window{
		{From: "2019-12-31", Until: "2020-01-15", Granularity: Daily},
		{From: "2020-01-10", Until: "2020-02-01", Granularity: Monthly},
		{From: "2019-01-01", Until: "2019-12-31", Granularity: Monthly},
	}
	for _, w := range windows {
		from, until := w.From, w.Until
		if w.Granularity == Monthly {
			from, until = from[:7], until[:7]
		}
		for period := range Aggregate([]Record{rec}, w) {
			assert.NotEqual(t, "total", period)
			assert.False(t, strings.Contains(period, "total"), "period %q", period)
			assert.GreaterOrEqual(t, period, from)
			assert.LessOrEqual(t, period, until)
		}
	}
}

func TestAggregate_SubtotalsNotCounted(t *testing.T) {
	rec := decodeRecord(t, sampleRecord)
	w := Window{From: "1500-01-01", Until: "2030-12-31", Granularity: Daily}

	sum := 0
	for _, counts := range Aggregate([]Record{rec}, w) {
		sum += counts.Total()
	}
	// Day counts only: 2 + 3 + 4 + 3 + 19
	assert.Equal(t, 31, sum)
}

func TestAggregate_Idempotent(t *testing.T) {
	records := []Record{
		decodeRecord(t, sampleRecord),
		monthRecord(TypePDF, "2020", "01", 1),
	}
	w := Window{From: "2019-01-01", Until: "2020-12-31", Granularity: Monthly}

	first := Aggregate(records, w)
	second := Aggregate(records, w)
	assert.Equal(t, first, second)

	first["2020-01"][TypePDF] = 1000
	third := Aggregate(records, w)
	assert.Equal(t, second, third)
}

func TestCounts_Total(t *testing.T) {
	c := Counts{TypeAbstract: 1, TypeHTML: 2, TypePDF: 3, TypeReadcube: 4}
	assert.Equal(t, 10, c.Total())
	assert.Equal(t, 0, Counts{}.Total())
}

func TestGranularity_String(t *testing.T) {
	assert.Equal(t, "monthly", Monthly.String())
	assert.Equal(t, "daily", Daily.String())
}

func TestPeriods_Keys(t *testing.T) {
	p := Periods{"2020-03": {}, "2019-12": {}, "2020-01": {}}
	assert.Equal(t, []string{"2019-12", "2020-01", "2020-03"}, p.Keys())
	assert.Empty(t, Periods{}.Keys())
}
