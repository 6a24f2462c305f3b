package validate

import (
	"errors"
	"testing"
)

func TestISSN(t *testing.T) {
	tests := []struct {
		issn string
		want bool
	}{
		{"0102-6720", true},
		{"0034-8910", true},
		{"1518-8787", true},
		{"2049-3630", true},
		{"0000-006X", true},
		{"0000-006x", true},
		{"0102-6721", false},
		{"01026720", false},
		{"0102-672", false},
		{"ABCD-6720", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ISSN(tt.issn); got != tt.want {
			t.Errorf("ISSN(%q) = %v, want %v", tt.issn, got, tt.want)
		}
	}
}

func TestISSNs(t *testing.T) {
	valid, invalid := ISSNs([]string{"0102-6720", "bogus", "0102-6720", "0000-006x"})

	if len(valid) != 2 || valid[0] != "0102-6720" || valid[1] != "0000-006X" {
		t.Errorf("valid = %v, want [0102-6720 0000-006X]", valid)
	}
	if len(invalid) != 1 || invalid[0] != "bogus" {
		t.Errorf("invalid = %v, want [bogus]", invalid)
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		date    string
		wantErr bool
	}{
		{"2020-03-01", false},
		{"1500-01-01", false},
		{"2020-02-30", true},
		{"2020-03", true},
		{"01/03/2020", true},
		{"", true},
	}
	for _, tt := range tests {
		err := Date(tt.date)
		if (err != nil) != tt.wantErr {
			t.Errorf("Date(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Date(%q) error = %v, want ErrInvalidDate", tt.date, err)
		}
	}
}

func TestToday(t *testing.T) {
	if err := Date(Today()); err != nil {
		t.Errorf("Today() = %q is not a valid date", Today())
	}
}
