// Package validate checks the ISSNs and dates given on the command line.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the accepted date format.
const DateLayout = "2006-01-02"

// DefaultFromDate is the lower bound used when none is given.
const DefaultFromDate = "1500-01-01"

var issnPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{3}[0-9X]$`)

// ErrInvalidDate is returned for dates outside DateLayout.
var ErrInvalidDate = errors.New("invalid date")

// ISSN reports whether issn is well formed and carries a valid check digit.
func ISSN(issn string) bool {
	issn = strings.ToUpper(strings.TrimSpace(issn))
	if !issnPattern.MatchString(issn) {
		return false
	}
	digits := strings.Replace(issn, "-", "", 1)

	sum := 0
	for i := 0; i < 7; i++ {
		sum += int(digits[i]-'0') * (8 - i)
	}
	check := (11 - sum%11) % 11

	want := byte('0' + check)
	if check == 10 {
		want = 'X'
	}
	return digits[7] == want
}

// ISSNs splits issns into valid and invalid ones, normalized to upper case
// and without duplicates.
func ISSNs(issns []string) (valid, invalid []string) {
	seen := make(map[string]bool, len(issns))
	for _, raw := range issns {
		issn := strings.ToUpper(strings.TrimSpace(raw))
		if seen[issn] {
			continue
		}
		seen[issn] = true
		if ISSN(issn) {
			valid = append(valid, issn)
		} else {
			invalid = append(invalid, raw)
		}
	}
	return valid, invalid
}

// Date checks that s is a YYYY-MM-DD calendar date.
func Date(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

// Today returns the current date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}
