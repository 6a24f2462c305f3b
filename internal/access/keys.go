package access

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fabiobatalha/processing/internal/articlemeta"
)

// ErrMalformedPID is returned for identifiers too short for the legacy transform.
var ErrMalformedPID = errors.New("malformed PID")

// pdfPathPattern matches the file system path at the end of a PDF URL.
var pdfPathPattern = regexp.MustCompile(`/pdf.*\.pdf$`)

// legacyMinLen is the shortest identifier LegacyKey can transform.
const legacyMinLen = 14

// LegacyKey rewrites a canonical PID into the older identifier scheme,
// moving the 2-digit year into parentheses:
//
//	S0102-67202009000300001 -> S0102-6720(09)000300001
func LegacyKey(pid string) (string, error) {
	if len(pid) < legacyMinLen {
		return "", fmt.Errorf("%w: %q has %d characters, need at least %d", ErrMalformedPID, pid, len(pid), legacyMinLen)
	}
	return pid[0:10] + "(" + pid[12:14] + ")" + pid[14:], nil
}

// PDFKeys extracts the upper-cased PDF paths from full-text URLs.
// URLs without a PDF path contribute nothing.
func PDFKeys(urls []string) []string {
	var keys []string
	for _, u := range urls {
		if path := pdfPathPattern.FindString(u); path != "" {
			keys = append(keys, strings.ToUpper(path))
		}
	}
	return keys
}

// DeriveKeys returns every key under which accesses to doc may have been
// recorded: the PID, its legacy form, the DOI and the PDF paths, in that order.
func DeriveKeys(doc *articlemeta.Document) ([]string, error) {
	legacy, err := LegacyKey(doc.PID)
	if err != nil {
		return nil, err
	}

	keys := []string{doc.PID, legacy}
	if doc.DOI != "" {
		keys = append(keys, doc.DOI)
	}
	keys = append(keys, PDFKeys(doc.PDFURLs())...)

	return keys, nil
}
