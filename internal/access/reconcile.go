package access

import (
	"context"
	"errors"
	"fmt"
)

// Lookup fetches the raw access record stored under a key.
// It returns a nil Record and a nil error when the key has no history.
type Lookup interface {
	Lookup(ctx context.Context, key string) (Record, error)
}

// LookupError reports an upstream failure for one key.
type LookupError struct {
	Key string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("looking up accesses for %s: %v", e.Key, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// IsLookupError reports whether err carries a *LookupError.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

// Reconcile looks up every key in order and returns the records found.
// Keys without history are skipped. The first upstream failure aborts and
// is returned as a *LookupError.
func Reconcile(ctx context.Context, lookup Lookup, keys []string) ([]Record, error) {
	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		rec, err := lookup.Lookup(ctx, key)
		if err != nil {
			return nil, &LookupError{Key: key, Err: err}
		}
		if len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
