// Package pagination implements keyset paging over a descending int64 sort
// key. Cursors are opaque to clients and only ever point backwards.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows one page can request.
	MaxLimit = 100

	cursorVersion = "k1:"
)

var errMalformedCursor = errors.New("malformed cursor")

// Params holds the raw paging inputs from a request.
type Params struct {
	Limit  int
	Cursor string
}

// Window is a validated page request: at most Limit rows whose key is
// strictly below Before, or the first page when Before is nil.
type Window struct {
	Limit  int
	Before *int64
}

// Window normalizes the limit and decodes the cursor.
func (p Params) Window() (Window, error) {
	w := Window{Limit: NormalizeLimit(p.Limit)}
	if strings.TrimSpace(p.Cursor) == "" {
		return w, nil
	}
	key, err := decodeCursor(p.Cursor)
	if err != nil {
		return Window{}, err
	}
	w.Before = &key
	return w, nil
}

// Fetch is the row count to query: one extra row reveals whether another
// page follows.
func (w Window) Fetch() int {
	return w.Limit + 1
}

// NormalizeLimit clamps limit into [1, MaxLimit], defaulting non-positive
// values to DefaultLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Trim cuts rows fetched with w.Fetch() down to the page and returns the
// cursor for the next page, or "" when rows was the last page.
func Trim[T any](rows []T, w Window, key func(T) int64) ([]T, string) {
	if len(rows) <= w.Limit {
		return rows, ""
	}
	rows = rows[:w.Limit]
	return rows, encodeCursor(key(rows[len(rows)-1]))
}

func encodeCursor(key int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorVersion + strconv.FormatInt(key, 10)))
}

func decodeCursor(value string) (int64, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errMalformedCursor, err)
	}
	raw, ok := strings.CutPrefix(string(decoded), cursorVersion)
	if !ok {
		return 0, errMalformedCursor
	}
	key, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errMalformedCursor, err)
	}
	return key, nil
}
