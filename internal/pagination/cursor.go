// Package pagination shapes cursor-based and offset-based listing responses.
//
// Cursors are opaque tokens encoding the last-seen sort position plus a
// tie-breaking id, which keeps pages stable under concurrent inserts where
// offsets would drift. The tie-break id exists because sort values alone
// (e.g. duplicate timestamps) do not give a total order.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"time"
)

// Direction is the traversal direction embedded in a cursor.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// SortOrder is the declared ordering of the underlying listing query.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// DecodedCursor is the position recovered from an opaque cursor.
type DecodedCursor struct {
	SortValue  any
	TieBreakID string
	Direction  Direction
}

type cursorWire struct {
	V  any    `json:"v"`
	ID string `json:"id"`
	D  string `json:"d"`
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)

// EncodeCursor serializes a sort position into an opaque token. Callers must
// treat the result as a black box. Time values are normalized to RFC3339
// UTC so they round-trip through DecodeCursor exactly. An empty direction
// defaults to Forward.
func EncodeCursor(sortValue any, tieBreakID string, direction Direction) string {
	if direction == "" {
		direction = Forward
	}
	if t, ok := sortValue.(time.Time); ok {
		sortValue = t.UTC().Format(time.RFC3339Nano)
	}
	raw, err := json.Marshal(cursorWire{V: sortValue, ID: tieBreakID, D: string(direction)})
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor recovers the position from an opaque token. Any malformation
// (bad encoding, invalid structure, missing fields) yields nil rather than
// an error: a bad cursor is treated as no cursor at all.
func DecodeCursor(token string) *DecodedCursor {
	if token == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	var wire cursorWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil
	}
	if wire.ID == "" || wire.V == nil {
		return nil
	}
	direction := Direction(wire.D)
	switch direction {
	case Forward, Backward:
	case "":
		direction = Forward
	default:
		return nil
	}
	return &DecodedCursor{
		SortValue:  ParseCursorValue(wire.V),
		TieBreakID: wire.ID,
		Direction:  direction,
	}
}

// ParseCursorValue revives ISO-8601 date strings back into time.Time and
// passes every other value through unchanged.
func ParseCursorValue(v any) any {
	s, ok := v.(string)
	if !ok || !isoDatePattern.MatchString(s) {
		return v
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return v
	}
	return t
}
