package pagination_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-grc/veridian/internal/pagination"
)

func TestCursorRoundTripString(t *testing.T) {
	token := pagination.EncodeCursor("Payroll", "sys-42", pagination.Forward)
	require.NotEmpty(t, token)

	decoded := pagination.DecodeCursor(token)
	require.NotNil(t, decoded)
	assert.Equal(t, "Payroll", decoded.SortValue)
	assert.Equal(t, "sys-42", decoded.TieBreakID)
	assert.Equal(t, pagination.Forward, decoded.Direction)
}

func TestCursorRoundTripNumber(t *testing.T) {
	token := pagination.EncodeCursor(17, "sys-1", pagination.Backward)
	decoded := pagination.DecodeCursor(token)
	require.NotNil(t, decoded)
	// Numbers come back as float64 through the JSON wire form.
	assert.Equal(t, float64(17), decoded.SortValue)
	assert.Equal(t, pagination.Backward, decoded.Direction)
}

func TestCursorRoundTripTime(t *testing.T) {
	at := time.Date(2026, 2, 14, 9, 30, 15, 123456789, time.FixedZone("CET", 3600))
	token := pagination.EncodeCursor(at, "sys-9", pagination.Forward)
	decoded := pagination.DecodeCursor(token)
	require.NotNil(t, decoded)

	got, ok := decoded.SortValue.(time.Time)
	require.True(t, ok, "date strings revive as time.Time")
	assert.True(t, got.Equal(at))
	assert.Equal(t, time.UTC, got.Location())
}

func TestCursorIsOpaque(t *testing.T) {
	token := pagination.EncodeCursor("2026-02-14T09:30:15Z", "sys-9", pagination.Forward)
	assert.NotContains(t, token, "sys-9")
	assert.NotContains(t, token, "=", "raw url encoding carries no padding")
}

func TestCursorDefaultDirection(t *testing.T) {
	token := pagination.EncodeCursor("a", "id-1", "")
	decoded := pagination.DecodeCursor(token)
	require.NotNil(t, decoded)
	assert.Equal(t, pagination.Forward, decoded.Direction)
}

func TestDecodeCursorMalformed(t *testing.T) {
	cases := map[string]string{
		"empty token":       "",
		"not base64":        "!!!not-base64!!!",
		"not json":          base64.RawURLEncoding.EncodeToString([]byte("plain text")),
		"missing id":        base64.RawURLEncoding.EncodeToString([]byte(`{"v":"x","d":"forward"}`)),
		"missing value":     base64.RawURLEncoding.EncodeToString([]byte(`{"id":"a","d":"forward"}`)),
		"unknown direction": base64.RawURLEncoding.EncodeToString([]byte(`{"v":"x","id":"a","d":"sideways"}`)),
	}
	for name, token := range cases {
		assert.Nil(t, pagination.DecodeCursor(token), name)
	}
}

func TestDecodeCursorEmptyDirectionDefaultsForward(t *testing.T) {
	token := base64.RawURLEncoding.EncodeToString([]byte(`{"v":"x","id":"a"}`))
	decoded := pagination.DecodeCursor(token)
	require.NotNil(t, decoded)
	assert.Equal(t, pagination.Forward, decoded.Direction)
}

func TestParseCursorValue(t *testing.T) {
	got := pagination.ParseCursorValue("2026-02-14T09:30:15Z")
	at, ok := got.(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2026, at.Year())

	got = pagination.ParseCursorValue("2026-02-14T09:30:15.123456789+01:00")
	_, ok = got.(time.Time)
	assert.True(t, ok)

	assert.Equal(t, "not a date", pagination.ParseCursorValue("not a date"))
	assert.Equal(t, "2026-02-14", pagination.ParseCursorValue("2026-02-14"), "bare dates pass through")
	assert.Equal(t, float64(3), pagination.ParseCursorValue(float64(3)))
}

func TestCursorTamperedPayload(t *testing.T) {
	token := pagination.EncodeCursor("x", "id-1", pagination.Forward)
	tampered := strings.Map(func(r rune) rune {
		if r == 'A' {
			return 'B'
		}
		return r
	}, token) + "garbage!"
	assert.Nil(t, pagination.DecodeCursor(tampered))
}
