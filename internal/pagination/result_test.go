package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-grc/veridian/internal/pagination"
)

type row struct {
	ID   string
	Name string
}

func rowSortValue(r row) any { return r.Name }
func rowID(r row) string     { return r.ID }

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, pagination.DefaultLimit},
		{-5, 1},
		{1, 1},
		{42, 42},
		{100, 100},
		{101, pagination.MaxLimit},
		{100000, pagination.MaxLimit},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, pagination.ClampLimit(tc.in), "requested %d", tc.in)
	}
}

func TestBuildCursorResultOverflow(t *testing.T) {
	items := []row{{"a", "A"}, {"b", "B"}, {"c", "C"}, {"d", "D"}}

	result := pagination.BuildCursorResult(items, 3, rowSortValue, rowID, false, nil)
	assert.Len(t, result.Items, 3)
	assert.True(t, result.HasNextPage, "the overflow row proves a next page")
	assert.False(t, result.HasPreviousPage)
	require.NotNil(t, result.StartCursor)
	require.NotNil(t, result.EndCursor)

	start := pagination.DecodeCursor(*result.StartCursor)
	require.NotNil(t, start)
	assert.Equal(t, "a", start.TieBreakID)

	end := pagination.DecodeCursor(*result.EndCursor)
	require.NotNil(t, end)
	assert.Equal(t, "c", end.TieBreakID, "end cursor points at the last kept row")
}

func TestBuildCursorResultExactPage(t *testing.T) {
	items := []row{{"a", "A"}, {"b", "B"}}
	result := pagination.BuildCursorResult(items, 2, rowSortValue, rowID, true, nil)
	assert.Len(t, result.Items, 2)
	assert.False(t, result.HasNextPage)
	assert.True(t, result.HasPreviousPage)
}

func TestBuildCursorResultEmpty(t *testing.T) {
	result := pagination.BuildCursorResult(nil, 20, rowSortValue, rowID, false, nil)
	assert.Empty(t, result.Items)
	assert.False(t, result.HasNextPage)
	assert.Nil(t, result.StartCursor)
	assert.Nil(t, result.EndCursor)
	assert.Nil(t, result.TotalCount)
}

func TestBuildCursorResultTotalCount(t *testing.T) {
	total := 57
	result := pagination.BuildCursorResult([]row{{"a", "A"}}, 20, rowSortValue, rowID, false, &total)
	require.NotNil(t, result.TotalCount)
	assert.Equal(t, 57, *result.TotalCount)
}

func TestComparisonOperator(t *testing.T) {
	cases := []struct {
		order     pagination.SortOrder
		direction pagination.Direction
		want      string
	}{
		{pagination.Descending, pagination.Forward, "<"},
		{pagination.Descending, pagination.Backward, ">"},
		{pagination.Ascending, pagination.Forward, ">"},
		{pagination.Ascending, pagination.Backward, "<"},
	}
	for _, tc := range cases {
		got := pagination.ComparisonOperator(tc.order, tc.direction)
		assert.Equal(t, tc.want, got, "%s/%s", tc.order, tc.direction)
	}
}

func TestCursorCondition(t *testing.T) {
	cond := pagination.CursorCondition("", pagination.Forward)
	assert.Nil(t, cond.Cursor)
	assert.Equal(t, pagination.Forward, cond.Direction)

	cond = pagination.CursorCondition("garbage!!!", pagination.Backward)
	assert.Nil(t, cond.Cursor, "a bad cursor is treated as no cursor")
	assert.Equal(t, pagination.Backward, cond.Direction)

	token := pagination.EncodeCursor("x", "id-1", pagination.Backward)
	cond = pagination.CursorCondition(token, pagination.Forward)
	require.NotNil(t, cond.Cursor)
	assert.Equal(t, pagination.Backward, cond.Direction, "the embedded direction wins")
}

func TestBuildOffsetResult(t *testing.T) {
	items := []row{{"a", "A"}, {"b", "B"}}

	result := pagination.BuildOffsetResult(items, 10, 2, 0)
	assert.Equal(t, 10, result.Total)
	assert.True(t, result.HasMore)

	result = pagination.BuildOffsetResult(items, 10, 2, 8)
	assert.False(t, result.HasMore, "last page has no more")

	result = pagination.BuildOffsetResult[row](nil, 0, 20, 0)
	assert.False(t, result.HasMore)
	assert.Empty(t, result.Items)
}

func TestPageNumbers(t *testing.T) {
	info := pagination.PageNumbers(100, 20, 0)
	assert.Equal(t, 1, info.CurrentPage)
	assert.Equal(t, 5, info.TotalPages)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, info.Pages)

	info = pagination.PageNumbers(400, 20, 180)
	assert.Equal(t, 10, info.CurrentPage)
	assert.Equal(t, 20, info.TotalPages)
	assert.Equal(t, []int{7, 8, 9, 10, 11, 12, 13}, info.Pages, "window centers on the current page")

	info = pagination.PageNumbers(400, 20, 380)
	assert.Equal(t, 20, info.CurrentPage)
	assert.Equal(t, []int{14, 15, 16, 17, 18, 19, 20}, info.Pages, "window clamps at the end")

	info = pagination.PageNumbers(0, 20, 0)
	assert.Equal(t, 1, info.CurrentPage)
	assert.Equal(t, 1, info.TotalPages)
	assert.Equal(t, []int{1}, info.Pages)
}
