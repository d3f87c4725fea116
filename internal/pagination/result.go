package pagination

const (
	// DefaultLimit applies when a caller does not request a page size.
	DefaultLimit = 20
	// MaxLimit bounds any requested page size.
	MaxLimit = 100

	// pageWindow bounds the sliding window of page numbers offered to
	// offset-based clients.
	pageWindow = 7
)

// ClampLimit returns DefaultLimit when no limit was requested and clamps any
// supplied value into [1, MaxLimit], so no caller gets an unbounded or
// zero-sized page.
func ClampLimit(requested int) int {
	if requested == 0 {
		return DefaultLimit
	}
	if requested < 1 {
		return 1
	}
	if requested > MaxLimit {
		return MaxLimit
	}
	return requested
}

// CursorResult is a cursor-paginated page of items.
type CursorResult[T any] struct {
	Items           []T     `json:"items"`
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
	TotalCount      *int    `json:"totalCount,omitempty"`
}

// BuildCursorResult shapes a page from a limit+1 fetch: the caller queries
// one row beyond the page size, so an overflow row proves a next page
// without a separate count. hasPreviousPage is passed through from the
// caller's knowledge of whether an input cursor was supplied.
func BuildCursorResult[T any](items []T, limit int, sortValue func(T) any, id func(T) string, hasPreviousPage bool, totalCount *int) CursorResult[T] {
	result := CursorResult[T]{
		HasPreviousPage: hasPreviousPage,
		TotalCount:      totalCount,
	}
	if len(items) > limit {
		result.HasNextPage = true
		items = items[:limit]
	}
	result.Items = items
	if len(items) > 0 {
		first, last := items[0], items[len(items)-1]
		start := EncodeCursor(sortValue(first), id(first), Forward)
		end := EncodeCursor(sortValue(last), id(last), Forward)
		result.StartCursor = &start
		result.EndCursor = &end
	}
	return result
}

// Condition is the resolved cursor predicate for a listing query.
type Condition struct {
	Cursor    *DecodedCursor
	Direction Direction
}

// CursorCondition decodes an opaque cursor and resolves the effective
// traversal direction; a direction embedded in the cursor takes precedence
// over the caller's default.
func CursorCondition(token string, defaultDirection Direction) Condition {
	if defaultDirection == "" {
		defaultDirection = Forward
	}
	cursor := DecodeCursor(token)
	direction := defaultDirection
	if cursor != nil && cursor.Direction != "" {
		direction = cursor.Direction
	}
	return Condition{Cursor: cursor, Direction: direction}
}

// ComparisonOperator resolves the operator a query predicate needs for the
// combination of declared sort order and traversal direction.
func ComparisonOperator(order SortOrder, direction Direction) string {
	if order == Descending {
		if direction == Backward {
			return ">"
		}
		return "<"
	}
	if direction == Backward {
		return "<"
	}
	return ">"
}

// OffsetResult is an offset-paginated page of items for legacy callers.
type OffsetResult[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// BuildOffsetResult shapes an offset page.
func BuildOffsetResult[T any](items []T, total, limit, offset int) OffsetResult[T] {
	return OffsetResult[T]{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(items) < total,
	}
}

// PageInfo describes the page-number controls for offset-based clients.
type PageInfo struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Pages       []int `json:"pages"`
}

// PageNumbers computes the current page, total pages, and a sliding window
// of at most seven page numbers centered on the current page and clamped to
// [1, totalPages]. An empty listing reports one page rather than zero, so
// pager controls always have a current page to render.
func PageNumbers(total, limit, currentOffset int) PageInfo {
	if limit <= 0 {
		limit = DefaultLimit
	}
	totalPages := (total + limit - 1) / limit
	currentPage := currentOffset/limit + 1
	// ceil(0/limit) would be zero pages; clamp to one.
	if totalPages < 1 {
		totalPages = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}
	if currentPage < 1 {
		currentPage = 1
	}

	start := currentPage - pageWindow/2
	if start > totalPages-pageWindow+1 {
		start = totalPages - pageWindow + 1
	}
	if start < 1 {
		start = 1
	}
	end := start + pageWindow - 1
	if end > totalPages {
		end = totalPages
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return PageInfo{CurrentPage: currentPage, TotalPages: totalPages, Pages: pages}
}
