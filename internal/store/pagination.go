package store

// OffsetPage is the shape list endpoints respond with.
type OffsetPage struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// PageOf slices an in-memory list into an offset page. Pages are 1-based;
// out-of-range parameters are clamped and a page past the end yields an
// empty item list, never an error or a panic.
func PageOf[T any](items []T, page, pageSize int) *OffsetPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	total := len(items)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	totalPages := total / pageSize
	if total%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      items[start:end],
		Total:      int64(total),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
