package domain

// DataPage is one page of a filtered listing.
type DataPage[T any] struct {
	// PageNumber is 1-based.
	PageNumber int

	// PageSize is the requested size; 0 returns everything in one page.
	PageSize int

	PageCount int
	Total     int
	Items     []T
}

// NewDataPage slices items into the requested page.
// A page size of 0 returns all items as a single page; page numbers
// below 1 are treated as 1.
func NewDataPage[T any](items []T, pageNumber, pageSize int) DataPage[T] {
	if pageNumber < 1 {
		pageNumber = 1
	}
	total := len(items)
	if pageSize <= 0 {
		count := 0
		if total > 0 {
			count = 1
		}
		return DataPage[T]{
			PageNumber: 1,
			PageSize:   total,
			PageCount:  count,
			Total:      total,
			Items:      items,
		}
	}

	page := DataPage[T]{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		PageCount:  (total + pageSize - 1) / pageSize,
		Total:      total,
		Items:      []T{},
	}
	start := (pageNumber - 1) * pageSize
	if start >= total {
		return page
	}
	end := min(start+pageSize, total)
	page.Items = items[start:end]
	return page
}
