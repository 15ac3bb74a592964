package pagination

// DefaultPageSize is the number of products shown per catalog page.
const DefaultPageSize = 9

// TotalPages returns ceil(count / size). It is 0 for an empty collection.
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// Clamp keeps page within [1, max(1, totalPages)].
func Clamp(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Bounds returns the half-open slice range [start, end) of page within a
// collection of count items. page must already be clamped.
func Bounds(page, size, count int) (start, end int) {
	start = (page - 1) * size
	if start > count {
		start = count
	}
	end = start + size
	if end > count {
		end = count
	}
	return start, end
}

// Page slices items to the given 1-based page.
func Page[T any](items []T, page, size int) []T {
	start, end := Bounds(page, size, len(items))
	return items[start:end]
}

// Link is one entry of a pagination control: a page number or a gap.
type Link struct {
	Page    int  `json:"page,omitempty"`
	Gap     bool `json:"gap,omitempty"`
	Current bool `json:"current,omitempty"`
}

// Window lists the page links to render: the first and last pages, delta
// pages either side of current, and gaps in between. It is empty when there
// is at most one page, since no control is shown then.
func Window(current, totalPages, delta int) []Link {
	if totalPages <= 1 {
		return nil
	}
	current = Clamp(current, totalPages)

	lo, hi := max(1, current-delta), min(totalPages, current+delta)
	links := make([]Link, 0, hi-lo+5)

	add := func(p int) {
		links = append(links, Link{Page: p, Current: p == current})
	}

	if lo > 1 {
		add(1)
		if lo > 2 {
			links = append(links, Link{Gap: true})
		}
	}
	for p := lo; p <= hi; p++ {
		add(p)
	}
	if hi < totalPages {
		if hi < totalPages-1 {
			links = append(links, Link{Gap: true})
		}
		add(totalPages)
	}
	return links
}
