package utils

// PageInfo describes one page of an ordered result set. Start and End are
// slice bounds into the full list; HasPrev/HasNext drive navigation buttons
// at the rendering layer.
type PageInfo struct {
	Page       int
	TotalPages int
	Start      int
	End        int
	HasPrev    bool
	HasNext    bool
}

// Paginate computes a clamped page over total items. The requested page is
// clamped into [0, totalPages-1]; an empty input yields an empty page with no
// navigation affordances. Pure and deterministic.
func Paginate(total, page, pageSize int) PageInfo {
	if total <= 0 || pageSize <= 0 {
		return PageInfo{}
	}

	totalPages := (total + pageSize - 1) / pageSize
	if page < 0 {
		page = 0
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}

	start := page * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	return PageInfo{
		Page:       page,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
		HasPrev:    page > 0,
		HasNext:    page < totalPages-1,
	}
}
