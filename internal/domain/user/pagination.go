package user

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total       int64 // Total number of matching records
	Page        int64 // Current page number (1-based)
	Limit       int64 // Number of records per page
	Offset      int64 // Number of records skipped
	TotalPages  int64 // Total number of pages
	HasNext     bool
	HasPrevious bool
}

// NewPagination derives page metadata from an offset window.
func NewPagination(total, offset, limit int64) *Pagination {
	var totalPages, page int64 = 0, 1
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
		page = offset/limit + 1
	}

	return &Pagination{
		Total:       total,
		Page:        page,
		Limit:       limit,
		Offset:      offset,
		TotalPages:  totalPages,
		HasNext:     offset+limit < total,
		HasPrevious: offset > 0,
	}
}
