package queryparams

import (
	"math"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
	DefaultSortBy  = "created_at"
	DefaultOrderBy = "desc"
)

// ListParams carries paging, sorting and the filters shared by the form lists.
type ListParams struct {
	Page      int    `query:"page"`
	PerPage   int    `query:"per_page"`
	SortBy    string `query:"sort_by"`
	OrderBy   string `query:"order_by"`
	Status    string `query:"status"`
	DriverNIK string `query:"driver_nik"`
	Date      string `query:"date"`
}

func DefaultListParams(sortBy string) ListParams {
	return ListParams{
		Page:    DefaultPage,
		PerPage: DefaultPerPage,
		SortBy:  sortBy,
		OrderBy: DefaultOrderBy,
	}
}

// Validate clamps paging values and normalises ordering in place.
func (p *ListParams) Validate() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	p.OrderBy = strings.ToLower(p.OrderBy)
	if p.OrderBy != "asc" && p.OrderBy != "desc" {
		p.OrderBy = DefaultOrderBy
	}
	p.Status = strings.TrimSpace(strings.ToLower(p.Status))
	p.DriverNIK = strings.TrimSpace(p.DriverNIK)
	p.Date = strings.TrimSpace(p.Date)
}

func (p ListParams) CalculateOffset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

func CalculateTotalPages(totalItems int64, perPage int) int {
	if perPage <= 0 || totalItems <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalItems) / float64(perPage)))
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
}

func NewPaginationMeta(params ListParams, totalItems int64) PaginationMeta {
	return PaginationMeta{
		CurrentPage: params.Page,
		PerPage:     params.PerPage,
		TotalItems:  totalItems,
		TotalPages:  CalculateTotalPages(totalItems, params.PerPage),
	}
}

// PaginatedResult is what list services hand to handlers.
type PaginatedResult[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}
