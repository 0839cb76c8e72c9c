package catalog

import "storefront-sync/internal/models"

// PageSize is the number of products on one listing page
const PageSize = 8

// Page is one slice of a listing
type Page struct {
	Items     []models.Product
	Page      int // effective page, 1-based
	PageCount int
	Total     int
}

// PageCount is ceil(n / PageSize), and at least one
func PageCount(n int) int {
	count := (n + PageSize - 1) / PageSize
	if count < 1 {
		return 1
	}
	return count
}

// Paginate returns the requested page of filtered. A page past the end is
// clamped to the last page; a page below one is treated as the first.
func Paginate(filtered []models.Product, page int) Page {
	pageCount := PageCount(len(filtered))
	if page > pageCount {
		page = pageCount
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	if start > end {
		start = end
	}

	return Page{
		Items:     filtered[start:end],
		Page:      page,
		PageCount: pageCount,
		Total:     len(filtered),
	}
}

// Listing is the query and page state of a product listing view
type Listing struct {
	query string
	page  int
}

// NewListing starts on page one with no query
func NewListing() *Listing {
	return &Listing{page: 1}
}

func (l *Listing) Query() string { return l.query }

// RequestedPage is the page asked for, before clamping
func (l *Listing) RequestedPage() int { return l.page }

// SetQuery changes the search text and goes back to page one
func (l *Listing) SetQuery(q string) {
	l.query = q
	l.page = 1
}

func (l *Listing) SetPage(page int) {
	l.page = page
}

// View filters and paginates products with the current state
func (l *Listing) View(products []models.Product) Page {
	return Paginate(Filter(products, l.query), l.page)
}
