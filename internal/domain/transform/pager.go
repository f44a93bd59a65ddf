package transform

// Pager tracks the page index for one drilldown panel. The two panels each
// own an independent Pager. Any change to the drill context or to the
// underlying list identity must go through Reset or SetTotal so the view
// never sits on an out-of-range page.
type Pager struct {
	page     int
	total    int
	pageSize int
}

// NewPager creates a pager at page 0. A non-positive pageSize falls back to
// DefaultPageSize.
func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{pageSize: pageSize}
}

// SetTotal records the current list length and clamps the page into range.
func (p *Pager) SetTotal(n int) {
	if n < 0 {
		n = 0
	}
	p.total = n
	p.page = ClampPage(p.page, n, p.pageSize)
}

// Reset returns to page 0. Called whenever the drill context changes.
func (p *Pager) Reset() { p.page = 0 }

// Next advances one page if not on the last one.
func (p *Pager) Next() {
	if p.page < TotalPages(p.total, p.pageSize)-1 {
		p.page++
	}
}

// Prev steps back one page if not on the first one.
func (p *Pager) Prev() {
	if p.page > 0 {
		p.page--
	}
}

// Page returns the current page index.
func (p *Pager) Page() int { return p.page }

// PageSize returns the configured page size.
func (p *Pager) PageSize() int { return p.pageSize }

// TotalPages returns the page count for the current list length.
func (p *Pager) TotalPages() int { return TotalPages(p.total, p.pageSize) }
