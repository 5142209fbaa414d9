package pagination

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 1000
)

// Page is a 1-indexed page request.
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes a page request: non-positive values fall back to the
// defaults and the size is capped at MaxPageSize.
func NewPage(number, size int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages is ceil(total / size).
func (p Page) TotalPages(total int) int {
	if total <= 0 || p.Size <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}
