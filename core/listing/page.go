package listing

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of rows per list page.
const DefaultPageSize = 10

// Page is a 1-based page of a list.
type Page struct {
	Number int
	Size   int
}

// ParsePage reads the page query parameter; a missing page is page 1.
func ParsePage(params url.Values, size int) (Page, error) {
	if size <= 0 {
		size = DefaultPageSize
	}
	raw := strings.TrimSpace(params.Get(PageParam))
	if raw == "" {
		return Page{Number: 1, Size: size}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return Page{}, &ParseError{Key: PageParam, Value: raw, Kind: AsInt}
	}
	if n < 1 {
		return Page{}, &ParseError{Key: PageParam, Value: raw, Kind: AsInt, Want: "integer >= 1"}
	}
	// Offset()+Size must not overflow
	if last := MaxPage(size); n > last {
		return Page{}, &ParseError{Key: PageParam, Value: raw, Kind: AsInt, Want: fmt.Sprintf("integer <= %d", last)}
	}
	return Page{Number: n, Size: size}, nil
}

// MaxPage is the last page number whose rows can be addressed with pages of size rows.
func MaxPage(size int) int {
	return math.MaxInt / size
}

// Offset is the number of rows skipped before the page.
func (p Page) Offset() int {
	return p.Size * (p.Number - 1)
}

// Len is the number of rows the page holds out of count.
func (p Page) Len(count int) int {
	n := count - p.Offset()
	if n < 0 {
		return 0
	}
	if n > p.Size {
		return p.Size
	}
	return n
}

// Pages is the number of pages needed for count rows.
func (p Page) Pages(count int) int {
	if count <= 0 || p.Size <= 0 {
		return 0
	}
	return (count + p.Size - 1) / p.Size
}

func (p Page) HasPrev() bool {
	return p.Number > 1
}

func (p Page) HasNext(count int) bool {
	return p.Offset()+p.Size < count
}

// Slice bounds the page within n rows, for stores that page in memory.
func (p Page) Slice(n int) (start, end int) {
	start = p.Offset()
	if start > n {
		start = n
	}
	end = start + p.Size
	if end > n {
		end = n
	}
	return start, end
}
