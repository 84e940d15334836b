// Package pagination resolves untrusted page tokens into bounded
// windows over an ordered collection.
package pagination

import (
	"errors"
	"fmt"
	"strconv"
)

// DefaultPageSize is used when no explicit page size is configured.
const DefaultPageSize = 20

// LastPageToken selects the final page regardless of the item count.
const LastPageToken = "last"

// ErrPageNotFound marks pagination failures the HTTP layer should map
// to a 404 response.
var ErrPageNotFound = errors.New("page not found")

// Page is the resolved window plus its metadata. Offset/Limit are
// ready to feed into a LIMIT/OFFSET query.
type Page struct {
	Number     int
	Offset     int
	Limit      int
	TotalItems int
	TotalPages int
}

// HasNext reports whether a page follows this one.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrevious reports whether a page precedes this one.
func (p Page) HasPrevious() bool {
	return p.Number > 1
}

// Paginator splits a collection of a known size into fixed-size pages.
// An empty collection still has a single empty page.
type Paginator struct {
	totalItems int
	pageSize   int
}

// New builds a paginator over totalItems items. A pageSize below 1
// falls back to DefaultPageSize.
func New(totalItems, pageSize int) *Paginator {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if totalItems < 0 {
		totalItems = 0
	}
	return &Paginator{totalItems: totalItems, pageSize: pageSize}
}

// NumPages returns the total page count, always at least 1.
func (p *Paginator) NumPages() int {
	if p.totalItems == 0 {
		return 1
	}
	return (p.totalItems + p.pageSize - 1) / p.pageSize
}

// Page resolves a raw page token. An empty token means page 1 and
// LastPageToken means the final page; anything else must parse as an
// integer within [1, NumPages]. Failures wrap ErrPageNotFound.
func (p *Paginator) Page(token string) (Page, error) {
	number, err := p.resolveToken(token)
	if err != nil {
		return Page{}, err
	}
	if reason := p.validate(number); reason != "" {
		return Page{}, fmt.Errorf("invalid page (%d): %s: %w", number, reason, ErrPageNotFound)
	}

	offset := (number - 1) * p.pageSize
	limit := p.pageSize
	if remaining := p.totalItems - offset; remaining < limit {
		limit = remaining
	}
	if limit < 0 {
		limit = 0
	}

	return Page{
		Number:     number,
		Offset:     offset,
		Limit:      limit,
		TotalItems: p.totalItems,
		TotalPages: p.NumPages(),
	}, nil
}

func (p *Paginator) resolveToken(token string) (int, error) {
	if token == "" {
		return 1, nil
	}
	if token == LastPageToken {
		return p.NumPages(), nil
	}
	number, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("page is not %q, nor can it be converted to an int: %w", LastPageToken, ErrPageNotFound)
	}
	return number, nil
}

func (p *Paginator) validate(number int) string {
	switch {
	case number < 1:
		return "that page number is less than 1"
	case number > p.NumPages():
		return "that page contains no results"
	}
	return ""
}

// Slice resolves token against the length of items and returns the
// matching sub-slice along with the page metadata.
func Slice[T any](items []T, pageSize int, token string) ([]T, Page, error) {
	page, err := New(len(items), pageSize).Page(token)
	if err != nil {
		return nil, Page{}, err
	}
	return items[page.Offset : page.Offset+page.Limit], page, nil
}
