// Package pagination parses pageSize/pageToken query parameters and slices
// in-memory result sets into pages.
package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize    = 50
	DefaultMaxPageSize = 100
)

var (
	ErrInvalidPageSize  = errors.New("pagination: invalid pageSize")
	ErrInvalidPageToken = errors.New("pagination: invalid pageToken")
)

// Params is a parsed page request. Offset comes from the decoded page token.
type Params struct {
	PageSize int
	Offset   int
}

// Options bounds the accepted page size for an endpoint.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

// FromRequest parses pagination parameters from the request query string.
func FromRequest(r *http.Request, opts Options) (Params, error) {
	if r == nil {
		return Params{}, errors.New("pagination: nil request")
	}
	return Parse(r.URL.Query(), opts)
}

func Parse(values url.Values, opts Options) (Params, error) {
	size, err := parsePageSize(values.Get("pageSize"), opts)
	if err != nil {
		return Params{}, err
	}
	offset, err := DecodeToken(values.Get("pageToken"))
	if err != nil {
		return Params{}, err
	}
	return Params{PageSize: size, Offset: offset}, nil
}

func parsePageSize(raw string, opts Options) (int, error) {
	maxSize := opts.MaxPageSize
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}
	size := opts.DefaultPageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > maxSize {
		size = maxSize
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return size, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: must be an integer", ErrInvalidPageSize)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidPageSize)
	}
	if value > maxSize {
		value = maxSize
	}
	return value, nil
}

// Page returns the slice of items selected by params and the token for the next page,
// empty when no items remain.
func Page[T any](items []T, params Params) ([]T, string) {
	size := params.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	start := params.Offset
	if start >= len(items) {
		return []T{}, ""
	}
	end := start + size
	if end >= len(items) {
		return items[start:], ""
	}
	return items[start:end], EncodeToken(end)
}
