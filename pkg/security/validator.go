package security

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxSearchQueryLength defines the maximum allowed length for search queries
	MaxSearchQueryLength = 100
	// MinSearchTermLength is the shortest accepted term for the search endpoint
	MinSearchTermLength = 2
)

var (
	ErrSearchTooLong      = errors.New("search query too long")
	ErrSearchTooShort     = errors.New("search term must be at least 2 characters")
	ErrSearchInvalidChars = errors.New("search query contains invalid characters")
)

// ValidateSearchQuery trims the query and checks its length. Control
// characters are rejected; everything else is matched literally, see EscapeLike.
// An empty query is valid and means "no filter".
func ValidateSearchQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", ErrSearchTooLong
	}

	if strings.IndexFunc(query, unicode.IsControl) >= 0 {
		return "", ErrSearchInvalidChars
	}

	return query, nil
}

// ValidateSearchTerm is ValidateSearchQuery for endpoints where the term is mandatory.
func ValidateSearchTerm(term string) (string, error) {
	term, err := ValidateSearchQuery(term)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(term) < MinSearchTermLength {
		return "", ErrSearchTooShort
	}
	return term, nil
}

// EscapeLike escapes LIKE wildcards so the term matches literally.
// Use with ESCAPE '\'.
func EscapeLike(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	query = strings.ReplaceAll(query, "_", `\_`)

	return query
}
