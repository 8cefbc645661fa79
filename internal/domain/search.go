package domain

import (
	"fmt"
	"strings"
)

// BookmarkFilter narrows a search to bookmarked contacts.
type BookmarkFilter string

const (
	FilterAll            BookmarkFilter = "all"
	FilterBookmarkedOnly BookmarkFilter = "bookmarked"
)

// ParseBookmarkFilter accepts "all", "bookmarked" and boolean-ish values
// ("true" => bookmarked only). Empty means all.
func ParseBookmarkFilter(s string) (BookmarkFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "false", "0":
		return FilterAll, nil
	case "bookmarked", "bookmarked_only", "true", "1":
		return FilterBookmarkedOnly, nil
	}
	return "", &ValidationError{Field: "bookmarked", Message: fmt.Sprintf("unknown bookmark filter %q", s)}
}

// Matches reports whether c contains query as a case-insensitive substring
// in its name, any phone number, any email, any tag or its notes.
// An empty (or blank) query matches every contact.
func Matches(c *Contact, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	if containsFold(c.Name, q) || containsFold(c.Notes, q) {
		return true
	}
	for _, p := range c.Phones {
		if containsFold(p.Number, q) {
			return true
		}
	}
	for _, e := range c.Emails {
		if containsFold(e.Email, q) {
			return true
		}
	}
	for _, t := range c.Tags {
		if containsFold(t, q) {
			return true
		}
	}
	return false
}

// Filter applies the text match first and the bookmark filter second,
// keeping the input order.
func Filter(contacts []Contact, query string, filter BookmarkFilter) []Contact {
	out := make([]Contact, 0, len(contacts))
	for i := range contacts {
		c := &contacts[i]
		if !Matches(c, query) {
			continue
		}
		if filter == FilterBookmarkedOnly && !c.IsBookmarked {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

// containsFold expects lowerQuery to be lower-cased already.
func containsFold(s, lowerQuery string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerQuery)
}
