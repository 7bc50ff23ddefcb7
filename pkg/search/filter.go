// Package search decides which navigation entries stay visible for a query
// and finds sections whose text mentions it.
package search

import "strings"

// Entry is one filterable navigation item: a document or a heading.
type Entry struct {
	ID   string
	Text string
}

// Matches reports whether text contains query, ignoring case. The query is not
// trimmed; an empty query matches everything.
func Matches(text, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(query))
}

// Filter returns the ids of entries whose text matches query, in input order.
func Filter(entries []Entry, query string) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if Matches(e.Text, query) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Tiers holds the visible ids of each navigation tier.
type Tiers struct {
	Documents []string
	Headings  []string
}

// FilterTiers applies the query to the document list and the active document's
// headings independently: a document hidden by the query does not hide its
// headings, and a heading match does not reveal its document.
func FilterTiers(documents, headings []Entry, query string) Tiers {
	return Tiers{
		Documents: Filter(documents, query),
		Headings:  Filter(headings, query),
	}
}
