package repository

import (
	"fmt"
	"sort"
)

// Ordering is a validated sort token for feedback listings.
type Ordering string

// DefaultOrdering lists newest feedback first.
const DefaultOrdering Ordering = "-created_at"

const (
	OrderByUpvotes     Ordering = "upvotes"
	OrderByUpvotesDesc Ordering = "-upvotes"
)

var orderings = map[Ordering]string{
	"created_at":       "feedback.created_at ASC",
	"-created_at":      "feedback.created_at DESC",
	"updated_at":       "feedback.updated_at ASC",
	"-updated_at":      "feedback.updated_at DESC",
	"title":            "feedback.title ASC",
	"-title":           "feedback.title DESC",
	"status":           "feedback.status ASC",
	"-status":          "feedback.status DESC",
	OrderByUpvotes:     "upvote_count ASC",
	OrderByUpvotesDesc: "upvote_count DESC",
}

// ParseOrdering validates token against the allow-list. An empty token
// yields DefaultOrdering.
func ParseOrdering(token string) (Ordering, error) {
	if token == "" {
		return DefaultOrdering, nil
	}
	o := Ordering(token)
	if _, ok := orderings[o]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrdering, token)
	}
	return o, nil
}

// AllowedOrderings returns every accepted token, sorted.
func AllowedOrderings() []string {
	out := make([]string, 0, len(orderings))
	for o := range orderings {
		out = append(out, string(o))
	}
	sort.Strings(out)
	return out
}

// orderClause returns the ORDER BY expression with a stable tie-break on
// creation time and id.
func (o Ordering) orderClause() string {
	primary, ok := orderings[o]
	if !ok {
		primary = orderings[DefaultOrdering]
	}
	switch o {
	case "created_at", "-created_at":
		return primary + ", feedback.id ASC"
	}
	return primary + ", feedback.created_at DESC, feedback.id ASC"
}
