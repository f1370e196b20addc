// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// searchDateLayout is the date format GitHub search qualifiers accept.
const searchDateLayout = "2006-01-02"

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// ParseRepository parses an "owner/name" identifier.
func ParseRepository(s string) (Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, fmt.Errorf("invalid repository %q, expected owner/name", s)
	}
	return Repository{Owner: owner, Name: name}, nil
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ItemKind filters search hits by type.
type ItemKind string

const (
	KindPullRequest ItemKind = "pr"
	KindIssue       ItemKind = "issue"
)

// StateFilter selects which lifecycle event the date window applies to.
type StateFilter string

const (
	// StateMerged restricts to merged items and windows on the merge date.
	StateMerged StateFilter = "merged"
	// StateCreated windows on the creation date.
	StateCreated StateFilter = "created"
)

// Query describes one search request. It is a value type and is never mutated
// after construction.
type Query struct {
	Repository Repository
	Kind       ItemKind
	State      StateFilter
	// Since is inclusive, Until is exclusive. Only the calendar day is used.
	Since time.Time
	Until time.Time
	Sort  string
	Order string
}

// Validate reports whether the query can be sent.
func (q Query) Validate() error {
	if q.Repository.Owner == "" || q.Repository.Name == "" {
		return errors.New("query has no repository")
	}
	switch q.Kind {
	case KindPullRequest, KindIssue:
	default:
		return fmt.Errorf("unknown item kind %q", q.Kind)
	}
	switch q.State {
	case StateMerged, StateCreated:
	default:
		return fmt.Errorf("unknown state filter %q", q.State)
	}
	if !q.Since.Before(q.Until) {
		return fmt.Errorf("empty date window: since %s is not before until %s",
			q.Since.Format(searchDateLayout), q.Until.Format(searchDateLayout))
	}
	return nil
}

// SearchString renders the query as GitHub search qualifiers.
// GitHub date ranges are inclusive on both ends, so the upper bound is the
// last day before Until.
func (q Query) SearchString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "repo:%s is:%s", q.Repository, q.Kind)
	if q.State == StateMerged {
		b.WriteString(" is:merged")
	}
	last := q.Until.AddDate(0, 0, -1)
	if last.Before(q.Since) {
		last = q.Since
	}
	fmt.Fprintf(&b, " %s:%s..%s", q.State, q.Since.Format(searchDateLayout), last.Format(searchDateLayout))
	return b.String()
}
