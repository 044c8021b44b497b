// Package query translates client-supplied filter and sort parameters into a
// store query plan. Resolve produces the Cypher form used by the Neo4j
// adapter; Matches and Order are the equivalent in-memory predicates so that
// both store implementations share one contract.
package query

import (
	"net/url"
	"strings"
	"time"

	"taskboard/app/models"
)

// Sort identifies one of the supported orderings.
type Sort string

const (
	SortDueSoonest Sort = "dueSoonest"
	SortDueLatest  Sort = "dueLatest"
	SortNewest     Sort = "newest"
	SortOldest     Sort = "oldest"
)

// ParseSort maps a raw sort parameter to a Sort. Unrecognized or empty input
// defaults to newest.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortDueSoonest, SortDueLatest, SortOldest:
		return Sort(s)
	default:
		return SortNewest
	}
}

// Spec is the canonical filter/sort request over the task collection.
// Completed is tri-state: nil means no completion filter.
type Spec struct {
	Text      string
	Tag       string
	Completed *bool
	Sort      Sort
}

// FromValues parses the GET /api/tasks query parameters. A completed value
// other than "true" or "false" means no filter.
func FromValues(v url.Values) Spec {
	spec := Spec{
		Text: v.Get("query"),
		Tag:  v.Get("tag"),
		Sort: ParseSort(v.Get("sort")),
	}
	switch v.Get("completed") {
	case "true":
		t := true
		spec.Completed = &t
	case "false":
		f := false
		spec.Completed = &f
	}
	return spec
}

// Plan is a compiled store query: WHERE fragments over the task node t, their
// parameters, and an ORDER BY clause.
type Plan struct {
	Where   []string
	Params  map[string]any
	OrderBy string
}

// Resolve compiles spec into a deterministic Plan.
func Resolve(spec Spec) Plan {
	plan := Plan{Params: map[string]any{}}
	if spec.Text != "" {
		plan.Where = append(plan.Where, "toLower(t.title) CONTAINS toLower($text)")
		plan.Params["text"] = spec.Text
	}
	if spec.Tag != "" {
		plan.Where = append(plan.Where, "$tag IN t.tags")
		plan.Params["tag"] = spec.Tag
	}
	if spec.Completed != nil {
		plan.Where = append(plan.Where, "t.completed = $completed")
		plan.Params["completed"] = *spec.Completed
	}
	switch spec.Sort {
	case SortDueSoonest:
		plan.OrderBy = "t.dueAt IS NULL, t.dueAt, t.createdAt DESC"
	case SortDueLatest:
		plan.OrderBy = "t.dueAt IS NULL, t.dueAt DESC, t.createdAt DESC"
	case SortOldest:
		plan.OrderBy = "t.createdAt"
	default:
		plan.OrderBy = "t.createdAt DESC"
	}
	return plan
}

// Matches reports whether task passes spec's filters: case-insensitive title
// substring, exact tag membership, and the tri-state completed filter.
func (s Spec) Matches(task models.Task) bool {
	if s.Text != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(s.Text)) {
		return false
	}
	if s.Tag != "" {
		found := false
		for _, tag := range task.Tags {
			if tag == s.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if s.Completed != nil && task.Completed != *s.Completed {
		return false
	}
	return true
}

// Order returns the comparison function for s, matching Plan's ORDER BY.
// Due-date sorts place undated tasks last and break ties on newest-first.
func Order(s Sort) func(a, b models.Task) int {
	switch s {
	case SortDueSoonest:
		return func(a, b models.Task) int {
			if c := compareDue(a.DueAt, b.DueAt, false); c != 0 {
				return c
			}
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	case SortDueLatest:
		return func(a, b models.Task) int {
			if c := compareDue(a.DueAt, b.DueAt, true); c != 0 {
				return c
			}
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	case SortOldest:
		return func(a, b models.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	default:
		return func(a, b models.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}

// compareDue orders dated tasks before undated ones; desc flips only the
// dated-versus-dated comparison, never the nulls-last rule.
func compareDue(a, b *time.Time, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if desc {
		return b.Compare(*a)
	}
	return a.Compare(*b)
}
