package datastore

import (
	"sort"
	"time"
)

// Group is one calendar-day bucket of a grouped listing.
type Group[T any] struct {
	Date    time.Time `json:"date"`
	Label   string    `json:"formatDate"`
	Entries []T       `json:"list"`
}

const groupLabelFormat = "2006/01/02"

// GroupByDay partitions records into calendar-day buckets keyed by the
// year/month/day of UpdatedAt. Buckets come back newest-day-first and
// entries within a bucket newest-first. Pure projection: the input is
// copied, never mutated, and a fixed input always produces the same
// output.
func GroupByDay[T any, PT interface {
	Record
	*T
}](records []T) []Group[T] {
	sorted := make([]T, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return PT(&sorted[i]).meta().UpdatedAt.After(PT(&sorted[j]).meta().UpdatedAt)
	})

	var groups []Group[T]
	for i := range sorted {
		t := PT(&sorted[i]).meta().UpdatedAt
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

		if n := len(groups); n > 0 && groups[n-1].Date.Equal(day) {
			groups[n-1].Entries = append(groups[n-1].Entries, sorted[i])
			continue
		}
		groups = append(groups, Group[T]{
			Date:    day,
			Label:   day.Format(groupLabelFormat),
			Entries: []T{sorted[i]},
		})
	}
	return groups
}

// SortByUpdatedDesc returns records ordered newest-first by UpdatedAt.
func SortByUpdatedDesc[T any, PT interface {
	Record
	*T
}](records []T) []T {
	sorted := make([]T, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return PT(&sorted[i]).meta().UpdatedAt.After(PT(&sorted[j]).meta().UpdatedAt)
	})
	return sorted
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
