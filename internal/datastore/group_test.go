package datastore

import (
	"testing"
	"time"
)

func entryAt(title string, updated time.Time) page {
	n := page{Title: title}
	n.UpdatedAt = updated
	return n
}

func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	records := []page{
		entryAt("old-morning", day1),
		entryAt("new-evening", day2.Add(8*time.Hour)),
		entryAt("old-evening", day1.Add(10*time.Hour)),
		entryAt("new-morning", day2),
	}

	groups := GroupByDay[page](records)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	if groups[0].Label != "2026/03/11" || groups[1].Label != "2026/03/10" {
		t.Errorf("group order: %q, %q", groups[0].Label, groups[1].Label)
	}

	wantFirst := []string{"new-evening", "new-morning"}
	for i, want := range wantFirst {
		if groups[0].Entries[i].Title != want {
			t.Errorf("newest group entry %d = %q, want %q", i, groups[0].Entries[i].Title, want)
		}
	}
	wantSecond := []string{"old-evening", "old-morning"}
	for i, want := range wantSecond {
		if groups[1].Entries[i].Title != want {
			t.Errorf("older group entry %d = %q, want %q", i, groups[1].Entries[i].Title, want)
		}
	}
}

func TestGroupByDayDeterministic(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var records []page
	for i := 0; i < 9; i++ {
		records = append(records, entryAt("e", base.AddDate(0, 0, i%3)))
	}

	first := GroupByDay[page](records)
	second := GroupByDay[page](records)
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("groups = %d / %d, want 3", len(first), len(second))
	}
	for i := range first {
		if first[i].Label != second[i].Label || len(first[i].Entries) != len(second[i].Entries) {
			t.Error("projection is not deterministic")
		}
	}
}

func TestGroupByDayEmpty(t *testing.T) {
	if groups := GroupByDay[page](nil); len(groups) != 0 {
		t.Errorf("groups over empty input = %v", groups)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 1, 2, 0, 0, 1, 0, time.UTC)
	b := time.Date(2026, 1, 2, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Error("same calendar day not detected")
	}
	if SameDay(b, c) {
		t.Error("midnight boundary not respected")
	}
}
