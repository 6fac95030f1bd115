package app

import (
	"sort"
	"strings"

	"github.com/landcharge/devtrack/internal/domain"
)

// SortKey identifies a sortable column in the derived view.
type SortKey string

const (
	SortNone         SortKey = ""
	SortName         SortKey = "name"
	SortDevType      SortKey = "dev_type"
	SortPhase        SortKey = "phase"
	SortStatus       SortKey = "status"
	SortStartDate    SortKey = "start_date"
	SortEndDate      SortKey = "end_date"
	SortDuration     SortKey = "duration_days"
	SortPlannedSpend SortKey = "planned_spend"
	SortActualSpend  SortKey = "actual_spend"
)

// ViewState holds the active filters, search term, and sort for the derived
// view. The zero value shows everything in canonical order.
type ViewState struct {
	DevType string
	Phase   int
	Search  string
	Sort    SortKey
	Desc    bool
}

// DeriveView transforms raw rows plus view state into the ordered display
// list. It is a pure function: identical inputs yield identical output, and
// the input slice is never mutated. The canonical base order is sequence
// ascending with identifier as tie-break; filters then narrow the list and
// an active sort reorders it stably. Rows missing the sort value always sort
// after rows that have one, in either direction.
func DeriveView(rows []domain.Activity, view ViewState) []domain.Activity {
	out := make([]domain.Activity, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].ID < out[j].ID
	})

	out = filterRows(out, view)

	if view.Sort != SortNone {
		sort.SliceStable(out, func(i, j int) bool {
			return lessForSort(out[i], out[j], view.Sort, view.Desc)
		})
	}
	return out
}

// filterRows applies the type, phase, and search filters in order.
func filterRows(rows []domain.Activity, view ViewState) []domain.Activity {
	devType := strings.TrimSpace(view.DevType)
	search := strings.ToLower(strings.TrimSpace(view.Search))

	out := rows[:0:0]
	for _, row := range rows {
		if devType != "" && row.DevType != devType {
			continue
		}
		if view.Phase != domain.PhaseUnset && row.Phase != view.Phase {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(row.Name), search) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// lessForSort orders two rows under one sort key. Missing values lose to
// present values regardless of direction; only comparisons between present
// values flip when descending.
func lessForSort(a, b domain.Activity, key SortKey, desc bool) bool {
	aMissing, bMissing := missingSortValue(a, key), missingSortValue(b, key)
	if aMissing != bMissing {
		return bMissing
	}
	if aMissing {
		return false
	}
	less, equal := compareSortValue(a, b, key)
	if equal {
		return false
	}
	if desc {
		return !less
	}
	return less
}

// missingSortValue reports whether the row lacks a value for the sort key.
func missingSortValue(a domain.Activity, key SortKey) bool {
	switch key {
	case SortName:
		return a.Name == ""
	case SortDevType:
		return a.DevType == ""
	case SortPhase:
		return a.Phase == domain.PhaseUnset
	case SortStatus:
		return a.Status == domain.StatusUnset
	case SortStartDate:
		return a.StartDate == nil
	case SortEndDate:
		return a.EndDate == nil
	case SortDuration:
		return a.StartDate == nil || a.EndDate == nil
	case SortPlannedSpend:
		return a.PlannedSpend == nil
	case SortActualSpend:
		return a.ActualSpend == nil
	default:
		return false
	}
}

// compareSortValue compares two present values under the sort key.
func compareSortValue(a, b domain.Activity, key SortKey) (less, equal bool) {
	switch key {
	case SortName:
		return compareStrings(a.Name, b.Name)
	case SortDevType:
		return compareStrings(a.DevType, b.DevType)
	case SortPhase:
		return a.Phase < b.Phase, a.Phase == b.Phase
	case SortStatus:
		return compareStrings(string(a.Status), string(b.Status))
	case SortStartDate:
		return a.StartDate.Before(*b.StartDate), a.StartDate.Equal(*b.StartDate)
	case SortEndDate:
		return a.EndDate.Before(*b.EndDate), a.EndDate.Equal(*b.EndDate)
	case SortDuration:
		return a.DurationDays < b.DurationDays, a.DurationDays == b.DurationDays
	case SortPlannedSpend:
		return *a.PlannedSpend < *b.PlannedSpend, *a.PlannedSpend == *b.PlannedSpend
	case SortActualSpend:
		return *a.ActualSpend < *b.ActualSpend, *a.ActualSpend == *b.ActualSpend
	default:
		return false, true
	}
}

// compareStrings orders strings case-insensitively.
func compareStrings(a, b string) (less, equal bool) {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return la < lb, la == lb
}

// LocateRow returns the index of a row identifier within a derived view, or
// -1 when the row is not visible under the current filters.
func LocateRow(view []domain.Activity, id string) int {
	for i, row := range view {
		if row.ID == id {
			return i
		}
	}
	return -1
}
