package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/landcharge/devtrack/internal/domain"
)

// DatePlan is the outcome of planning a schedule edit. Patch carries the
// payload to submit directly; when NeedsConfirm is set, Candidate holds an
// inferred counterpart date and ConfirmPatch the payload to submit if the
// user accepts it. Declining submits Patch as is.
type DatePlan struct {
	Field        domain.Field
	Patch        domain.Patch
	NeedsConfirm bool
	Candidate    domain.Date
	Counterpart  domain.Field
	ConfirmPatch domain.Patch
}

// PlanStartDateChange plans a start date edit against the row's current
// schedule. A blank value clears the field. When the end date is present the
// payload carries both dates; when it is absent and the row has a positive
// known duration, an end date of start plus duration days is offered for
// confirmation.
func PlanStartDateChange(row domain.Activity, raw string) (DatePlan, error) {
	return planDateChange(row, raw, domain.FieldStartDate)
}

// PlanEndDateChange plans an end date edit. The mirror of
// PlanStartDateChange: a missing start with a positive known duration yields
// a candidate start of end minus duration days.
func PlanEndDateChange(row domain.Activity, raw string) (DatePlan, error) {
	return planDateChange(row, raw, domain.FieldEndDate)
}

// planDateChange distinguishes plan date change.
func planDateChange(row domain.Activity, raw string, field domain.Field) (DatePlan, error) {
	plan := DatePlan{Field: field}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		change := &domain.DateChange{}
		if field == domain.FieldStartDate {
			plan.Patch.StartDate = change
		} else {
			plan.Patch.EndDate = change
		}
		return plan, nil
	}

	edited, err := ParseDateInput(raw)
	if err != nil {
		return DatePlan{}, err
	}

	start, end := row.StartDate, row.EndDate
	if field == domain.FieldStartDate {
		start = &edited
	} else {
		end = &edited
	}

	switch {
	case start != nil && end != nil:
		// Both dates known after the edit; the server recomputes duration.
		plan.Patch.StartDate = &domain.DateChange{Value: start}
		plan.Patch.EndDate = &domain.DateChange{Value: end}

	case field == domain.FieldStartDate && end == nil && row.DurationDays > 0:
		candidate := edited.AddDays(row.DurationDays)
		plan.NeedsConfirm = true
		plan.Candidate = candidate
		plan.Counterpart = domain.FieldEndDate
		plan.Patch.StartDate = &domain.DateChange{Value: &edited}
		plan.ConfirmPatch.StartDate = &domain.DateChange{Value: &edited}
		plan.ConfirmPatch.EndDate = &domain.DateChange{Value: &candidate}

	case field == domain.FieldEndDate && start == nil && row.DurationDays > 0:
		candidate := edited.AddDays(-row.DurationDays)
		plan.NeedsConfirm = true
		plan.Candidate = candidate
		plan.Counterpart = domain.FieldStartDate
		plan.Patch.EndDate = &domain.DateChange{Value: &edited}
		plan.ConfirmPatch.StartDate = &domain.DateChange{Value: &candidate}
		plan.ConfirmPatch.EndDate = &domain.DateChange{Value: &edited}

	case field == domain.FieldStartDate:
		plan.Patch.StartDate = &domain.DateChange{Value: &edited}

	default:
		plan.Patch.EndDate = &domain.DateChange{Value: &edited}
	}
	return plan, nil
}

// PlanDurationChange plans a duration edit. Duration itself is never
// submitted; the edit is realized by computing the counterpart date from the
// row's anchor date. A start anchor yields end = start plus duration days, an
// end-only anchor yields start = end minus duration days.
func PlanDurationChange(row domain.Activity, raw string) (DatePlan, error) {
	raw = strings.TrimSpace(raw)
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return DatePlan{}, domain.ErrInvalidDuration
	}

	plan := DatePlan{Field: domain.FieldDuration}
	switch {
	case row.StartDate != nil:
		end := row.StartDate.AddDays(days)
		plan.Patch.EndDate = &domain.DateChange{Value: &end}
	case row.EndDate != nil:
		start := row.EndDate.AddDays(-days)
		plan.Patch.StartDate = &domain.DateChange{Value: &start}
	default:
		return DatePlan{}, ErrNoAnchorDate
	}
	return plan, nil
}

// ParseDateInput parses a user-entered date string.
func ParseDateInput(raw string) (domain.Date, error) {
	return domain.ParseDate(raw)
}

// CommitDatePlan submits the plan's direct payload. Used for plans without a
// confirmation step and for declined confirmations.
func (s *Session) CommitDatePlan(ctx context.Context, rowID string, plan DatePlan) error {
	return s.UpdateField(ctx, rowID, plan.Field, plan.Patch)
}

// ConfirmDatePlan submits the plan's confirmed payload including the
// inferred counterpart date.
func (s *Session) ConfirmDatePlan(ctx context.Context, rowID string, plan DatePlan) error {
	if !plan.NeedsConfirm {
		return s.CommitDatePlan(ctx, rowID, plan)
	}
	return s.UpdateField(ctx, rowID, plan.Field, plan.ConfirmPatch)
}

// SetDateField plans and commits a date edit in one step. Plans that need
// confirmation are returned to the caller unsubmitted so the user can accept
// or decline the inferred counterpart.
func (s *Session) SetDateField(ctx context.Context, rowID string, field domain.Field, raw string) (DatePlan, error) {
	row, ok := s.Row(rowID)
	if !ok {
		return DatePlan{}, &FieldError{RowID: rowID, Field: field, Err: ErrRowNotLoaded}
	}

	var plan DatePlan
	var err error
	switch field {
	case domain.FieldStartDate:
		plan, err = PlanStartDateChange(row, raw)
	case domain.FieldEndDate:
		plan, err = PlanEndDateChange(row, raw)
	case domain.FieldDuration:
		plan, err = PlanDurationChange(row, raw)
	default:
		err = ErrUnknownField
	}
	if err != nil {
		// Validation failures never reach the network.
		return DatePlan{}, &FieldError{RowID: rowID, Field: field, Err: err}
	}
	if plan.NeedsConfirm {
		return plan, nil
	}
	return plan, s.CommitDatePlan(ctx, rowID, plan)
}
