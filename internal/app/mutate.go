package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/landcharge/devtrack/internal/domain"
)

// UpdateField applies one field-level patch with optimistic local feedback.
// The row is snapshotted, the patch applied locally, and the remote update
// issued; on success the server's full row overwrites the local one, on
// failure the snapshot is restored and a FieldError returned. Edits to the
// same (row, field) are serialized; a second edit waits for the first to
// settle before applying its own optimistic value. A response that settles
// after the active project changed is discarded silently.
func (s *Session) UpdateField(ctx context.Context, rowID string, field domain.Field, patch domain.Patch) error {
	if patch.IsEmpty() {
		return nil
	}
	key := flightKey{rowID: rowID, field: field}
	if err := s.acquireFlight(ctx, key); err != nil {
		return err
	}
	defer s.releaseFlight(key)

	s.mu.Lock()
	projectID := s.projectID
	i, ok := s.index[rowID]
	if projectID == "" {
		s.mu.Unlock()
		return ErrNoProject
	}
	if !ok {
		s.mu.Unlock()
		return &FieldError{RowID: rowID, Field: field, Err: ErrRowNotLoaded}
	}
	snapshot := s.rows[i].Clone()
	if err := s.rows[i].Apply(patch); err != nil {
		s.rows[i] = snapshot
		s.mu.Unlock()
		return &FieldError{RowID: rowID, Field: field, Err: err}
	}
	s.rows[i].RefreshDuration()
	s.mu.Unlock()

	updated, err := s.client.UpdateActivity(ctx, rowID, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID != projectID {
		// The project changed while the request was in flight. The
		// response no longer has a home; drop it without rollback or
		// error.
		s.logger.Debug("discarding settled edit for inactive project", "row", rowID, "field", field)
		return nil
	}
	if err != nil {
		if j, ok := s.index[rowID]; ok {
			s.rows[j] = snapshot
		}
		return &FieldError{RowID: rowID, Field: field, Err: err}
	}
	s.upsertRowLocked(updated)
	return nil
}

// acquireFlight claims the in-flight slot for key, waiting for any earlier
// edit to the same slot to settle first.
func (s *Session) acquireFlight(ctx context.Context, key flightKey) error {
	for {
		s.mu.Lock()
		ch, busy := s.inflight[key]
		if !busy {
			s.inflight[key] = make(chan struct{})
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// releaseFlight frees the in-flight slot and wakes waiters.
func (s *Session) releaseFlight(key flightKey) {
	s.mu.Lock()
	ch := s.inflight[key]
	delete(s.inflight, key)
	s.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// SetName commits a name edit.
func (s *Session) SetName(ctx context.Context, rowID, value string) error {
	return s.UpdateField(ctx, rowID, domain.FieldName, domain.Patch{Name: &value})
}

// SetDevType commits a development type edit.
func (s *Session) SetDevType(ctx context.Context, rowID, value string) error {
	return s.UpdateField(ctx, rowID, domain.FieldDevType, domain.Patch{DevType: &value})
}

// SetPhase commits a phase edit.
func (s *Session) SetPhase(ctx context.Context, rowID string, phase int) error {
	return s.UpdateField(ctx, rowID, domain.FieldPhase, domain.Patch{Phase: &phase})
}

// SetStatus commits a status edit.
func (s *Session) SetStatus(ctx context.Context, rowID string, status domain.Status) error {
	return s.UpdateField(ctx, rowID, domain.FieldStatus, domain.Patch{Status: &status})
}

// SetOwner commits an owner edit and seeds the owning organization into the
// project contact list.
func (s *Session) SetOwner(ctx context.Context, rowID string, owner domain.OwnerType) error {
	if err := s.UpdateField(ctx, rowID, domain.FieldOwner, domain.Patch{Owner: &owner}); err != nil {
		return err
	}
	s.seedContact(ctx, rowID, string(owner), "", "Owner")
	return nil
}

// SetRiskLevel commits a risk heatmap edit.
func (s *Session) SetRiskLevel(ctx context.Context, rowID string, risk domain.RiskLevel) error {
	return s.UpdateField(ctx, rowID, domain.FieldRiskLevel, domain.Patch{RiskLevel: &risk})
}

// SetRequirements commits a requirement set edit.
func (s *Session) SetRequirements(ctx context.Context, rowID string, reqs domain.RequirementSet) error {
	return s.UpdateField(ctx, rowID, domain.FieldRequirements, domain.Patch{Requirements: &reqs})
}

// ToggleRequirement flips one requirement category on the row and commits
// the resulting set.
func (s *Session) ToggleRequirement(ctx context.Context, rowID string, req domain.Requirement) error {
	row, ok := s.Row(rowID)
	if !ok {
		return &FieldError{RowID: rowID, Field: domain.FieldRequirements, Err: ErrRowNotLoaded}
	}
	return s.SetRequirements(ctx, rowID, row.Requirements.Toggle(req))
}

// SetSpend commits a spend edit. The raw value is parsed and rounded to two
// decimal places; an empty value clears the field.
func (s *Session) SetSpend(ctx context.Context, rowID string, field domain.Field, raw string) error {
	change, err := parseSpend(raw)
	if err != nil {
		return &FieldError{RowID: rowID, Field: field, Err: err}
	}
	patch := domain.Patch{}
	switch field {
	case domain.FieldPlannedSpend:
		patch.PlannedSpend = &change
	case domain.FieldActualSpend:
		patch.ActualSpend = &change
	default:
		return &FieldError{RowID: rowID, Field: field, Err: domain.ErrInvalidSpend}
	}
	return s.UpdateField(ctx, rowID, field, patch)
}

// SetTextField commits one of the free-text field edits. Responsible-party
// and responsible-individual edits additionally seed the project contact
// list.
func (s *Session) SetTextField(ctx context.Context, rowID string, field domain.Field, value string) error {
	patch := domain.Patch{}
	switch field {
	case domain.FieldAgency:
		patch.Agency = &value
	case domain.FieldResponsibleParty:
		patch.ResponsibleParty = &value
	case domain.FieldResponsibleIndividual:
		patch.ResponsibleIndividual = &value
	case domain.FieldProcess:
		patch.Process = &value
	case domain.FieldLink:
		patch.Link = &value
	case domain.FieldStorageHybridImpact:
		patch.StorageHybridImpact = &value
	case domain.FieldMilestoneGates:
		patch.MilestoneGates = &value
	default:
		return &FieldError{RowID: rowID, Field: field, Err: ErrUnknownField}
	}

	if err := s.UpdateField(ctx, rowID, field, patch); err != nil {
		return err
	}

	if strings.TrimSpace(value) == "" {
		// Clearing a cell never syncs a contact.
		return nil
	}
	switch field {
	case domain.FieldResponsibleParty:
		s.seedContact(ctx, rowID, value, "", "Responsible Party")
	case domain.FieldResponsibleIndividual:
		if row, ok := s.Row(rowID); ok {
			organization := row.ResponsibleParty
			if organization == "" {
				organization = string(row.Owner)
			}
			s.seedContact(ctx, rowID, organization, value, "Responsible Individual")
		}
	}
	return nil
}

// parseSpend normalizes raw spend input into an optional amount.
func parseSpend(raw string) (domain.SpendChange, error) {
	raw = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(raw), "$"), ",", ""))
	if raw == "" {
		return domain.SpendChange{}, nil
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.SpendChange{}, domain.ErrInvalidSpend
	}
	if amount < 0 {
		return domain.SpendChange{}, domain.ErrInvalidSpend
	}
	return domain.SpendChange{Value: &amount}, nil
}
