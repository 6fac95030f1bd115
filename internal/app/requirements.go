package app

import (
	"context"

	"github.com/landcharge/devtrack/internal/domain"
)

// SeedRequirements fills empty requirement sets from the project type's
// template, matching rows by normalized name. Seeding runs at most once per
// opened project and is best effort; a row whose update fails is logged and
// skipped.
func (s *Session) SeedRequirements(ctx context.Context, projectType domain.ProjectType) error {
	s.mu.Lock()
	projectID := s.projectID
	seeded := s.reqsSeeded
	if !seeded {
		s.reqsSeeded = true
	}
	candidates := make([]domain.Activity, 0, len(s.rows))
	for _, row := range s.rows {
		if len(row.Requirements) == 0 {
			candidates = append(candidates, row.Clone())
		}
	}
	s.mu.Unlock()
	if projectID == "" {
		return ErrNoProject
	}
	if seeded || len(candidates) == 0 {
		return nil
	}

	lookup := domain.RequirementTemplate(projectType)
	if len(lookup) == 0 {
		return nil
	}
	for _, row := range candidates {
		reqs, ok := domain.FindTemplateRequirements(lookup, row.Name)
		if !ok || len(reqs) == 0 {
			continue
		}
		if err := s.SetRequirements(ctx, row.ID, reqs); err != nil {
			s.logger.Warn("requirement seeding skipped row", "row", row.ID, "err", err)
		}
	}
	return nil
}
