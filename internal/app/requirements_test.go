package app

import (
	"context"
	"testing"

	"github.com/landcharge/devtrack/internal/domain"
)

func TestSeedRequirementsFillsEmptyRowsFromTemplate(t *testing.T) {
	client := newFakeClient()
	templated := testRow("a1", "p1", 0)
	templated.Name = "Geotechnical Investigation"
	unknown := testRow("a2", "p1", 1)
	unknown.Name = "Totally Custom Step"
	filled := testRow("a3", "p1", 2)
	filled.Name = "Wetlands Delineation"
	filled.Requirements = domain.RequirementSet{domain.RequirementFinancing}
	client.rows["p1"] = []domain.Activity{templated, unknown, filled}
	client.update = func(id string, patch domain.Patch) (domain.Activity, error) {
		row := templated.Clone()
		row.ID = id
		row.Requirements = append(domain.RequirementSet(nil), *patch.Requirements...)
		return row, nil
	}
	s := newTestSession(t, client, "p1")

	if err := s.SeedRequirements(context.Background(), domain.ProjectBTMGround); err != nil {
		t.Fatalf("SeedRequirements() error = %v", err)
	}

	client.mu.Lock()
	updates := len(client.updates)
	client.mu.Unlock()
	if updates != 1 {
		t.Fatalf("expected 1 update, got %d", updates)
	}
	row, _ := s.Row("a1")
	if !row.Requirements.Has(domain.RequirementEngineering) {
		t.Fatalf("seeded requirements = %v", row.Requirements)
	}
	if row, _ := s.Row("a3"); !row.Requirements.Has(domain.RequirementFinancing) {
		t.Fatalf("pre-filled row rewritten to %v", row.Requirements)
	}
}

func TestSeedRequirementsRunsOncePerOpenedProject(t *testing.T) {
	client := newFakeClient()
	row := testRow("a1", "p1", 0)
	row.Name = "Geotechnical Investigation"
	client.rows["p1"] = []domain.Activity{row}
	client.update = func(id string, patch domain.Patch) (domain.Activity, error) {
		updated := row.Clone()
		updated.Requirements = append(domain.RequirementSet(nil), *patch.Requirements...)
		return updated, nil
	}
	s := newTestSession(t, client, "p1")

	if err := s.SeedRequirements(context.Background(), domain.ProjectBTMGround); err != nil {
		t.Fatalf("SeedRequirements() error = %v", err)
	}
	if err := s.SeedRequirements(context.Background(), domain.ProjectBTMGround); err != nil {
		t.Fatalf("second SeedRequirements() error = %v", err)
	}
	client.mu.Lock()
	updates := len(client.updates)
	client.mu.Unlock()
	if updates != 1 {
		t.Fatalf("seeding ran twice, %d updates", updates)
	}

	// Reopening the project arms seeding again.
	client.rows["p1"][0].Requirements = nil
	if err := s.Open(context.Background(), "p1"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.SeedRequirements(context.Background(), domain.ProjectBTMGround); err != nil {
		t.Fatalf("SeedRequirements() after reopen error = %v", err)
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.updates) != 2 {
		t.Fatalf("expected reopen to reseed, %d updates", len(client.updates))
	}
}
