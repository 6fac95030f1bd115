package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/landcharge/devtrack/internal/adapters/server/common"
	"github.com/landcharge/devtrack/internal/domain"
	_ "modernc.org/sqlite"
)

func TestRepository_ProjectStepLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "devtrack.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	project, err := domain.NewProject(domain.ProjectInput{
		ID:   "p1",
		Name: "Maple Ridge",
		Type: domain.ProjectBTMGround,
	}, now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	loadedProject, err := repo.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if loadedProject.Name != "Maple Ridge" {
		t.Fatalf("unexpected project name %q", loadedProject.Name)
	}
	if !loadedProject.CreatedAt.Equal(now) {
		t.Fatalf("unexpected created at %v", loadedProject.CreatedAt)
	}

	step, err := domain.NewActivity(domain.ActivityInput{
		ID:        "s1",
		ProjectID: project.ID,
		Sequence:  0,
		Name:      "Site Identification & Screening",
		DevType:   "Due Diligence",
		Phase:     domain.PhaseEarly,
	})
	if err != nil {
		t.Fatalf("NewActivity() error = %v", err)
	}
	start := domain.MustParseDate("2024-01-01")
	end := domain.MustParseDate("2024-01-11")
	planned := 1500.50
	step.StartDate = &start
	step.EndDate = &end
	step.PlannedSpend = &planned
	step.Status = domain.StatusInProgress
	step.Agency = "County Planning"
	reqs, err := domain.ParseRequirementSet("Engineering, Site Control")
	if err != nil {
		t.Fatalf("ParseRequirementSet() error = %v", err)
	}
	step.Requirements = reqs
	if err := repo.CreateStep(ctx, step); err != nil {
		t.Fatalf("CreateStep() error = %v", err)
	}

	loaded, err := repo.GetStep(ctx, step.ID)
	if err != nil {
		t.Fatalf("GetStep() error = %v", err)
	}
	if loaded.Name != step.Name {
		t.Fatalf("unexpected step name %q", loaded.Name)
	}
	if loaded.DurationDays != 10 {
		t.Fatalf("DurationDays = %d, want 10", loaded.DurationDays)
	}
	if loaded.PlannedSpend == nil || *loaded.PlannedSpend != planned {
		t.Fatalf("unexpected planned spend %v", loaded.PlannedSpend)
	}
	if loaded.ActualSpend != nil {
		t.Fatalf("expected nil actual spend, got %v", *loaded.ActualSpend)
	}
	if !loaded.Requirements.Has(domain.RequirementSiteControl) {
		t.Fatalf("unexpected requirements %q", loaded.Requirements.String())
	}
	if loaded.Custom {
		t.Fatal("step should not be custom")
	}

	loaded.EndDate = nil
	loaded.Status = domain.StatusCompleted
	if err := repo.UpdateStep(ctx, loaded); err != nil {
		t.Fatalf("UpdateStep() error = %v", err)
	}
	updated, err := repo.GetStep(ctx, step.ID)
	if err != nil {
		t.Fatalf("GetStep() error = %v", err)
	}
	if updated.EndDate != nil {
		t.Fatalf("expected cleared end date, got %v", updated.EndDate)
	}
	if updated.DurationDays != 0 {
		t.Fatalf("DurationDays = %d, want 0", updated.DurationDays)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("unexpected status %q", updated.Status)
	}
}

func TestRepository_StepOrderAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	project, err := domain.NewProject(domain.ProjectInput{ID: "p1", Name: "Maple Ridge", Type: domain.ProjectBTMGround}, now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	var steps []domain.Activity
	for i, name := range []string{"First", "Second", "Third"} {
		step, err := domain.NewActivity(domain.ActivityInput{
			ID:        "s" + name,
			ProjectID: project.ID,
			Sequence:  i,
			Name:      name,
			Custom:    true,
		})
		if err != nil {
			t.Fatalf("NewActivity() error = %v", err)
		}
		steps = append(steps, step)
	}
	if err := repo.CreateSteps(ctx, steps); err != nil {
		t.Fatalf("CreateSteps() error = %v", err)
	}

	if err := repo.SetStepOrder(ctx, project.ID, []string{"sThird", "sFirst", "sSecond"}); err != nil {
		t.Fatalf("SetStepOrder() error = %v", err)
	}
	ordered, err := repo.ListSteps(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListSteps() error = %v", err)
	}
	if len(ordered) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(ordered))
	}
	if ordered[0].Name != "Third" || ordered[1].Name != "First" || ordered[2].Name != "Second" {
		t.Fatalf("unexpected order %q %q %q", ordered[0].Name, ordered[1].Name, ordered[2].Name)
	}

	if err := repo.DeleteStep(ctx, "sSecond"); err != nil {
		t.Fatalf("DeleteStep() error = %v", err)
	}
	if err := repo.DeleteStep(ctx, "sSecond"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("DeleteStep() error = %v, want %v", err, common.ErrNotFound)
	}
	if _, err := repo.GetStep(ctx, "sSecond"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("GetStep() error = %v, want %v", err, common.ErrNotFound)
	}
}

func TestRepository_UpdateMissingStep(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)

	step := domain.Activity{ID: "ghost", ProjectID: "p1", Name: "Ghost"}
	if err := repo.UpdateStep(ctx, step); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("UpdateStep() error = %v, want %v", err, common.ErrNotFound)
	}
}

func TestRepository_Contacts(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	project, err := domain.NewProject(domain.ProjectInput{ID: "p1", Name: "Maple Ridge", Type: domain.ProjectBTMGround}, now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	contact, err := domain.NewContact(domain.ContactInput{
		ID:           "c1",
		ProjectID:    project.ID,
		Organization: "Acme Utility",
		Name:         "Jordan Lee",
		Email:        "jordan@example.com",
	})
	if err != nil {
		t.Fatalf("NewContact() error = %v", err)
	}
	if err := repo.CreateContact(ctx, contact); err != nil {
		t.Fatalf("CreateContact() error = %v", err)
	}

	contacts, err := repo.ListContacts(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListContacts() error = %v", err)
	}
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(contacts))
	}
	if contacts[0].Responsibility != domain.DefaultResponsibility {
		t.Fatalf("unexpected responsibility %q", contacts[0].Responsibility)
	}
}

func newMemoryRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}
