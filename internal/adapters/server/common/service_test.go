package common

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/landcharge/devtrack/internal/domain"
)

type fakeRepo struct {
	projects map[string]domain.Project
	steps    map[string]domain.Activity
	contacts map[string][]domain.Contact
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		projects: map[string]domain.Project{},
		steps:    map[string]domain.Activity{},
		contacts: map[string][]domain.Contact{},
	}
}

func (f *fakeRepo) CreateProject(_ context.Context, p domain.Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRepo) GetProject(_ context.Context, id string) (domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return domain.Project{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) ListProjects(context.Context) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) CreateStep(_ context.Context, a domain.Activity) error {
	f.steps[a.ID] = a
	return nil
}

func (f *fakeRepo) CreateSteps(ctx context.Context, steps []domain.Activity) error {
	for _, step := range steps {
		if err := f.CreateStep(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRepo) GetStep(_ context.Context, id string) (domain.Activity, error) {
	a, ok := f.steps[id]
	if !ok {
		return domain.Activity{}, ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) ListSteps(_ context.Context, projectID string) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, a := range f.steps {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeRepo) UpdateStep(_ context.Context, a domain.Activity) error {
	if _, ok := f.steps[a.ID]; !ok {
		return ErrNotFound
	}
	f.steps[a.ID] = a
	return nil
}

func (f *fakeRepo) DeleteStep(_ context.Context, id string) error {
	if _, ok := f.steps[id]; !ok {
		return ErrNotFound
	}
	delete(f.steps, id)
	return nil
}

func (f *fakeRepo) SetStepOrder(_ context.Context, projectID string, ids []string) error {
	for seq, id := range ids {
		if a, ok := f.steps[id]; ok && a.ProjectID == projectID {
			a.Sequence = seq
			f.steps[id] = a
		}
	}
	return nil
}

func (f *fakeRepo) CreateContact(_ context.Context, c domain.Contact) error {
	f.contacts[c.ProjectID] = append(f.contacts[c.ProjectID], c)
	return nil
}

func (f *fakeRepo) ListContacts(_ context.Context, projectID string) ([]domain.Contact, error) {
	return append([]domain.Contact(nil), f.contacts[projectID]...), nil
}

func newTestService(repo *fakeRepo) *StepService {
	var n int
	return NewStepService(repo, func() string { n++; return fmt.Sprintf("id-%d", n) }, func() time.Time {
		return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	})
}

func seedProject(t *testing.T, svc *StepService) domain.Project {
	t.Helper()
	project, err := svc.CreateProject(context.Background(), CreateProjectRequest{
		Name: "Maple Ridge",
		Type: "BTM Ground",
	})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	return project
}

func TestCreateProjectValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())
	if _, err := svc.CreateProject(context.Background(), CreateProjectRequest{Name: "x", Type: "Offshore Wind"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestBootstrapSteps(t *testing.T) {
	svc := newTestService(newFakeRepo())
	project := seedProject(t, svc)
	ctx := context.Background()

	steps, err := svc.BootstrapSteps(ctx, project.ID)
	if err != nil {
		t.Fatalf("BootstrapSteps() error = %v", err)
	}
	if len(steps) == 0 {
		t.Fatal("expected template steps")
	}
	for i, step := range steps {
		if step.Sequence != i {
			t.Fatalf("step %d has sequence %d", i, step.Sequence)
		}
		if step.Custom {
			t.Fatalf("template step %q marked custom", step.Name)
		}
	}

	// A second bootstrap returns the existing rows untouched.
	again, err := svc.BootstrapSteps(ctx, project.ID)
	if err != nil {
		t.Fatalf("BootstrapSteps() error = %v", err)
	}
	if len(again) != len(steps) {
		t.Fatalf("bootstrap duplicated rows: %d then %d", len(steps), len(again))
	}
	if again[0].ID != steps[0].ID {
		t.Fatalf("existing rows replaced: %q != %q", again[0].ID, steps[0].ID)
	}
}

func TestBootstrapStepsUnknownProject(t *testing.T) {
	svc := newTestService(newFakeRepo())
	if _, err := svc.BootstrapSteps(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPatchStepRecomputesDuration(t *testing.T) {
	svc := newTestService(newFakeRepo())
	project := seedProject(t, svc)
	ctx := context.Background()
	step, err := svc.CreateStep(ctx, project.ID, CreateStepRequest{Name: "Custom Step"})
	if err != nil {
		t.Fatalf("CreateStep() error = %v", err)
	}

	start := domain.MustParseDate("2024-01-01")
	end := domain.MustParseDate("2024-01-11")
	updated, err := svc.PatchStep(ctx, step.ID, domain.Patch{
		StartDate: &domain.DateChange{Value: &start},
		EndDate:   &domain.DateChange{Value: &end},
	})
	if err != nil {
		t.Fatalf("PatchStep() error = %v", err)
	}
	if updated.DurationDays != 10 {
		t.Fatalf("DurationDays = %d, want 10", updated.DurationDays)
	}

	// Clearing a date zeroes the derived duration.
	updated, err = svc.PatchStep(ctx, step.ID, domain.Patch{EndDate: &domain.DateChange{}})
	if err != nil {
		t.Fatalf("PatchStep() error = %v", err)
	}
	if updated.EndDate != nil || updated.DurationDays != 0 {
		t.Fatalf("unexpected state end=%v duration=%d", updated.EndDate, updated.DurationDays)
	}
}

func TestPatchStepValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())
	project := seedProject(t, svc)
	ctx := context.Background()
	step, err := svc.CreateStep(ctx, project.ID, CreateStepRequest{Name: "Custom Step"})
	if err != nil {
		t.Fatalf("CreateStep() error = %v", err)
	}
	bad := domain.Status("Done-ish")
	if _, err := svc.PatchStep(ctx, step.ID, domain.Patch{Status: &bad}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if _, err := svc.PatchStep(ctx, "nope", domain.Patch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteStepGuardsTemplateRows(t *testing.T) {
	svc := newTestService(newFakeRepo())
	project := seedProject(t, svc)
	ctx := context.Background()

	steps, err := svc.BootstrapSteps(ctx, project.ID)
	if err != nil {
		t.Fatalf("BootstrapSteps() error = %v", err)
	}
	if err := svc.DeleteStep(ctx, steps[0].ID); !errors.Is(err, ErrNotDeletable) {
		t.Fatalf("expected ErrNotDeletable, got %v", err)
	}

	custom, err := svc.CreateStep(ctx, project.ID, CreateStepRequest{Name: "Custom Step"})
	if err != nil {
		t.Fatalf("CreateStep() error = %v", err)
	}
	if err := svc.DeleteStep(ctx, custom.ID); err != nil {
		t.Fatalf("DeleteStep() error = %v", err)
	}
}

func TestReorderSteps(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	project := seedProject(t, svc)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"One", "Two", "Three"} {
		step, err := svc.CreateStep(ctx, project.ID, CreateStepRequest{Name: name})
		if err != nil {
			t.Fatalf("CreateStep() error = %v", err)
		}
		ids = append(ids, step.ID)
	}

	reversed := []string{ids[2], ids[1], ids[0]}
	if err := svc.ReorderSteps(ctx, project.ID, reversed); err != nil {
		t.Fatalf("ReorderSteps() error = %v", err)
	}
	steps, err := svc.ListSteps(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListSteps() error = %v", err)
	}
	if steps[0].ID != ids[2] || steps[2].ID != ids[0] {
		t.Fatalf("unexpected order %v", steps)
	}

	if err := svc.ReorderSteps(ctx, project.ID, []string{"stranger"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCreateContact(t *testing.T) {
	svc := newTestService(newFakeRepo())
	project := seedProject(t, svc)
	ctx := context.Background()

	contact, err := svc.CreateContact(ctx, project.ID, CreateContactRequest{Organization: "Acme Utility"})
	if err != nil {
		t.Fatalf("CreateContact() error = %v", err)
	}
	if contact.Responsibility != domain.DefaultResponsibility {
		t.Fatalf("unexpected responsibility %q", contact.Responsibility)
	}
	if _, err := svc.CreateContact(ctx, project.ID, CreateContactRequest{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
