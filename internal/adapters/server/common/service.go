package common

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/landcharge/devtrack/internal/domain"
)

// Repository represents repository data used by this package.
type Repository interface {
	CreateProject(context.Context, domain.Project) error
	GetProject(context.Context, string) (domain.Project, error)
	ListProjects(context.Context) ([]domain.Project, error)

	CreateStep(context.Context, domain.Activity) error
	CreateSteps(context.Context, []domain.Activity) error
	GetStep(context.Context, string) (domain.Activity, error)
	ListSteps(context.Context, string) ([]domain.Activity, error)
	UpdateStep(context.Context, domain.Activity) error
	DeleteStep(context.Context, string) error
	SetStepOrder(context.Context, string, []string) error

	CreateContact(context.Context, domain.Contact) error
	ListContacts(context.Context, string) ([]domain.Contact, error)
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// StepService implements the project tracking operations behind the HTTP
// and MCP adapters.
type StepService struct {
	repo  Repository
	idGen IDGenerator
	clock Clock
}

// NewStepService constructs a new value for this package.
func NewStepService(repo Repository, idGen IDGenerator, clock Clock) *StepService {
	if idGen == nil {
		idGen = uuid.NewString
	}
	if clock == nil {
		clock = time.Now
	}
	return &StepService{repo: repo, idGen: idGen, clock: clock}
}

// ListProjects lists all projects.
func (s *StepService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.repo.ListProjects(ctx)
}

// CreateProject creates one project.
func (s *StepService) CreateProject(ctx context.Context, req CreateProjectRequest) (domain.Project, error) {
	projectType, ok := domain.ResolveProjectType(req.Type)
	if !ok {
		return domain.Project{}, fmt.Errorf("%w: unknown project type %q", ErrInvalidRequest, req.Type)
	}
	project, err := domain.NewProject(domain.ProjectInput{
		ID:   s.idGen(),
		Name: req.Name,
		Type: projectType,
	}, s.clock())
	if err != nil {
		return domain.Project{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// ListSteps lists a project's steps in sequence order.
func (s *StepService) ListSteps(ctx context.Context, projectID string) ([]domain.Activity, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListSteps(ctx, projectID)
}

// CreateStep creates one custom step at the end of the project's order.
func (s *StepService) CreateStep(ctx context.Context, projectID string, req CreateStepRequest) (domain.Activity, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return domain.Activity{}, err
	}
	existing, err := s.repo.ListSteps(ctx, projectID)
	if err != nil {
		return domain.Activity{}, err
	}
	step, err := domain.NewActivity(domain.ActivityInput{
		ID:        s.idGen(),
		ProjectID: projectID,
		Sequence:  len(existing),
		Name:      req.Name,
		Phase:     req.Phase,
		Custom:    true,
	})
	if err != nil {
		return domain.Activity{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := s.repo.CreateStep(ctx, step); err != nil {
		return domain.Activity{}, err
	}
	return step, nil
}

// BootstrapSteps seeds a project's steps from its type template. A project
// that already has steps keeps them; the existing rows are returned
// unchanged.
func (s *StepService) BootstrapSteps(ctx context.Context, projectID string) ([]domain.Activity, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.ListSteps(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	template := domain.BootstrapSteps(project.Type)
	steps := make([]domain.Activity, 0, len(template))
	for i, t := range template {
		step, err := domain.NewActivity(domain.ActivityInput{
			ID:        s.idGen(),
			ProjectID: projectID,
			Sequence:  i,
			Name:      t.Name,
			DevType:   t.DevType,
			Phase:     t.Phase,
		})
		if err != nil {
			return nil, err
		}
		step.Requirements = append(domain.RequirementSet(nil), t.Requirements...)
		steps = append(steps, step)
	}
	if err := s.repo.CreateSteps(ctx, steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// PatchStep applies a partial update to one step and returns the complete
// row with the duration recomputed.
func (s *StepService) PatchStep(ctx context.Context, stepID string, patch domain.Patch) (domain.Activity, error) {
	step, err := s.repo.GetStep(ctx, stepID)
	if err != nil {
		return domain.Activity{}, err
	}
	if err := step.Apply(patch); err != nil {
		return domain.Activity{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	step.RefreshDuration()
	if err := s.repo.UpdateStep(ctx, step); err != nil {
		return domain.Activity{}, err
	}
	return step, nil
}

// DeleteStep removes one custom step. Built-in template steps are refused.
func (s *StepService) DeleteStep(ctx context.Context, stepID string) error {
	step, err := s.repo.GetStep(ctx, stepID)
	if err != nil {
		return err
	}
	if !step.Custom {
		return ErrNotDeletable
	}
	return s.repo.DeleteStep(ctx, stepID)
}

// ReorderSteps persists a new sequence for the project's steps. Every
// submitted identifier must belong to the project.
func (s *StepService) ReorderSteps(ctx context.Context, projectID string, ids []string) error {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: ids are required", ErrInvalidRequest)
	}
	steps, err := s.repo.ListSteps(ctx, projectID)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		known[step.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: step %q not in project", ErrInvalidRequest, id)
		}
	}
	return s.repo.SetStepOrder(ctx, projectID, ids)
}

// ListContacts lists a project's contacts.
func (s *StepService) ListContacts(ctx context.Context, projectID string) ([]domain.Contact, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListContacts(ctx, projectID)
}

// CreateContact creates one project contact.
func (s *StepService) CreateContact(ctx context.Context, projectID string, req CreateContactRequest) (domain.Contact, error) {
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return domain.Contact{}, err
	}
	if strings.TrimSpace(req.Organization) == "" {
		return domain.Contact{}, fmt.Errorf("%w: organization is required", ErrInvalidRequest)
	}
	contact, err := domain.NewContact(domain.ContactInput{
		ID:             s.idGen(),
		ProjectID:      projectID,
		Organization:   req.Organization,
		Type:           req.Type,
		Responsibility: req.Responsibility,
		Name:           req.Name,
		Title:          req.Title,
		Email:          req.Email,
		Phone1:         req.Phone1,
		Phone2:         req.Phone2,
	})
	if err != nil {
		return domain.Contact{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := s.repo.CreateContact(ctx, contact); err != nil {
		return domain.Contact{}, err
	}
	return contact, nil
}
