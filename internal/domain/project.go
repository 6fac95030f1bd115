package domain

import (
	"slices"
	"strings"
	"time"
)

// ProjectType names the built-in template used to seed a project's activities.
type ProjectType string

const (
	ProjectBTMGround         ProjectType = "BTM Ground"
	ProjectBTMRooftop        ProjectType = "BTM Rooftop"
	ProjectFTMGroundCommSol  ProjectType = "FTM Ground Community Solar"
	ProjectFTMRooftopCommSol ProjectType = "FTM Rooftop Community Solar"
)

var validProjectTypes = []ProjectType{
	ProjectBTMGround,
	ProjectBTMRooftop,
	ProjectFTMGroundCommSol,
	ProjectFTMRooftopCommSol,
}

// ProjectTypeOptions returns the selectable project types in display order.
func ProjectTypeOptions() []ProjectType {
	return append([]ProjectType(nil), validProjectTypes...)
}

// Project is one renewable development project.
type Project struct {
	ID        string
	Name      string
	Type      ProjectType
	CreatedAt time.Time
}

// ProjectInput holds input values for new projects.
type ProjectInput struct {
	ID   string
	Name string
	Type ProjectType
}

// NewProject constructs a new value for this package.
func NewProject(in ProjectInput, now time.Time) (Project, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)

	if in.ID == "" {
		return Project{}, ErrInvalidID
	}
	if in.Name == "" {
		return Project{}, ErrInvalidName
	}
	if !slices.Contains(validProjectTypes, in.Type) {
		return Project{}, ErrInvalidProjectType
	}

	return Project{
		ID:        in.ID,
		Name:      in.Name,
		Type:      in.Type,
		CreatedAt: now.UTC(),
	}, nil
}
