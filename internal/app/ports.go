package app

import (
	"context"
	"time"

	"github.com/landcharge/devtrack/internal/domain"
)

// Client represents the remote project API used by this package.
type Client interface {
	ListProjects(context.Context) ([]domain.Project, error)
	CreateProject(context.Context, domain.Project) (domain.Project, error)

	ListActivities(context.Context, string) ([]domain.Activity, error)
	CreateActivity(context.Context, domain.Activity) (domain.Activity, error)
	UpdateActivity(context.Context, string, domain.Patch) (domain.Activity, error)
	DeleteActivity(context.Context, string) error
	ReorderActivities(context.Context, string, []string) error
	BootstrapActivities(context.Context, string) ([]domain.Activity, error)

	ListContacts(context.Context, string) ([]domain.Contact, error)
	CreateContact(context.Context, domain.Contact) (domain.Contact, error)
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time
