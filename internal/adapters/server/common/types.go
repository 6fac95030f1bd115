// Package common provides transport-agnostic server contracts shared by the
// HTTP and MCP adapters and the REST client.
package common

import (
	"errors"
	"strings"
	"time"

	"github.com/landcharge/devtrack/internal/domain"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrNotDeletable reports a delete attempt against a built-in template step.
var ErrNotDeletable = errors.New("step is not deletable")

// ProjectPayload is the wire form of one project.
type ProjectPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// ProjectPayloadFrom converts a domain project to its wire form.
func ProjectPayloadFrom(p domain.Project) ProjectPayload {
	return ProjectPayload{
		ID:        p.ID,
		Name:      p.Name,
		Type:      string(p.Type),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// StepPayload is the wire form of one development step. Responses always
// carry the complete row; duration_days is server-computed output only.
type StepPayload struct {
	ID                    string   `json:"id"`
	ProjectID             string   `json:"project_id"`
	Sequence              int      `json:"sequence"`
	Name                  string   `json:"name"`
	DevType               string   `json:"dev_type"`
	Phase                 int      `json:"phase"`
	Status                string   `json:"status"`
	StartDate             *string  `json:"start_date"`
	EndDate               *string  `json:"end_date"`
	DurationDays          int      `json:"duration_days"`
	PlannedSpend          *float64 `json:"planned_spend"`
	ActualSpend           *float64 `json:"actual_spend"`
	Agency                string   `json:"agency"`
	Owner                 string   `json:"owner"`
	ResponsibleParty      string   `json:"responsible_party"`
	ResponsibleIndividual string   `json:"responsible_individual"`
	Process               string   `json:"process"`
	Link                  string   `json:"link"`
	Requirement           string   `json:"requirement"`
	StorageHybridImpact   string   `json:"storage_hybrid_impact"`
	MilestoneGates        string   `json:"milestones_ntp_gates"`
	RiskHeatmap           string   `json:"risk_heatmap"`
	Custom                bool     `json:"custom"`
}

// StepPayloadFrom converts a domain activity to its wire form.
func StepPayloadFrom(a domain.Activity) StepPayload {
	p := StepPayload{
		ID:                    a.ID,
		ProjectID:             a.ProjectID,
		Sequence:              a.Sequence,
		Name:                  a.Name,
		DevType:               a.DevType,
		Phase:                 a.Phase,
		Status:                string(a.Status),
		DurationDays:          a.DurationDays,
		Agency:                a.Agency,
		Owner:                 string(a.Owner),
		ResponsibleParty:      a.ResponsibleParty,
		ResponsibleIndividual: a.ResponsibleIndividual,
		Process:               a.Process,
		Link:                  a.Link,
		Requirement:           a.Requirements.String(),
		StorageHybridImpact:   a.StorageHybridImpact,
		MilestoneGates:        a.MilestoneGates,
		RiskHeatmap:           string(a.RiskLevel),
		Custom:                a.Custom,
	}
	if a.StartDate != nil {
		s := a.StartDate.String()
		p.StartDate = &s
	}
	if a.EndDate != nil {
		s := a.EndDate.String()
		p.EndDate = &s
	}
	if a.PlannedSpend != nil {
		v := *a.PlannedSpend
		p.PlannedSpend = &v
	}
	if a.ActualSpend != nil {
		v := *a.ActualSpend
		p.ActualSpend = &v
	}
	return p
}

// ToActivity converts the wire form back into a domain activity.
func (p StepPayload) ToActivity() (domain.Activity, error) {
	a := domain.Activity{
		ID:                    strings.TrimSpace(p.ID),
		ProjectID:             strings.TrimSpace(p.ProjectID),
		Sequence:              p.Sequence,
		Name:                  strings.TrimSpace(p.Name),
		DevType:               strings.TrimSpace(p.DevType),
		Phase:                 p.Phase,
		Status:                domain.Status(p.Status),
		DurationDays:          p.DurationDays,
		Agency:                p.Agency,
		Owner:                 domain.OwnerType(p.Owner),
		ResponsibleParty:      p.ResponsibleParty,
		ResponsibleIndividual: p.ResponsibleIndividual,
		Process:               p.Process,
		Link:                  p.Link,
		StorageHybridImpact:   p.StorageHybridImpact,
		MilestoneGates:        p.MilestoneGates,
		RiskLevel:             domain.RiskLevel(p.RiskHeatmap),
		Custom:                p.Custom,
	}
	if p.StartDate != nil && strings.TrimSpace(*p.StartDate) != "" {
		d, err := domain.ParseDate(*p.StartDate)
		if err != nil {
			return domain.Activity{}, err
		}
		a.StartDate = &d
	}
	if p.EndDate != nil && strings.TrimSpace(*p.EndDate) != "" {
		d, err := domain.ParseDate(*p.EndDate)
		if err != nil {
			return domain.Activity{}, err
		}
		a.EndDate = &d
	}
	if p.PlannedSpend != nil {
		v := *p.PlannedSpend
		a.PlannedSpend = &v
	}
	if p.ActualSpend != nil {
		v := *p.ActualSpend
		a.ActualSpend = &v
	}
	reqs, err := domain.ParseRequirementSet(p.Requirement)
	if err != nil {
		return domain.Activity{}, err
	}
	a.Requirements = reqs
	return a, nil
}

// ContactPayload is the wire form of one project contact.
type ContactPayload struct {
	ID             string `json:"id"`
	ProjectID      string `json:"project_id"`
	Organization   string `json:"organization"`
	Type           string `json:"type"`
	Responsibility string `json:"responsibility"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Email          string `json:"email"`
	Phone1         string `json:"phone1"`
	Phone2         string `json:"phone2"`
}

// ContactPayloadFrom converts a domain contact to its wire form.
func ContactPayloadFrom(c domain.Contact) ContactPayload {
	return ContactPayload{
		ID:             c.ID,
		ProjectID:      c.ProjectID,
		Organization:   c.Organization,
		Type:           c.Type,
		Responsibility: c.Responsibility,
		Name:           c.Name,
		Title:          c.Title,
		Email:          c.Email,
		Phone1:         c.Phone1,
		Phone2:         c.Phone2,
	}
}

// CreateProjectRequest carries one project creation payload.
type CreateProjectRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateStepRequest carries one custom step creation payload.
type CreateStepRequest struct {
	Name  string `json:"name"`
	Phase int    `json:"phase"`
}

// ReorderStepsRequest carries the full step order for one project.
type ReorderStepsRequest struct {
	IDs []string `json:"ids"`
}

// CreateContactRequest carries one contact creation payload.
type CreateContactRequest struct {
	Organization   string `json:"organization"`
	Type           string `json:"type"`
	Responsibility string `json:"responsibility"`
	Name           string `json:"name"`
	Title          string `json:"title"`
	Email          string `json:"email"`
	Phone1         string `json:"phone1"`
	Phone2         string `json:"phone2"`
}
