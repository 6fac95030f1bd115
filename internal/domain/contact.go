package domain

import "strings"

// DefaultResponsibility is assigned when a seeded contact carries no explicit role.
const DefaultResponsibility = "Unspecified"

// Contact is one external party attached to a project.
type Contact struct {
	ID             string
	ProjectID      string
	Organization   string
	Type           string
	Responsibility string
	Name           string
	Title          string
	Email          string
	Phone1         string
	Phone2         string
}

// ContactInput holds input values for new contacts.
type ContactInput struct {
	ID             string
	ProjectID      string
	Organization   string
	Type           string
	Responsibility string
	Name           string
	Title          string
	Email          string
	Phone1         string
	Phone2         string
}

// NewContact constructs a new value for this package.
func NewContact(in ContactInput) (Contact, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Organization = strings.TrimSpace(in.Organization)
	in.Responsibility = strings.TrimSpace(in.Responsibility)

	if in.ID == "" {
		return Contact{}, ErrInvalidID
	}
	if in.ProjectID == "" {
		return Contact{}, ErrInvalidID
	}
	if in.Organization == "" {
		return Contact{}, ErrInvalidName
	}
	if in.Responsibility == "" {
		in.Responsibility = DefaultResponsibility
	}

	return Contact{
		ID:             in.ID,
		ProjectID:      in.ProjectID,
		Organization:   in.Organization,
		Type:           strings.TrimSpace(in.Type),
		Responsibility: in.Responsibility,
		Name:           strings.TrimSpace(in.Name),
		Title:          strings.TrimSpace(in.Title),
		Email:          strings.TrimSpace(in.Email),
		Phone1:         strings.TrimSpace(in.Phone1),
		Phone2:         strings.TrimSpace(in.Phone2),
	}, nil
}

// ContactKey is the normalized identity used to detect duplicate contacts
// within a project. Two contacts collide when their organizations match and
// either both names are empty or both names match.
type ContactKey struct {
	Organization string
	Name         string
}

// KeyFor normalizes org and name into a dedup key. An empty organization
// yields the zero key, which callers treat as not deduplicatable.
func KeyFor(organization, name string) ContactKey {
	org := strings.ToLower(strings.TrimSpace(organization))
	if org == "" {
		return ContactKey{}
	}
	return ContactKey{
		Organization: org,
		Name:         strings.ToLower(strings.TrimSpace(name)),
	}
}

// IsZero reports whether the expected condition is satisfied.
func (k ContactKey) IsZero() bool {
	return k.Organization == ""
}

// Key returns the contact's dedup key.
func (c Contact) Key() ContactKey {
	return KeyFor(c.Organization, c.Name)
}
