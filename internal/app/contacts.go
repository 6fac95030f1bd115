package app

import (
	"context"

	"github.com/landcharge/devtrack/internal/domain"
)

// Contacts returns the contacts currently known for the active project.
func (s *Session) Contacts(ctx context.Context) ([]domain.Contact, error) {
	s.mu.Lock()
	projectID := s.projectID
	s.mu.Unlock()
	if projectID == "" {
		return nil, ErrNoProject
	}
	return s.client.ListContacts(ctx, projectID)
}

// seedContact creates a project contact for an edited organization and name
// if no equivalent one exists. Matching runs against the session's known-key
// set so repeated identical edits stay idempotent without a reload. Creation
// is best effort; a failure is logged and never unwinds the field edit that
// triggered it.
func (s *Session) seedContact(ctx context.Context, rowID, organization, name, responsibility string) {
	key := domain.KeyFor(organization, name)
	if key.IsZero() {
		return
	}

	s.mu.Lock()
	projectID := s.projectID
	_, known := s.contacts[key]
	if !known {
		s.contacts[key] = struct{}{}
	}
	s.mu.Unlock()
	if projectID == "" || known {
		return
	}

	contact, err := domain.NewContact(domain.ContactInput{
		ID:             s.idGen(),
		ProjectID:      projectID,
		Organization:   organization,
		Name:           name,
		Responsibility: responsibility,
	})
	if err != nil {
		s.logger.Warn("skipping contact for edited row", "row", rowID, "err", err)
		return
	}

	if _, err := s.client.CreateContact(ctx, contact); err != nil {
		s.logger.Warn("contact creation failed", "row", rowID, "organization", contact.Organization, "err", err)
		s.mu.Lock()
		delete(s.contacts, key)
		s.mu.Unlock()
	}
}

// AddContact explicitly creates a contact in the active project.
func (s *Session) AddContact(ctx context.Context, in domain.ContactInput) (domain.Contact, error) {
	s.mu.Lock()
	projectID := s.projectID
	s.mu.Unlock()
	if projectID == "" {
		return domain.Contact{}, ErrNoProject
	}

	in.ID = s.idGen()
	in.ProjectID = projectID
	contact, err := domain.NewContact(in)
	if err != nil {
		return domain.Contact{}, err
	}
	created, err := s.client.CreateContact(ctx, contact)
	if err != nil {
		return domain.Contact{}, err
	}

	s.mu.Lock()
	if key := created.Key(); !key.IsZero() {
		s.contacts[key] = struct{}{}
	}
	s.mu.Unlock()
	return created, nil
}
