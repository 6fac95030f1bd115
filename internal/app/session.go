package app

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/landcharge/devtrack/internal/domain"
)

// flightKey identifies one in-flight mutation slot.
type flightKey struct {
	rowID string
	field domain.Field
}

// Session coordinates row mutations for one active project. Reads hand out
// snapshots; all writes go through the apply/merge/rollback path so the row
// store only ever holds server truth or a pre-edit snapshot.
type Session struct {
	client Client
	idGen  IDGenerator
	clock  Clock
	logger *log.Logger

	mu         sync.Mutex
	projectID  string
	rows       []domain.Activity
	index      map[string]int
	inflight   map[flightKey]chan struct{}
	contacts   map[domain.ContactKey]struct{}
	view       ViewState
	reqsSeeded bool
}

// SessionConfig holds configuration for session.
type SessionConfig struct {
	IDGen  IDGenerator
	Clock  Clock
	Logger *log.Logger
}

// NewSession constructs a new value for this package.
func NewSession(client Client, cfg SessionConfig) *Session {
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = uuid.NewString
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		client:   client,
		idGen:    idGen,
		clock:    clock,
		logger:   logger,
		index:    map[string]int{},
		inflight: map[flightKey]chan struct{}{},
		contacts: map[domain.ContactKey]struct{}{},
	}
}

// ProjectID returns the active project identifier, or empty when none is open.
func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

// Open loads rows and contacts for the given project and makes it active.
// Responses for mutations still in flight against the previous project are
// discarded when they settle.
func (s *Session) Open(ctx context.Context, projectID string) error {
	rows, err := s.client.ListActivities(ctx, projectID)
	if err != nil {
		return err
	}
	contacts, err := s.client.ListContacts(ctx, projectID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectID = projectID
	s.view = ViewState{}
	s.reqsSeeded = false
	s.replaceRowsLocked(rows)
	s.contacts = map[domain.ContactKey]struct{}{}
	for _, c := range contacts {
		key := c.Key()
		if !key.IsZero() {
			s.contacts[key] = struct{}{}
		}
	}
	return nil
}

// Close clears the row store and view state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectID = ""
	s.rows = nil
	s.index = map[string]int{}
	s.contacts = map[domain.ContactKey]struct{}{}
	s.view = ViewState{}
	s.reqsSeeded = false
}

// Rows returns a snapshot of the row store in insertion order.
func (s *Session) Rows() []domain.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Activity, len(s.rows))
	for i, row := range s.rows {
		out[i] = row.Clone()
	}
	return out
}

// Row returns a snapshot of one row.
func (s *Session) Row(id string) (domain.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Activity{}, false
	}
	return s.rows[i].Clone(), true
}

// View returns the current view state.
func (s *Session) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView replaces the view state.
func (s *Session) SetView(v ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// VisibleRows derives the display list from the current store and view state.
func (s *Session) VisibleRows() []domain.Activity {
	s.mu.Lock()
	view := s.view
	rows := make([]domain.Activity, len(s.rows))
	for i, row := range s.rows {
		rows[i] = row.Clone()
	}
	s.mu.Unlock()
	return DeriveView(rows, view)
}

// Reload refetches the active project's rows from the server.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	projectID := s.projectID
	s.mu.Unlock()
	if projectID == "" {
		return ErrNoProject
	}

	rows, err := s.client.ListActivities(ctx, projectID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID != projectID {
		return nil
	}
	s.replaceRowsLocked(rows)
	return nil
}

// CreateActivity creates a custom row in the active project and stores the
// server-assigned result.
func (s *Session) CreateActivity(ctx context.Context, name string, phase int) (domain.Activity, error) {
	s.mu.Lock()
	projectID := s.projectID
	sequence := len(s.rows)
	s.mu.Unlock()
	if projectID == "" {
		return domain.Activity{}, ErrNoProject
	}

	row, err := domain.NewActivity(domain.ActivityInput{
		ID:        s.idGen(),
		ProjectID: projectID,
		Sequence:  sequence,
		Name:      name,
		Phase:     phase,
		Custom:    true,
	})
	if err != nil {
		return domain.Activity{}, err
	}

	created, err := s.client.CreateActivity(ctx, row)
	if err != nil {
		return domain.Activity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID != projectID {
		return created, nil
	}
	s.upsertRowLocked(created)
	return created, nil
}

// DeleteActivity removes a custom row. Built-in template rows are refused
// locally before any request is made.
func (s *Session) DeleteActivity(ctx context.Context, id string) error {
	s.mu.Lock()
	projectID := s.projectID
	i, ok := s.index[id]
	var custom bool
	if ok {
		custom = s.rows[i].Custom
	}
	s.mu.Unlock()
	if projectID == "" {
		return ErrNoProject
	}
	if !ok {
		return ErrRowNotLoaded
	}
	if !custom {
		return domain.ErrNotDeletable
	}

	if err := s.client.DeleteActivity(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID != projectID {
		return nil
	}
	s.removeRowLocked(id)
	return nil
}

// Bootstrap seeds the active project's rows from its template and replaces
// the row store with the server's result.
func (s *Session) Bootstrap(ctx context.Context) ([]domain.Activity, error) {
	s.mu.Lock()
	projectID := s.projectID
	s.mu.Unlock()
	if projectID == "" {
		return nil, ErrNoProject
	}

	rows, err := s.client.BootstrapActivities(ctx, projectID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID != projectID {
		return rows, nil
	}
	s.replaceRowsLocked(rows)
	return rows, nil
}

// Reorder persists a new row order and renumbers the local store to match.
func (s *Session) Reorder(ctx context.Context, ids []string) error {
	s.mu.Lock()
	projectID := s.projectID
	s.mu.Unlock()
	if projectID == "" {
		return ErrNoProject
	}

	if err := s.client.ReorderActivities(ctx, projectID, ids); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID != projectID {
		return nil
	}
	for seq, id := range ids {
		if i, ok := s.index[id]; ok {
			s.rows[i].Sequence = seq
		}
	}
	return nil
}

// ResetOrder restores ascending ID order for the active project and
// refetches the rows so the store reflects the server's renumbering.
func (s *Session) ResetOrder(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, len(s.rows))
	for i, row := range s.rows {
		ids[i] = row.ID
	}
	s.mu.Unlock()
	sort.Strings(ids)

	if err := s.Reorder(ctx, ids); err != nil {
		return err
	}
	return s.Reload(ctx)
}

// replaceRowsLocked swaps the row store contents. Caller holds the lock.
func (s *Session) replaceRowsLocked(rows []domain.Activity) {
	s.rows = make([]domain.Activity, len(rows))
	s.index = make(map[string]int, len(rows))
	for i, row := range rows {
		s.rows[i] = row.Clone()
		s.index[row.ID] = i
	}
}

// upsertRowLocked inserts or replaces one row. Caller holds the lock.
func (s *Session) upsertRowLocked(row domain.Activity) {
	if i, ok := s.index[row.ID]; ok {
		s.rows[i] = row.Clone()
		return
	}
	s.index[row.ID] = len(s.rows)
	s.rows = append(s.rows, row.Clone())
}

// removeRowLocked deletes one row and reindexes. Caller holds the lock.
func (s *Session) removeRowLocked(id string) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.rows); j++ {
		s.index[s.rows[j].ID] = j
	}
}
