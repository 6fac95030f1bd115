package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/landcharge/devtrack/internal/app"
	"github.com/landcharge/devtrack/internal/domain"
)

type fakeClient struct {
	projects []domain.Project
	rows     map[string][]domain.Activity
	contacts map[string][]domain.Contact
	reorders [][]string
	nextID   int
	err      error
}

func newFakeClient(projects []domain.Project, rows []domain.Activity) *fakeClient {
	byProject := map[string][]domain.Activity{}
	for _, row := range rows {
		byProject[row.ProjectID] = append(byProject[row.ProjectID], row)
	}
	return &fakeClient{
		projects: projects,
		rows:     byProject,
		contacts: map[string][]domain.Contact{},
	}
}

func (f *fakeClient) ListProjects(context.Context) ([]domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Project, len(f.projects))
	copy(out, f.projects)
	return out, nil
}

func (f *fakeClient) CreateProject(_ context.Context, project domain.Project) (domain.Project, error) {
	f.nextID++
	project.ID = fmt.Sprintf("p-new-%d", f.nextID)
	f.projects = append(f.projects, project)
	return project, nil
}

func (f *fakeClient) ListActivities(_ context.Context, projectID string) ([]domain.Activity, error) {
	if f.err != nil {
		return nil, f.err
	}
	rows := f.rows[projectID]
	out := make([]domain.Activity, len(rows))
	for i, row := range rows {
		out[i] = row.Clone()
	}
	return out, nil
}

func (f *fakeClient) CreateActivity(_ context.Context, row domain.Activity) (domain.Activity, error) {
	f.rows[row.ProjectID] = append(f.rows[row.ProjectID], row.Clone())
	return row, nil
}

func (f *fakeClient) UpdateActivity(_ context.Context, id string, patch domain.Patch) (domain.Activity, error) {
	for projectID, rows := range f.rows {
		for i, row := range rows {
			if row.ID != id {
				continue
			}
			updated := row.Clone()
			if err := updated.Apply(patch); err != nil {
				return domain.Activity{}, err
			}
			updated.RefreshDuration()
			f.rows[projectID][i] = updated
			return updated.Clone(), nil
		}
	}
	return domain.Activity{}, app.ErrNotFound
}

func (f *fakeClient) DeleteActivity(_ context.Context, id string) error {
	for projectID, rows := range f.rows {
		for i, row := range rows {
			if row.ID == id {
				f.rows[projectID] = append(rows[:i], rows[i+1:]...)
				return nil
			}
		}
	}
	return app.ErrNotFound
}

func (f *fakeClient) ReorderActivities(_ context.Context, projectID string, ids []string) error {
	f.reorders = append(f.reorders, ids)
	for seq, id := range ids {
		for i, row := range f.rows[projectID] {
			if row.ID == id {
				f.rows[projectID][i].Sequence = seq
			}
		}
	}
	return nil
}

func (f *fakeClient) BootstrapActivities(_ context.Context, projectID string) ([]domain.Activity, error) {
	var projectType domain.ProjectType
	for _, project := range f.projects {
		if project.ID == projectID {
			projectType = project.Type
		}
	}
	var out []domain.Activity
	for i, tmpl := range domain.BootstrapSteps(projectType) {
		f.nextID++
		row, err := domain.NewActivity(domain.ActivityInput{
			ID:        fmt.Sprintf("seed-%d", f.nextID),
			ProjectID: projectID,
			Sequence:  i,
			Name:      tmpl.Name,
			DevType:   tmpl.DevType,
			Phase:     tmpl.Phase,
		})
		if err != nil {
			return nil, err
		}
		row.Requirements = append(domain.RequirementSet(nil), tmpl.Requirements...)
		out = append(out, row)
	}
	f.rows[projectID] = append(f.rows[projectID], out...)
	return out, nil
}

func (f *fakeClient) ListContacts(_ context.Context, projectID string) ([]domain.Contact, error) {
	out := make([]domain.Contact, len(f.contacts[projectID]))
	copy(out, f.contacts[projectID])
	return out, nil
}

func (f *fakeClient) CreateContact(_ context.Context, contact domain.Contact) (domain.Contact, error) {
	f.contacts[contact.ProjectID] = append(f.contacts[contact.ProjectID], contact)
	return contact, nil
}

func fixtureProject(id, name string) domain.Project {
	return domain.Project{
		ID:        id,
		Name:      name,
		Type:      domain.ProjectBTMGround,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func fixtureRow(id, projectID string, sequence int, name string) domain.Activity {
	return domain.Activity{
		ID:        id,
		ProjectID: projectID,
		Sequence:  sequence,
		Name:      name,
	}
}

func newTestModel(t *testing.T, fake *fakeClient) Model {
	t.Helper()
	session := app.NewSession(fake, app.SessionConfig{
		IDGen: func() string { return "generated-id" },
		Clock: func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	return NewModel(fake, session, WithHighlightDuration(0))
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 160, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = applyMsg(t, m, keyRune(r))
	}
	return m
}

func columnIndexOf(t *testing.T, m Model, field domain.Field) int {
	t.Helper()
	for i, col := range m.columns() {
		if col.field == field {
			return i
		}
	}
	t.Fatalf("no visible column for field %q", field)
	return -1
}

func TestModelLoadAndNavigation(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	rows := []domain.Activity{
		fixtureRow("a1", "p1", 0, "Site Control"),
		fixtureRow("a2", "p1", 1, "Zoning Review"),
	}
	fake := newFakeClient([]domain.Project{project}, rows)
	m := loadReadyModel(t, newTestModel(t, fake))

	if len(m.rows) != 2 {
		t.Fatalf("expected 2 rows loaded, got %d", len(m.rows))
	}
	if m.status != "ready" {
		t.Fatalf("status = %q, want ready", m.status)
	}
	m = applyMsg(t, m, keyRune('j'))
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}
	m = applyMsg(t, m, keyRune('j'))
	if m.cursor != 1 {
		t.Fatalf("cursor must clamp at the last row, got %d", m.cursor)
	}
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, keyRune('l'))
	if m.colIdx != 2 {
		t.Fatalf("colIdx = %d, want 2", m.colIdx)
	}
	m = applyMsg(t, m, keyRune('h'))
	if m.colIdx != 1 {
		t.Fatalf("colIdx = %d, want 1", m.colIdx)
	}
}

func TestModelNameEditRoundTrip(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{
		fixtureRow("a1", "p1", 0, "Old Name"),
	})
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeEditCell {
		t.Fatalf("expected edit mode, got %v", m.mode)
	}
	if m.editInput.Value() != "Old Name" {
		t.Fatalf("edit input seeded with %q", m.editInput.Value())
	}
	m.editInput.SetValue("Fence Permit")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeNone {
		t.Fatalf("expected normal mode after submit, got %v", m.mode)
	}
	if m.status != "name saved" {
		t.Fatalf("status = %q, want name saved", m.status)
	}
	if got := fake.rows["p1"][0].Name; got != "Fence Permit" {
		t.Fatalf("persisted name = %q", got)
	}
}

func TestModelStatusCyclesInPlace(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{
		fixtureRow("a1", "p1", 0, "Site Control"),
	})
	m := loadReadyModel(t, newTestModel(t, fake))

	m.colIdx = columnIndexOf(t, m, domain.FieldStatus)
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeNone {
		t.Fatalf("status edits must not open an input, mode = %v", m.mode)
	}
	if got := fake.rows["p1"][0].Status; got != domain.StatusNotStarted {
		t.Fatalf("status = %q, want %q", got, domain.StatusNotStarted)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := fake.rows["p1"][0].Status; got != domain.StatusInProgress {
		t.Fatalf("status = %q, want %q", got, domain.StatusInProgress)
	}
}

func TestModelDateConfirmFlow(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	row := fixtureRow("a1", "p1", 0, "Interconnection Study")
	row.DurationDays = 10
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{row})
	m := loadReadyModel(t, newTestModel(t, fake))

	m.colIdx = columnIndexOf(t, m, domain.FieldStartDate)
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = typeText(t, m, "2024-01-01")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeDateConfirm {
		t.Fatalf("expected date confirm mode, got %v", m.mode)
	}
	if m.pendingPlan.Candidate.String() != "2024-01-11" {
		t.Fatalf("candidate = %q, want 2024-01-11", m.pendingPlan.Candidate.String())
	}
	if m.pendingPlan.Counterpart != domain.FieldEndDate {
		t.Fatalf("counterpart = %q", m.pendingPlan.Counterpart)
	}

	m = applyMsg(t, m, keyRune('y'))
	if m.mode != modeNone {
		t.Fatalf("expected normal mode after confirm, got %v", m.mode)
	}
	saved := fake.rows["p1"][0]
	if saved.StartDate == nil || saved.StartDate.String() != "2024-01-01" {
		t.Fatalf("start = %v", saved.StartDate)
	}
	if saved.EndDate == nil || saved.EndDate.String() != "2024-01-11" {
		t.Fatalf("end = %v", saved.EndDate)
	}
	if saved.DurationDays != 10 {
		t.Fatalf("duration = %d, want 10", saved.DurationDays)
	}
	if m.status != "both dates saved" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestModelDateConfirmDeclineKeepsEditedDateOnly(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	row := fixtureRow("a1", "p1", 0, "Interconnection Study")
	row.DurationDays = 10
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{row})
	m := loadReadyModel(t, newTestModel(t, fake))

	m.colIdx = columnIndexOf(t, m, domain.FieldEndDate)
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = typeText(t, m, "2024-01-11")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeDateConfirm {
		t.Fatalf("expected date confirm mode, got %v", m.mode)
	}

	m = applyMsg(t, m, keyRune('n'))
	saved := fake.rows["p1"][0]
	if saved.StartDate != nil {
		t.Fatalf("declined edit must not write the inferred start, got %v", saved.StartDate)
	}
	if saved.EndDate == nil || saved.EndDate.String() != "2024-01-11" {
		t.Fatalf("end = %v", saved.EndDate)
	}
	if m.status != "date saved" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestModelSearchFilterSortAndClear(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	early := fixtureRow("a1", "p1", 0, "Zoning Review")
	early.Phase = domain.PhaseEarly
	early.DevType = "Permitting"
	late := fixtureRow("a2", "p1", 1, "Commissioning")
	late.Phase = domain.PhaseLate
	late.DevType = "Interconnection"
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{early, late})
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, keyRune('/'))
	if m.mode != modeSearch {
		t.Fatalf("expected search mode, got %v", m.mode)
	}
	m = typeText(t, m, "zon")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if len(m.rows) != 1 || m.rows[0].ID != "a1" {
		t.Fatalf("search result rows = %#v", m.rows)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.session.View() != (app.ViewState{}) {
		t.Fatalf("esc must clear the view, got %#v", m.session.View())
	}
	if len(m.rows) != 2 {
		t.Fatalf("expected all rows back, got %d", len(m.rows))
	}

	m = applyMsg(t, m, keyRune('f'))
	if got := m.session.View().DevType; got != "Interconnection" {
		t.Fatalf("dev type filter = %q", got)
	}
	if len(m.rows) != 1 || m.rows[0].ID != "a2" {
		t.Fatalf("filtered rows = %#v", m.rows)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})

	m.colIdx = columnIndexOf(t, m, domain.FieldName)
	m = applyMsg(t, m, keyRune('o'))
	if got := m.session.View(); got.Sort != app.SortName || got.Desc {
		t.Fatalf("sort view = %#v", got)
	}
	if m.rows[0].Name != "Commissioning" {
		t.Fatalf("rows not sorted by name: %q first", m.rows[0].Name)
	}
	m = applyMsg(t, m, keyRune('o'))
	if got := m.session.View(); !got.Desc {
		t.Fatalf("second press must flip direction, got %#v", got)
	}
}

func TestModelAddDeleteAndGuard(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	templated := fixtureRow("a1", "p1", 0, "Site Control")
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{templated})
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeAddStep {
		t.Fatalf("expected add step mode, got %v", m.mode)
	}
	m = typeText(t, m, "Fence Permit")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if len(fake.rows["p1"]) != 2 {
		t.Fatalf("expected 2 rows after add, got %d", len(fake.rows["p1"]))
	}
	added := fake.rows["p1"][1]
	if !added.Custom {
		t.Fatal("added step must be custom")
	}
	if m.cursor != 1 {
		t.Fatalf("cursor must land on the added row, got %d", m.cursor)
	}

	// Templated rows refuse deletion before any prompt opens.
	m.cursor = 0
	m = applyMsg(t, m, keyRune('D'))
	if m.mode != modeNone {
		t.Fatalf("expected no prompt for templated row, mode = %v", m.mode)
	}
	if m.status != "only custom steps can be deleted" {
		t.Fatalf("status = %q", m.status)
	}

	m.cursor = 1
	m = applyMsg(t, m, keyRune('D'))
	if m.mode != modeConfirmDelete {
		t.Fatalf("expected delete prompt, got %v", m.mode)
	}
	m = applyMsg(t, m, keyRune('y'))
	if len(fake.rows["p1"]) != 1 {
		t.Fatalf("expected 1 row after delete, got %d", len(fake.rows["p1"]))
	}
}

func TestModelReorderBlockedWhileFiltered(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{
		fixtureRow("a1", "p1", 0, "First"),
		fixtureRow("a2", "p1", 1, "Second"),
	})
	m := loadReadyModel(t, newTestModel(t, fake))

	view := m.session.View()
	view.Search = "first"
	m.session.SetView(view)
	m = applyMsg(t, m, keyRune('J'))
	if len(fake.reorders) != 0 {
		t.Fatalf("reorder must be refused while filtered: %#v", fake.reorders)
	}
	if m.status != "clear filters and sort before reordering" {
		t.Fatalf("status = %q", m.status)
	}

	m.session.SetView(app.ViewState{})
	m.rows = m.session.VisibleRows()
	m.cursor = 0
	m = applyMsg(t, m, keyRune('J'))
	if len(fake.reorders) != 1 {
		t.Fatalf("expected one reorder call, got %d", len(fake.reorders))
	}
	if got := fake.reorders[0]; got[0] != "a2" || got[1] != "a1" {
		t.Fatalf("reorder ids = %v", got)
	}
	if m.rows[0].ID != "a2" {
		t.Fatalf("visible order not updated: %q first", m.rows[0].ID)
	}
}

func TestModelResetOrderRestoresIDOrder(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{
		fixtureRow("a2", "p1", 0, "First"),
		fixtureRow("a1", "p1", 1, "Second"),
	})
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, keyRune('R'))
	if len(fake.reorders) != 1 {
		t.Fatalf("expected one reorder call, got %d", len(fake.reorders))
	}
	if got := fake.reorders[0]; got[0] != "a1" || got[1] != "a2" {
		t.Fatalf("reorder ids = %v, want ascending", got)
	}
	if m.status != "order reset" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestModelRenameDevTypeRewritesEveryRow(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	first := fixtureRow("a1", "p1", 0, "Feeder Study")
	first.DevType = "Transmission Study"
	second := fixtureRow("a2", "p1", 1, "Substation Review")
	second.DevType = "Transmission Study"
	third := fixtureRow("a3", "p1", 2, "Zoning Review")
	third.DevType = "Permitting"
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{first, second, third})
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, keyRune('t'))
	if m.mode != modeRenameDevType {
		t.Fatalf("expected rename mode, got %v", m.mode)
	}
	if m.editInput.Value() != "Transmission Study" {
		t.Fatalf("rename input seeded with %q", m.editInput.Value())
	}
	m.editInput.SetValue("Grid Study")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.status != "dev type renamed" {
		t.Fatalf("status = %q", m.status)
	}
	for _, row := range fake.rows["p1"][:2] {
		if row.DevType != "Grid Study" {
			t.Fatalf("row %s dev type = %q, want Grid Study", row.ID, row.DevType)
		}
	}
	if got := fake.rows["p1"][2].DevType; got != "Permitting" {
		t.Fatalf("unrelated row rewritten to %q", got)
	}
}

func TestModelRenameDevTypeEmptyValueRemovesIt(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	row := fixtureRow("a1", "p1", 0, "Feeder Study")
	row.DevType = "Transmission Study"
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{row})
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, keyRune('t'))
	m.editInput.SetValue("")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.status != "custom dev type removed" {
		t.Fatalf("status = %q", m.status)
	}
	if got := fake.rows["p1"][0].DevType; got != "" {
		t.Fatalf("dev type = %q, want cleared", got)
	}
}

func TestModelRenameDevTypeGuardsBuiltins(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	row := fixtureRow("a1", "p1", 0, "Zoning Review")
	row.DevType = "Permitting"
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{row})
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, keyRune('t'))
	if m.mode != modeNone {
		t.Fatalf("builtin type must not open rename, mode %v", m.mode)
	}
	if m.status != "only custom dev types can be renamed" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestModelAbsentFocusRowIsNoOp(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{
		fixtureRow("a1", "p1", 0, "Site Control"),
		fixtureRow("a2", "p1", 1, "Zoning Review"),
	})
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, rowsMsg{rows: m.session.VisibleRows(), status: "saved", focusRowID: "a2"})
	if m.highlightRowID != "a2" {
		t.Fatalf("highlight = %q, want a2", m.highlightRowID)
	}
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}

	m.highlightRowID = ""
	m = applyMsg(t, m, rowsMsg{rows: m.session.VisibleRows(), status: "saved", focusRowID: "ghost"})
	if m.highlightRowID != "" {
		t.Fatalf("absent target must not highlight, got %q", m.highlightRowID)
	}
}

func TestModelBootstrapSeedsTemplate(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	fake := newFakeClient([]domain.Project{project}, nil)
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, keyRune('b'))
	want := len(domain.BootstrapSteps(domain.ProjectBTMGround))
	if len(fake.rows["p1"]) != want {
		t.Fatalf("expected %d seeded rows, got %d", want, len(fake.rows["p1"]))
	}
	if len(m.rows) != want {
		t.Fatalf("expected %d visible rows, got %d", want, len(m.rows))
	}
}

func TestModelProjectPickerSwitchesProject(t *testing.T) {
	p1 := fixtureProject("p1", "Maple Ridge")
	p2 := fixtureProject("p2", "Cedar Flats")
	fake := newFakeClient([]domain.Project{p1, p2}, []domain.Activity{
		fixtureRow("a1", "p1", 0, "Maple Step"),
		fixtureRow("b1", "p2", 0, "Cedar Step"),
	})
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, keyRune('p'))
	if m.mode != modeProjectPicker {
		t.Fatalf("expected picker mode, got %v", m.mode)
	}
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.selectedProject != 1 {
		t.Fatalf("selectedProject = %d, want 1", m.selectedProject)
	}
	if len(m.rows) != 1 || m.rows[0].Name != "Cedar Step" {
		t.Fatalf("rows after switch = %#v", m.rows)
	}
	if m.session.ProjectID() != "p2" {
		t.Fatalf("session project = %q", m.session.ProjectID())
	}
}

func TestModelNoProjectsPromptsForFirst(t *testing.T) {
	fake := newFakeClient(nil, nil)
	m := loadReadyModel(t, newTestModel(t, fake))

	if m.mode != modeAddProject {
		t.Fatalf("expected first-project prompt, got %v", m.mode)
	}
	m = typeText(t, m, "Maple Ridge")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if len(fake.projects) != 1 {
		t.Fatalf("expected 1 project created, got %d", len(fake.projects))
	}
	created := fake.projects[0]
	if created.Name != "Maple Ridge" {
		t.Fatalf("project name = %q", created.Name)
	}
	if created.Type != domain.ProjectTypeOptions()[1] {
		t.Fatalf("tab must advance the project type, got %q", created.Type)
	}
	if m.selectedProject != 0 || m.mode != modeNone {
		t.Fatalf("model not settled after create: selected=%d mode=%v", m.selectedProject, m.mode)
	}
}

func TestModelContactsOverlay(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{
		fixtureRow("a1", "p1", 0, "Site Control"),
	})
	fake.contacts["p1"] = []domain.Contact{
		{ID: "c1", ProjectID: "p1", Organization: "County Planning", Name: "Dana Ortiz"},
	}
	m := loadReadyModel(t, newTestModel(t, fake))

	m = applyMsg(t, m, keyRune('c'))
	if m.mode != modeContacts {
		t.Fatalf("expected contacts mode, got %v", m.mode)
	}
	if len(m.contacts) != 1 || m.contacts[0].Organization != "County Planning" {
		t.Fatalf("contacts = %#v", m.contacts)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeNone {
		t.Fatalf("esc must close contacts, got %v", m.mode)
	}
}

func TestModelClearCellRules(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	row := fixtureRow("a1", "p1", 0, "Site Control")
	start := domain.MustParseDate("2024-01-01")
	end := domain.MustParseDate("2024-01-11")
	row.StartDate = &start
	row.EndDate = &end
	row.DurationDays = 10
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{row})
	m := loadReadyModel(t, newTestModel(t, fake))

	m.colIdx = columnIndexOf(t, m, domain.FieldName)
	m = applyMsg(t, m, keyRune('x'))
	if m.status != "column cannot be cleared" {
		t.Fatalf("status = %q", m.status)
	}

	m.colIdx = columnIndexOf(t, m, domain.FieldEndDate)
	m = applyMsg(t, m, keyRune('x'))
	saved := fake.rows["p1"][0]
	if saved.EndDate != nil {
		t.Fatalf("end date not cleared: %v", saved.EndDate)
	}
	if saved.StartDate == nil {
		t.Fatal("start date must survive an end date clear")
	}
}

func TestModelErrorSurfacesInStatus(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{
		fixtureRow("a1", "p1", 0, "Site Control"),
	})
	m := loadReadyModel(t, newTestModel(t, fake))

	m.colIdx = columnIndexOf(t, m, domain.FieldStartDate)
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = typeText(t, m, "not a date")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(m.status, "start_date") {
		t.Fatalf("status = %q, want field name in it", m.status)
	}
	if len(m.rows) != 1 {
		t.Fatal("rows must survive a failed edit")
	}
}

func TestModelQuitKey(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	fake := newFakeClient([]domain.Project{project}, nil)
	m := loadReadyModel(t, newTestModel(t, fake))

	updated, cmd := m.Update(keyRune('q'))
	if _, ok := updated.(Model); !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestModelSpendColumnsHidden(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	fake := newFakeClient([]domain.Project{project}, nil)
	session := app.NewSession(fake, app.SessionConfig{})
	m := NewModel(fake, session, WithSpendColumns(false), WithHighlightDuration(0))

	for _, col := range m.columns() {
		if col.field == domain.FieldPlannedSpend || col.field == domain.FieldActualSpend {
			t.Fatalf("spend column %q must be hidden", col.field)
		}
	}
}

func TestModelViewRenders(t *testing.T) {
	project := fixtureProject("p1", "Maple Ridge")
	row := fixtureRow("a1", "p1", 0, "Site Control")
	row.DevType = "Permitting"
	fake := newFakeClient([]domain.Project{project}, []domain.Activity{row})
	m := loadReadyModel(t, newTestModel(t, fake))

	v := m.View()
	if v.Content == nil || !v.AltScreen {
		t.Fatal("expected alt screen view with content")
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	title := m.renderTitle(accent, muted)
	if !strings.Contains(title, "Maple Ridge") {
		t.Fatalf("title = %q, want project name in it", title)
	}
	table := m.renderTable(accent, muted, dim)
	if !strings.Contains(table, "Site Control") {
		t.Fatalf("table must show the step name:\n%s", table)
	}

	m = applyMsg(t, m, keyRune('?'))
	if m.mode != modeHelp {
		t.Fatalf("expected help mode, got %v", m.mode)
	}
	if overlay := m.renderOverlay(accent, muted, dim); overlay == "" {
		t.Fatal("help overlay must render")
	}
}
