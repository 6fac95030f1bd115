// Package tui implements the spreadsheet-style terminal editor over a
// project session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/landcharge/devtrack/internal/app"
	"github.com/landcharge/devtrack/internal/domain"
)

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeEditCell
	modeRenameDevType
	modeDateConfirm
	modeSearch
	modeAddStep
	modeAddProject
	modeProjectPicker
	modeContacts
	modeConfirmDelete
	modeHelp
)

// defaultHighlightDuration keeps a jumped-to row marked long enough to spot.
const defaultHighlightDuration = 2200 * time.Millisecond

// column describes one renderable table column.
type column struct {
	field domain.Field
	title string
	width int
}

// tableColumns lists every column in display order; spend columns are
// filtered out when disabled.
var tableColumns = []column{
	{domain.FieldName, "Step", 30},
	{domain.FieldDevType, "Dev Type", 15},
	{domain.FieldPhase, "Phase", 12},
	{domain.FieldStatus, "Status", 12},
	{domain.FieldStartDate, "Start", 10},
	{domain.FieldEndDate, "End", 10},
	{domain.FieldDuration, "Days", 5},
	{domain.FieldPlannedSpend, "Planned $", 11},
	{domain.FieldActualSpend, "Actual $", 11},
	{domain.FieldAgency, "Agency", 16},
	{domain.FieldOwner, "Owner", 10},
	{domain.FieldResponsibleParty, "Resp. Party", 16},
	{domain.FieldResponsibleIndividual, "Resp. Individual", 16},
	{domain.FieldProcess, "Process", 14},
	{domain.FieldLink, "Link", 18},
	{domain.FieldRequirements, "Requirements", 24},
	{domain.FieldStorageHybridImpact, "Storage Impact", 14},
	{domain.FieldMilestoneGates, "NTP Gates", 14},
	{domain.FieldRiskLevel, "Risk", 8},
}

// loadedMsg carries a full project reload.
type loadedMsg struct {
	projects        []domain.Project
	selectedProject int
	rows            []domain.Activity
	err             error
}

// rowsMsg carries a refreshed visible-row snapshot after one action.
type rowsMsg struct {
	rows       []domain.Activity
	status     string
	focusRowID string
	err        error
}

// planMsg carries a date plan awaiting user confirmation.
type planMsg struct {
	rowID string
	plan  app.DatePlan
}

// contactsMsg carries the project contact directory.
type contactsMsg struct {
	contacts []domain.Contact
	err      error
}

// clearHighlightMsg expires one row highlight.
type clearHighlightMsg struct {
	rowID string
}

// Model represents model data used by this package.
type Model struct {
	client  app.Client
	session *app.Session

	keys   keyMap
	help   help.Model
	helpMD helpRenderer

	width  int
	height int
	ready  bool

	projects         []domain.Project
	selectedProject  int
	pendingProjectID string

	rows   []domain.Activity
	cursor int
	colIdx int

	mode        inputMode
	editInput   textinput.Model
	searchInput textinput.Model
	addInput    textinput.Model
	editRowID   string
	editField   domain.Field
	renameFrom  string

	pendingPlan      app.DatePlan
	pendingPlanRowID string

	contacts    []domain.Contact
	pickerIndex int

	projectTypeIdx int

	devTypes       []string
	showSpend      bool
	highlightFor   time.Duration
	linkBase       string
	highlightRowID string

	status string
	err    error
}

// NewModel constructs a new value for this package.
func NewModel(client app.Client, session *app.Session, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	editInput := textinput.New()
	editInput.Prompt = "> "
	editInput.CharLimit = 240
	searchInput := textinput.New()
	searchInput.Prompt = "/ "
	searchInput.Placeholder = "step name contains"
	searchInput.CharLimit = 120
	addInput := textinput.New()
	addInput.Prompt = "> "
	addInput.CharLimit = 120

	m := Model{
		client:       client,
		session:      session,
		keys:         newKeyMap(),
		help:         h,
		status:       "loading...",
		editInput:    editInput,
		searchInput:  searchInput,
		addInput:     addInput,
		devTypes:     domain.DefaultDevTypes(),
		showSpend:    true,
		highlightFor: defaultHighlightDuration,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// loadData opens the selected project and snapshots its visible rows.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	projects, err := m.client.ListProjects(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	if len(projects) == 0 {
		return loadedMsg{projects: projects}
	}

	idx := clamp(m.selectedProject, 0, len(projects)-1)
	if pending := strings.TrimSpace(m.pendingProjectID); pending != "" {
		for i, project := range projects {
			if project.ID == pending {
				idx = i
				break
			}
		}
	}
	projectID := projects[idx].ID
	if m.session.ProjectID() != projectID {
		if err := m.session.Open(ctx, projectID); err != nil {
			return loadedMsg{err: err}
		}
		// Backfill template requirements on rows that never had any.
		_ = m.session.SeedRequirements(ctx, projects[idx].Type)
	}
	return loadedMsg{
		projects:        projects,
		selectedProject: idx,
		rows:            m.session.VisibleRows(),
	}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.projects = msg.projects
		m.selectedProject = msg.selectedProject
		m.pendingProjectID = ""
		m.rows = msg.rows
		m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
		m.colIdx = clamp(m.colIdx, 0, len(m.columns())-1)
		if len(m.projects) == 0 {
			if m.mode == modeNone {
				m.status = "create your first project"
				cmd := m.startAddProject()
				return m, cmd
			}
			return m, nil
		}
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case rowsMsg:
		if msg.err != nil {
			m.status = errorStatus(msg.err)
		} else if msg.status != "" {
			m.status = msg.status
		}
		if msg.rows != nil {
			m.rows = msg.rows
		}
		m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
		var cmd tea.Cmd
		if msg.focusRowID != "" && msg.err == nil {
			if idx := app.LocateRow(m.rows, msg.focusRowID); idx >= 0 {
				m.cursor = idx
				m.highlightRowID = msg.focusRowID
				if m.highlightFor > 0 {
					rowID := msg.focusRowID
					cmd = tea.Tick(m.highlightFor, func(time.Time) tea.Msg {
						return clearHighlightMsg{rowID: rowID}
					})
				}
			}
		}
		return m, cmd

	case planMsg:
		m.pendingPlan = msg.plan
		m.pendingPlanRowID = msg.rowID
		m.mode = modeDateConfirm
		m.status = "confirm inferred date"
		return m, nil

	case contactsMsg:
		if msg.err != nil {
			m.status = errorStatus(msg.err)
			return m, nil
		}
		m.contacts = msg.contacts
		m.mode = modeContacts
		m.status = fmt.Sprintf("%d contacts", len(msg.contacts))
		return m, nil

	case clearHighlightMsg:
		if m.highlightRowID == msg.rowID {
			m.highlightRowID = ""
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// columns returns the active column layout.
func (m Model) columns() []column {
	if m.showSpend {
		return tableColumns
	}
	out := make([]column, 0, len(tableColumns))
	for _, col := range tableColumns {
		if col.field == domain.FieldPlannedSpend || col.field == domain.FieldActualSpend {
			continue
		}
		out = append(out, col)
	}
	return out
}

// currentRow returns the row under the cursor.
func (m Model) currentRow() (domain.Activity, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return domain.Activity{}, false
	}
	return m.rows[m.cursor], true
}

// handleNormalModeKey dispatches table navigation and actions.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit

	case key.Matches(msg, keys.reload):
		m.status = "reloading..."
		return m, m.reloadCmd()

	case key.Matches(msg, keys.toggleHelp):
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, keys.moveLeft):
		m.colIdx = clamp(m.colIdx-1, 0, len(m.columns())-1)
		return m, nil

	case key.Matches(msg, keys.moveRight):
		m.colIdx = clamp(m.colIdx+1, 0, len(m.columns())-1)
		return m, nil

	case key.Matches(msg, keys.moveUp):
		m.cursor = clamp(m.cursor-1, 0, len(m.rows)-1)
		return m, nil

	case key.Matches(msg, keys.moveDown):
		m.cursor = clamp(m.cursor+1, 0, len(m.rows)-1)
		return m, nil

	case key.Matches(msg, keys.editCell):
		return m.startCellEdit()

	case key.Matches(msg, keys.clearCell):
		return m.clearCurrentCell()

	case key.Matches(msg, keys.addStep):
		m.mode = modeAddStep
		m.addInput.Placeholder = "new step name"
		m.addInput.SetValue("")
		cmd := m.addInput.Focus()
		return m, cmd

	case key.Matches(msg, keys.deleteStep):
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		if !row.Custom {
			m.status = "only custom steps can be deleted"
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("delete %q? y/n", row.Name)
		return m, nil

	case key.Matches(msg, keys.bootstrap):
		m.status = "seeding template steps..."
		return m, m.bootstrapCmd()

	case key.Matches(msg, keys.moveStepUp):
		return m.moveStep(-1)

	case key.Matches(msg, keys.moveStepDown):
		return m.moveStep(1)

	case key.Matches(msg, keys.resetOrder):
		return m.resetOrder()

	case key.Matches(msg, keys.search):
		m.mode = modeSearch
		m.searchInput.SetValue(m.session.View().Search)
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, keys.filterDevType):
		return m.cycleDevTypeFilter()

	case key.Matches(msg, keys.renameDevType):
		return m.startDevTypeRename()

	case key.Matches(msg, keys.filterPhase):
		return m.cyclePhaseFilter()

	case key.Matches(msg, keys.sortColumn):
		return m.sortByCurrentColumn()

	case key.Matches(msg, keys.clearView):
		if m.session.View() != (app.ViewState{}) {
			m.session.SetView(app.ViewState{})
			m.rows = m.session.VisibleRows()
			m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
			m.status = "filters cleared"
		}
		return m, nil

	case key.Matches(msg, keys.projects):
		if len(m.projects) == 0 {
			return m, nil
		}
		m.mode = modeProjectPicker
		m.pickerIndex = m.selectedProject
		return m, nil

	case key.Matches(msg, keys.newProject):
		cmd := m.startAddProject()
		return m, cmd

	case key.Matches(msg, keys.contacts):
		return m, m.contactsCmd()

	case key.Matches(msg, keys.copyLink):
		return m.copyRowLink()
	}
	return m, nil
}

// handleInputModeKey dispatches keys while a modal or input is active.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeEditCell:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.editInput.Blur()
			m.status = "edit cancelled"
			return m, nil
		case "enter":
			value := m.editInput.Value()
			m.mode = modeNone
			m.editInput.Blur()
			return m, m.submitCellEdit(m.editRowID, m.editField, value)
		}
		var cmd tea.Cmd
		m.editInput, cmd = m.editInput.Update(msg)
		return m, cmd

	case modeRenameDevType:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.editInput.Blur()
			m.status = "rename cancelled"
			return m, nil
		case "enter":
			value := strings.TrimSpace(m.editInput.Value())
			m.mode = modeNone
			m.editInput.Blur()
			return m, m.renameDevTypeCmd(m.renameFrom, value)
		}
		var cmd tea.Cmd
		m.editInput, cmd = m.editInput.Update(msg)
		return m, cmd

	case modeDateConfirm:
		switch msg.String() {
		case "y", "Y", "enter":
			m.mode = modeNone
			return m, m.confirmPlanCmd()
		case "n", "N", "esc":
			m.mode = modeNone
			return m, m.declinePlanCmd()
		}
		return m, nil

	case modeSearch:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.searchInput.Blur()
			return m, nil
		case "enter":
			m.mode = modeNone
			m.searchInput.Blur()
			view := m.session.View()
			view.Search = strings.TrimSpace(m.searchInput.Value())
			m.session.SetView(view)
			m.rows = m.session.VisibleRows()
			m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
			if view.Search == "" {
				m.status = "search cleared"
			} else {
				m.status = fmt.Sprintf("%d rows match %q", len(m.rows), view.Search)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd

	case modeAddStep:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.addInput.Blur()
			return m, nil
		case "enter":
			name := strings.TrimSpace(m.addInput.Value())
			m.mode = modeNone
			m.addInput.Blur()
			if name == "" {
				m.status = "step name is required"
				return m, nil
			}
			return m, m.addStepCmd(name)
		}
		var cmd tea.Cmd
		m.addInput, cmd = m.addInput.Update(msg)
		return m, cmd

	case modeAddProject:
		switch msg.String() {
		case "esc":
			if len(m.projects) == 0 {
				return m, tea.Quit
			}
			m.mode = modeNone
			m.addInput.Blur()
			return m, nil
		case "tab":
			m.projectTypeIdx = (m.projectTypeIdx + 1) % len(domain.ProjectTypeOptions())
			return m, nil
		case "enter":
			name := strings.TrimSpace(m.addInput.Value())
			if name == "" {
				m.status = "project name is required"
				return m, nil
			}
			m.mode = modeNone
			m.addInput.Blur()
			return m, m.addProjectCmd(name, domain.ProjectTypeOptions()[m.projectTypeIdx])
		}
		var cmd tea.Cmd
		m.addInput, cmd = m.addInput.Update(msg)
		return m, cmd

	case modeProjectPicker:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			return m, nil
		case "j", "down":
			m.pickerIndex = clamp(m.pickerIndex+1, 0, len(m.projects)-1)
			return m, nil
		case "k", "up":
			m.pickerIndex = clamp(m.pickerIndex-1, 0, len(m.projects)-1)
			return m, nil
		case "enter":
			m.mode = modeNone
			m.selectedProject = m.pickerIndex
			m.cursor = 0
			m.status = "loading..."
			return m, m.loadData
		}
		return m, nil

	case modeContacts:
		if msg.String() == "esc" || msg.String() == "c" || msg.String() == "q" {
			m.mode = modeNone
			m.status = "ready"
		}
		return m, nil

	case modeConfirmDelete:
		switch msg.String() {
		case "y", "Y":
			m.mode = modeNone
			row, ok := m.currentRow()
			if !ok {
				return m, nil
			}
			return m, m.deleteStepCmd(row.ID)
		case "n", "N", "esc":
			m.mode = modeNone
			m.status = "delete cancelled"
		}
		return m, nil

	case modeHelp:
		m.mode = modeNone
		return m, nil
	}
	return m, nil
}

// startCellEdit begins an edit for the cell under the cursor. Enumerated
// columns cycle in place instead of opening an input.
func (m Model) startCellEdit() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	col := m.columns()[m.colIdx]

	switch col.field {
	case domain.FieldStatus:
		next := cycleOption(domain.StatusOptions(), row.Status)
		return m, m.actionCmd(row.ID, "status saved", func(ctx context.Context) error {
			return m.session.SetStatus(ctx, row.ID, next)
		})
	case domain.FieldOwner:
		next := cycleOption(domain.OwnerOptions(), row.Owner)
		return m, m.actionCmd(row.ID, "owner saved", func(ctx context.Context) error {
			return m.session.SetOwner(ctx, row.ID, next)
		})
	case domain.FieldRiskLevel:
		next := cycleOption(domain.RiskOptions(), row.RiskLevel)
		return m, m.actionCmd(row.ID, "risk saved", func(ctx context.Context) error {
			return m.session.SetRiskLevel(ctx, row.ID, next)
		})
	case domain.FieldPhase:
		next := (row.Phase + 1) % (domain.PhaseLate + 1)
		return m, m.actionCmd(row.ID, "phase saved", func(ctx context.Context) error {
			return m.session.SetPhase(ctx, row.ID, next)
		})
	case domain.FieldDevType:
		next := cycleOption(m.devTypeOptions(), row.DevType)
		return m, m.actionCmd(row.ID, "dev type saved", func(ctx context.Context) error {
			return m.session.SetDevType(ctx, row.ID, next)
		})
	}

	m.mode = modeEditCell
	m.editRowID = row.ID
	m.editField = col.field
	m.editInput.Placeholder = editPlaceholder(col.field)
	m.editInput.SetValue(editSeed(row, col.field))
	m.editInput.CursorEnd()
	cmd := m.editInput.Focus()
	return m, cmd
}

// startDevTypeRename opens the rename input for the cursor row's custom dev
// type. Built-in types stay fixed.
func (m Model) startDevTypeRename() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	devType := strings.TrimSpace(row.DevType)
	if devType == "" {
		m.status = "row has no dev type"
		return m, nil
	}
	for _, builtin := range domain.DefaultDevTypes() {
		if strings.EqualFold(builtin, devType) {
			m.status = "only custom dev types can be renamed"
			return m, nil
		}
	}
	m.mode = modeRenameDevType
	m.renameFrom = devType
	m.editInput.Placeholder = "new dev type (empty removes)"
	m.editInput.SetValue(devType)
	m.editInput.CursorEnd()
	cmd := m.editInput.Focus()
	return m, cmd
}

// renameDevTypeCmd rewrites every row carrying the old custom type.
func (m Model) renameDevTypeCmd(oldType, newType string) tea.Cmd {
	status := "dev type renamed"
	if newType == "" {
		status = "custom dev type removed"
	}
	return m.actionCmd("", status, func(ctx context.Context) error {
		return m.session.RenameDevType(ctx, oldType, newType)
	})
}

// submitCellEdit routes an entered value to the matching session operation.
func (m Model) submitCellEdit(rowID string, field domain.Field, value string) tea.Cmd {
	switch field {
	case domain.FieldName:
		return m.actionCmd(rowID, "name saved", func(ctx context.Context) error {
			return m.session.SetName(ctx, rowID, value)
		})
	case domain.FieldStartDate, domain.FieldEndDate, domain.FieldDuration:
		return m.submitDateCmd(rowID, field, value)
	case domain.FieldPlannedSpend, domain.FieldActualSpend:
		return m.actionCmd(rowID, "spend saved", func(ctx context.Context) error {
			return m.session.SetSpend(ctx, rowID, field, value)
		})
	case domain.FieldRequirements:
		return m.actionCmd(rowID, "requirements saved", func(ctx context.Context) error {
			reqs, err := domain.ParseRequirementSet(value)
			if err != nil {
				return &app.FieldError{RowID: rowID, Field: field, Err: err}
			}
			return m.session.SetRequirements(ctx, rowID, reqs)
		})
	default:
		return m.actionCmd(rowID, "saved", func(ctx context.Context) error {
			return m.session.SetTextField(ctx, rowID, field, value)
		})
	}
}

// clearCurrentCell submits an empty value for clearable columns.
func (m Model) clearCurrentCell() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	field := m.columns()[m.colIdx].field
	switch field {
	case domain.FieldName, domain.FieldStatus, domain.FieldOwner,
		domain.FieldRiskLevel, domain.FieldPhase, domain.FieldDevType,
		domain.FieldDuration:
		m.status = "column cannot be cleared"
		return m, nil
	case domain.FieldStartDate, domain.FieldEndDate:
		return m, m.submitDateCmd(row.ID, field, "")
	case domain.FieldRequirements:
		return m, m.actionCmd(row.ID, "requirements cleared", func(ctx context.Context) error {
			return m.session.SetRequirements(ctx, row.ID, domain.RequirementSet{})
		})
	default:
		return m, m.submitCellEdit(row.ID, field, "")
	}
}

// moveStep swaps the current row with its neighbor and persists the order.
func (m Model) moveStep(delta int) (tea.Model, tea.Cmd) {
	if m.session.View() != (app.ViewState{}) {
		m.status = "clear filters and sort before reordering"
		return m, nil
	}
	target := m.cursor + delta
	if m.cursor < 0 || m.cursor >= len(m.rows) || target < 0 || target >= len(m.rows) {
		return m, nil
	}
	ids := make([]string, len(m.rows))
	for i, row := range m.rows {
		ids[i] = row.ID
	}
	ids[m.cursor], ids[target] = ids[target], ids[m.cursor]
	movedID := m.rows[m.cursor].ID
	return m, m.actionCmd(movedID, "order saved", func(ctx context.Context) error {
		return m.session.Reorder(ctx, ids)
	})
}

// resetOrder restores ID order for the whole project.
func (m Model) resetOrder() (tea.Model, tea.Cmd) {
	if m.session.View() != (app.ViewState{}) {
		m.status = "clear filters and sort before reordering"
		return m, nil
	}
	if len(m.rows) == 0 {
		return m, nil
	}
	return m, m.actionCmd("", "order reset", func(ctx context.Context) error {
		return m.session.ResetOrder(ctx)
	})
}

// cycleDevTypeFilter advances the dev-type filter through the configured
// values plus any custom types present on the loaded rows.
func (m Model) cycleDevTypeFilter() (tea.Model, tea.Cmd) {
	options := m.devTypeOptions()
	view := m.session.View()
	idx := -1
	for i, devType := range options {
		if strings.EqualFold(devType, view.DevType) {
			idx = i
			break
		}
	}
	if idx+1 < len(options) {
		view.DevType = options[idx+1]
	} else {
		view.DevType = ""
	}
	m.session.SetView(view)
	m.rows = m.session.VisibleRows()
	m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
	if view.DevType == "" {
		m.status = "dev type filter off"
	} else {
		m.status = "dev type: " + view.DevType
	}
	return m, nil
}

// devTypeOptions merges the configured dev types with custom values found on
// the active project's rows.
func (m Model) devTypeOptions() []string {
	options := append([]string(nil), m.devTypes...)
	for _, devType := range m.session.DevTypes() {
		known := false
		for _, existing := range options {
			if strings.EqualFold(existing, devType) {
				known = true
				break
			}
		}
		if !known {
			options = append(options, devType)
		}
	}
	return options
}

// cyclePhaseFilter advances the phase filter through unset and each phase.
func (m Model) cyclePhaseFilter() (tea.Model, tea.Cmd) {
	view := m.session.View()
	view.Phase = (view.Phase + 1) % (domain.PhaseLate + 1)
	m.session.SetView(view)
	m.rows = m.session.VisibleRows()
	m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
	if view.Phase == domain.PhaseUnset {
		m.status = "phase filter off"
	} else {
		m.status = "phase: " + domain.PhaseLabel(view.Phase)
	}
	return m, nil
}

// sortByCurrentColumn sorts by the cursor column, toggling direction on
// repeat presses.
func (m Model) sortByCurrentColumn() (tea.Model, tea.Cmd) {
	field := m.columns()[m.colIdx].field
	sortKey := sortKeyForField(field)
	if sortKey == app.SortNone {
		m.status = "column is not sortable"
		return m, nil
	}
	view := m.session.View()
	if view.Sort == sortKey {
		view.Desc = !view.Desc
	} else {
		view.Sort = sortKey
		view.Desc = false
	}
	m.session.SetView(view)
	m.rows = m.session.VisibleRows()
	m.cursor = clamp(m.cursor, 0, len(m.rows)-1)
	direction := "asc"
	if view.Desc {
		direction = "desc"
	}
	m.status = fmt.Sprintf("sorted by %s %s", field, direction)
	return m, nil
}

// copyRowLink puts the row's link, or a derived one, on the clipboard.
func (m Model) copyRowLink() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	link := strings.TrimSpace(row.Link)
	if link == "" && m.linkBase != "" {
		link = m.linkBase + "/steps/" + row.ID
	}
	if link == "" {
		m.status = "row has no link"
		return m, nil
	}
	if err := clipboard.WriteAll(link); err != nil {
		m.status = "copy failed: " + err.Error()
		return m, nil
	}
	m.status = "link copied"
	return m, nil
}

// startAddProject opens the new-project form.
func (m *Model) startAddProject() tea.Cmd {
	m.mode = modeAddProject
	m.projectTypeIdx = 0
	m.addInput.Placeholder = "new project name"
	m.addInput.SetValue("")
	return m.addInput.Focus()
}

// actionCmd runs one session operation and snapshots the visible rows.
func (m Model) actionCmd(focusRowID, status string, fn func(context.Context) error) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return rowsMsg{rows: session.VisibleRows(), err: err}
		}
		return rowsMsg{rows: session.VisibleRows(), status: status, focusRowID: focusRowID}
	}
}

// submitDateCmd plans a schedule edit; inferred counterparts come back for
// confirmation instead of being committed.
func (m Model) submitDateCmd(rowID string, field domain.Field, raw string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		plan, err := session.SetDateField(context.Background(), rowID, field, raw)
		if err != nil {
			return rowsMsg{rows: session.VisibleRows(), err: err}
		}
		if plan.NeedsConfirm {
			return planMsg{rowID: rowID, plan: plan}
		}
		return rowsMsg{rows: session.VisibleRows(), status: "schedule saved", focusRowID: rowID}
	}
}

// confirmPlanCmd accepts the inferred counterpart date.
func (m Model) confirmPlanCmd() tea.Cmd {
	session := m.session
	rowID := m.pendingPlanRowID
	plan := m.pendingPlan
	return func() tea.Msg {
		if err := session.ConfirmDatePlan(context.Background(), rowID, plan); err != nil {
			return rowsMsg{rows: session.VisibleRows(), err: err}
		}
		return rowsMsg{rows: session.VisibleRows(), status: "both dates saved", focusRowID: rowID}
	}
}

// declinePlanCmd submits only the edited date.
func (m Model) declinePlanCmd() tea.Cmd {
	session := m.session
	rowID := m.pendingPlanRowID
	plan := m.pendingPlan
	return func() tea.Msg {
		if err := session.CommitDatePlan(context.Background(), rowID, plan); err != nil {
			return rowsMsg{rows: session.VisibleRows(), err: err}
		}
		return rowsMsg{rows: session.VisibleRows(), status: "date saved", focusRowID: rowID}
	}
}

// addStepCmd appends one custom step.
func (m Model) addStepCmd(name string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		row, err := session.CreateActivity(context.Background(), name, domain.PhaseUnset)
		if err != nil {
			return rowsMsg{rows: session.VisibleRows(), err: err}
		}
		return rowsMsg{rows: session.VisibleRows(), status: "step added", focusRowID: row.ID}
	}
}

// deleteStepCmd removes one custom step.
func (m Model) deleteStepCmd(id string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if err := session.DeleteActivity(context.Background(), id); err != nil {
			return rowsMsg{rows: session.VisibleRows(), err: err}
		}
		return rowsMsg{rows: session.VisibleRows(), status: "step deleted"}
	}
}

// bootstrapCmd seeds the project from its template.
func (m Model) bootstrapCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		rows, err := session.Bootstrap(context.Background())
		if err != nil {
			return rowsMsg{rows: session.VisibleRows(), err: err}
		}
		return rowsMsg{rows: session.VisibleRows(), status: fmt.Sprintf("%d steps ready", len(rows))}
	}
}

// addProjectCmd creates a project and reloads with it selected.
func (m Model) addProjectCmd(name string, projectType domain.ProjectType) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		project, err := client.CreateProject(context.Background(), domain.Project{Name: name, Type: projectType})
		if err != nil {
			return rowsMsg{err: err}
		}
		next := m
		next.pendingProjectID = project.ID
		return next.loadData()
	}
}

// reloadCmd refreshes rows and contacts from the server.
func (m Model) reloadCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		if err := session.Reload(context.Background()); err != nil {
			return rowsMsg{rows: session.VisibleRows(), err: err}
		}
		return rowsMsg{rows: session.VisibleRows(), status: "reloaded"}
	}
}

// contactsCmd fetches the project contact directory.
func (m Model) contactsCmd() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		contacts, err := session.Contacts(context.Background())
		if err != nil {
			return contactsMsg{err: err}
		}
		return contactsMsg{contacts: contacts}
	}
}

// errorStatus renders one action error for the status line.
func errorStatus(err error) string {
	var fieldErr *app.FieldError
	if errors.As(err, &fieldErr) {
		return fmt.Sprintf("%s: %v", fieldErr.Field, fieldErr.Err)
	}
	return err.Error()
}

// cycleOption returns the option after current, wrapping around.
func cycleOption[T comparable](options []T, current T) T {
	if len(options) == 0 {
		return current
	}
	for i, opt := range options {
		if opt == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// sortKeyForField maps a column to its view sort key.
func sortKeyForField(field domain.Field) app.SortKey {
	switch field {
	case domain.FieldName:
		return app.SortName
	case domain.FieldDevType:
		return app.SortDevType
	case domain.FieldPhase:
		return app.SortPhase
	case domain.FieldStatus:
		return app.SortStatus
	case domain.FieldStartDate:
		return app.SortStartDate
	case domain.FieldEndDate:
		return app.SortEndDate
	case domain.FieldDuration:
		return app.SortDuration
	case domain.FieldPlannedSpend:
		return app.SortPlannedSpend
	case domain.FieldActualSpend:
		return app.SortActualSpend
	default:
		return app.SortNone
	}
}

// cellValue renders one cell for display.
func cellValue(row domain.Activity, field domain.Field) string {
	switch field {
	case domain.FieldName:
		return row.Name
	case domain.FieldDevType:
		return row.DevType
	case domain.FieldPhase:
		if row.Phase == domain.PhaseUnset {
			return ""
		}
		return domain.PhaseLabel(row.Phase)
	case domain.FieldStatus:
		return string(row.Status)
	case domain.FieldStartDate:
		return dateString(row.StartDate)
	case domain.FieldEndDate:
		return dateString(row.EndDate)
	case domain.FieldDuration:
		if row.StartDate == nil || row.EndDate == nil {
			return ""
		}
		return strconv.Itoa(row.DurationDays)
	case domain.FieldPlannedSpend:
		return moneyString(row.PlannedSpend)
	case domain.FieldActualSpend:
		return moneyString(row.ActualSpend)
	case domain.FieldAgency:
		return row.Agency
	case domain.FieldOwner:
		return string(row.Owner)
	case domain.FieldResponsibleParty:
		return row.ResponsibleParty
	case domain.FieldResponsibleIndividual:
		return row.ResponsibleIndividual
	case domain.FieldProcess:
		return row.Process
	case domain.FieldLink:
		return row.Link
	case domain.FieldRequirements:
		return row.Requirements.String()
	case domain.FieldStorageHybridImpact:
		return row.StorageHybridImpact
	case domain.FieldMilestoneGates:
		return row.MilestoneGates
	case domain.FieldRiskLevel:
		return string(row.RiskLevel)
	default:
		return ""
	}
}

// editSeed returns the raw value an input edit starts from.
func editSeed(row domain.Activity, field domain.Field) string {
	switch field {
	case domain.FieldStartDate:
		return dateString(row.StartDate)
	case domain.FieldEndDate:
		return dateString(row.EndDate)
	case domain.FieldDuration:
		if row.DurationDays == 0 {
			return ""
		}
		return strconv.Itoa(row.DurationDays)
	case domain.FieldPlannedSpend:
		return plainMoney(row.PlannedSpend)
	case domain.FieldActualSpend:
		return plainMoney(row.ActualSpend)
	default:
		return cellValue(row, field)
	}
}

// editPlaceholder hints the expected input format per column.
func editPlaceholder(field domain.Field) string {
	switch field {
	case domain.FieldStartDate, domain.FieldEndDate:
		return "YYYY-MM-DD (empty clears)"
	case domain.FieldDuration:
		return "days"
	case domain.FieldPlannedSpend, domain.FieldActualSpend:
		return "amount (empty clears)"
	case domain.FieldRequirements:
		return "comma-separated requirements"
	default:
		return ""
	}
}

func dateString(d *domain.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func moneyString(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("$%.2f", *v)
}

func plainMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
