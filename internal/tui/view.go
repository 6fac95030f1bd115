package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/landcharge/devtrack/internal/domain"
)

// helpMarkdown is the long-form help shown on "?".
const helpMarkdown = `# devtrack

A grid of development steps for one project. Move with **h/j/k/l**,
edit the selected cell with **enter**, clear it with **x**.

## Schedule edits

Entering one date on a row that has a known duration offers the
inferred counterpart date; **y** accepts it, **n** saves only the date
you typed. Entering a duration shifts the counterpart of whichever
date the row already has.

## Views

- ` + "`/`" + ` search step names
- ` + "`f`" + ` / ` + "`F`" + ` cycle dev-type and phase filters
- ` + "`o`" + ` sort by the selected column, again to flip direction
- ` + "`esc`" + ` clears filters and sort

## Rows

- ` + "`n`" + ` add a custom step, ` + "`D`" + ` delete one
- ` + "`J`" + `/` + "`K`" + ` reorder, ` + "`R`" + ` reset to ID order (with filters cleared)
- ` + "`b`" + ` seed the project template
- ` + "`t`" + ` rename the row's custom dev type on every step (empty removes it)
`

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.AltScreen = true
		return v
	}
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	var b strings.Builder
	b.WriteString(m.renderTitle(accent, muted))
	b.WriteString("\n")
	b.WriteString(m.renderTable(accent, muted, dim))
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine(muted, dim))

	content := b.String()
	if overlay := m.renderOverlay(accent, muted, dim); overlay != "" {
		content += "\n\n" + overlay
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

// renderTitle draws the project name and active view state.
func (m Model) renderTitle(accent, muted color.Color) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	badgeStyle := lipgloss.NewStyle().Foreground(accent)
	mutedStyle := lipgloss.NewStyle().Foreground(muted)

	name := "no project"
	if m.selectedProject >= 0 && m.selectedProject < len(m.projects) {
		project := m.projects[m.selectedProject]
		name = fmt.Sprintf("%s (%s)", project.Name, project.Type)
	}

	parts := []string{titleStyle.Render("devtrack"), badgeStyle.Render(name)}
	view := m.session.View()
	if view.Search != "" {
		parts = append(parts, mutedStyle.Render("search:"+view.Search))
	}
	if view.DevType != "" {
		parts = append(parts, mutedStyle.Render("dev:"+view.DevType))
	}
	if view.Phase != domain.PhaseUnset {
		parts = append(parts, mutedStyle.Render("phase:"+domain.PhaseLabel(view.Phase)))
	}
	if view.Sort != "" {
		direction := "▲"
		if view.Desc {
			direction = "▼"
		}
		parts = append(parts, mutedStyle.Render("sort:"+string(view.Sort)+direction))
	}
	return strings.Join(parts, "  ")
}

// renderTable draws the step grid with a horizontal column window around
// the selected column.
func (m Model) renderTable(accent, muted, dim color.Color) string {
	cols := m.columns()
	first, last := m.columnWindow(cols)

	headStyle := lipgloss.NewStyle().Bold(true).Foreground(muted)
	headSelStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	cellStyle := lipgloss.NewStyle()
	selStyle := lipgloss.NewStyle().Reverse(true)
	rowSelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	highlightStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)
	customStyle := lipgloss.NewStyle().Foreground(dim)

	var b strings.Builder
	for i := first; i <= last; i++ {
		style := headStyle
		if i == m.colIdx {
			style = headSelStyle
		}
		b.WriteString(style.Render(pad(cols[i].title, cols[i].width)))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(muted).Render("no steps — press b to seed the template or n for a custom step"))
		return b.String()
	}

	top, bottom := m.rowWindow()
	for r := top; r <= bottom; r++ {
		row := m.rows[r]
		for i := first; i <= last; i++ {
			value := pad(cellValue(row, cols[i].field), cols[i].width)
			style := cellStyle
			switch {
			case r == m.cursor && i == m.colIdx:
				style = selStyle
			case row.ID == m.highlightRowID:
				style = highlightStyle
			case r == m.cursor:
				style = rowSelStyle
			case row.Custom && i == first:
				style = customStyle
			}
			b.WriteString(style.Render(value))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// columnWindow picks the contiguous columns that fit the width around the
// selected one.
func (m Model) columnWindow(cols []column) (first, last int) {
	if m.width <= 0 {
		return 0, len(cols) - 1
	}
	first = m.colIdx
	last = m.colIdx
	used := cols[m.colIdx].width + 1
	for first > 0 || last < len(cols)-1 {
		grew := false
		if first > 0 && used+cols[first-1].width+1 <= m.width {
			first--
			used += cols[first].width + 1
			grew = true
		}
		if last < len(cols)-1 && used+cols[last+1].width+1 <= m.width {
			last++
			used += cols[last].width + 1
			grew = true
		}
		if !grew {
			break
		}
	}
	return first, last
}

// rowWindow picks the visible rows around the cursor.
func (m Model) rowWindow() (top, bottom int) {
	visible := m.height - 6
	if visible < 3 {
		visible = 3
	}
	if len(m.rows) <= visible {
		return 0, len(m.rows) - 1
	}
	top = m.cursor - visible/2
	top = clamp(top, 0, len(m.rows)-visible)
	return top, top + visible - 1
}

// renderStatusLine draws the status text plus help.
func (m Model) renderStatusLine(muted, dim color.Color) string {
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	line := statusStyle.Render(m.status)
	return line + "\n" + lipgloss.NewStyle().Foreground(muted).Render(helpBubble.View(m.keys))
}

// renderOverlay draws the active modal, if any.
func (m Model) renderOverlay(accent, muted, dim color.Color) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle := lipgloss.NewStyle().Foreground(muted)

	switch m.mode {
	case modeEditCell:
		label := string(m.editField)
		return boxStyle.Render(labelStyle.Render("edit "+label) + "\n" + m.editInput.View() + "\n" + mutedStyle.Render("enter save • esc cancel"))

	case modeRenameDevType:
		return boxStyle.Render(labelStyle.Render("rename dev type "+m.renameFrom) + "\n" + m.editInput.View() + "\n" + mutedStyle.Render("enter apply everywhere • empty removes • esc cancel"))

	case modeDateConfirm:
		counterpart := string(m.pendingPlan.Counterpart)
		lines := []string{
			labelStyle.Render("inferred " + counterpart),
			fmt.Sprintf("set %s to %s?", counterpart, m.pendingPlan.Candidate.String()),
			mutedStyle.Render("y accept both • n keep only the edited date"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeSearch:
		return boxStyle.Render(labelStyle.Render("search") + "\n" + m.searchInput.View() + "\n" + mutedStyle.Render("enter apply • esc cancel"))

	case modeAddStep:
		return boxStyle.Render(labelStyle.Render("new custom step") + "\n" + m.addInput.View() + "\n" + mutedStyle.Render("enter create • esc cancel"))

	case modeAddProject:
		options := domain.ProjectTypeOptions()
		projectType := string(options[clamp(m.projectTypeIdx, 0, len(options)-1)])
		lines := []string{
			labelStyle.Render("new project"),
			m.addInput.View(),
			"type: " + projectType,
			mutedStyle.Render("tab cycle type • enter create • esc cancel"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeProjectPicker:
		lines := []string{labelStyle.Render("projects")}
		for i, project := range m.projects {
			marker := "  "
			if i == m.pickerIndex {
				marker = "> "
			}
			lines = append(lines, fmt.Sprintf("%s%s (%s)", marker, project.Name, project.Type))
		}
		lines = append(lines, mutedStyle.Render("enter open • esc cancel"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeContacts:
		lines := []string{labelStyle.Render("contacts")}
		if len(m.contacts) == 0 {
			lines = append(lines, mutedStyle.Render("none yet — agency and individual edits add them"))
		}
		for _, contact := range m.contacts {
			entry := contact.Organization
			if contact.Name != "" {
				entry += " — " + contact.Name
			}
			if contact.Responsibility != "" && contact.Responsibility != domain.DefaultResponsibility {
				entry += " (" + contact.Responsibility + ")"
			}
			lines = append(lines, entry)
		}
		lines = append(lines, mutedStyle.Render("esc close"))
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeConfirmDelete:
		return boxStyle.Render(labelStyle.Render("delete step") + "\n" + m.status + "\n" + mutedStyle.Render("y delete • n cancel"))

	case modeHelp:
		return boxStyle.Render(m.helpMD.render(helpMarkdown, max(24, m.width-8)) + "\n" + mutedStyle.Render("any key to close"))
	}
	return ""
}

// pad fits a cell value to its column width.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		if width <= 1 {
			return string(runes[:width])
		}
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(runes))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
