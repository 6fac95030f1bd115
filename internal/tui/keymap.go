package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit          key.Binding
	reload        key.Binding
	toggleHelp    key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	editCell      key.Binding
	clearCell     key.Binding
	addStep       key.Binding
	deleteStep    key.Binding
	bootstrap     key.Binding
	moveStepUp    key.Binding
	moveStepDown  key.Binding
	resetOrder    key.Binding
	search        key.Binding
	filterDevType key.Binding
	renameDevType key.Binding
	filterPhase   key.Binding
	sortColumn    key.Binding
	clearView     key.Binding
	projects      key.Binding
	newProject    key.Binding
	contacts      key.Binding
	copyLink      key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "row up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "row down")),
		editCell:      key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit cell")),
		clearCell:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear cell")),
		addStep:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new step")),
		deleteStep:    key.NewBinding(key.WithKeys("D", "shift+d"), key.WithHelp("D", "delete custom step")),
		bootstrap:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "seed template steps")),
		moveStepUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move step up")),
		moveStepDown:  key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move step down")),
		resetOrder:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset order")),
		search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search names")),
		filterDevType: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle dev type filter")),
		renameDevType: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "rename custom dev type")),
		filterPhase:   key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "cycle phase filter")),
		sortColumn:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort by column")),
		clearView:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filters/sort")),
		projects:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "project picker")),
		newProject:    key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new project")),
		contacts:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "contacts")),
		copyLink:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.editCell, k.addStep, k.search, k.sortColumn, k.projects, k.contacts, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.moveStepUp, k.moveStepDown, k.resetOrder},
		{k.editCell, k.clearCell, k.addStep, k.deleteStep, k.bootstrap, k.renameDevType, k.copyLink},
		{k.search, k.filterDevType, k.filterPhase, k.sortColumn, k.clearView},
		{k.projects, k.newProject, k.contacts, k.reload, k.toggleHelp, k.quit},
	}
}
