package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

func TestKeyMapDefaults(t *testing.T) {
	keys := newKeyMap()
	cases := []struct {
		name    string
		binding key.Binding
		press   tea.KeyPressMsg
	}{
		{"quit", keys.quit, keyRune('q')},
		{"quit ctrl+c", keys.quit, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}},
		{"edit", keys.editCell, tea.KeyPressMsg{Code: tea.KeyEnter}},
		{"clear", keys.clearCell, keyRune('x')},
		{"search", keys.search, keyRune('/')},
		{"dev type filter", keys.filterDevType, keyRune('f')},
		{"rename dev type", keys.renameDevType, keyRune('t')},
		{"phase filter", keys.filterPhase, keyRune('F')},
		{"sort", keys.sortColumn, keyRune('o')},
		{"move step down", keys.moveStepDown, keyRune('J')},
		{"reset order", keys.resetOrder, keyRune('R')},
		{"bootstrap", keys.bootstrap, keyRune('b')},
		{"copy link", keys.copyLink, keyRune('y')},
	}
	for _, tc := range cases {
		if !key.Matches(tc.press, tc.binding) {
			t.Errorf("%s: key %q does not match its binding", tc.name, tc.press.String())
		}
	}
}

func TestKeyMapHelpRows(t *testing.T) {
	keys := newKeyMap()
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help must not be empty")
	}
	rows := keys.FullHelp()
	if len(rows) != 4 {
		t.Fatalf("full help rows = %d, want 4", len(rows))
	}
	for i, row := range rows {
		if len(row) == 0 {
			t.Fatalf("full help row %d is empty", i)
		}
	}
}
