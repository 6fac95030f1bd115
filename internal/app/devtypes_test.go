package app

import (
	"context"
	"testing"

	"github.com/landcharge/devtrack/internal/domain"
)

func TestDevTypesIncludesCustomRowValues(t *testing.T) {
	client := newFakeClient()
	rows := []domain.Activity{testRow("a1", "p1", 0), testRow("a2", "p1", 1), testRow("a3", "p1", 2)}
	rows[0].DevType = "Permitting"
	rows[1].DevType = "Transmission Study"
	rows[2].DevType = "  "
	client.rows["p1"] = rows
	s := newTestSession(t, client, "p1")

	got := s.DevTypes()
	want := append(domain.DefaultDevTypes(), "Transmission Study")
	if len(got) != len(want) {
		t.Fatalf("DevTypes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DevTypes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRenameDevTypeRewritesMatchingRows(t *testing.T) {
	client := newFakeClient()
	rows := []domain.Activity{testRow("a1", "p1", 0), testRow("a2", "p1", 1), testRow("a3", "p1", 2)}
	rows[0].DevType = "Transmission Study"
	rows[1].DevType = "Permitting"
	rows[2].DevType = "Transmission Study"
	client.rows["p1"] = rows
	client.update = func(id string, patch domain.Patch) (domain.Activity, error) {
		for _, row := range rows {
			if row.ID != id {
				continue
			}
			updated := row.Clone()
			updated.DevType = *patch.DevType
			return updated, nil
		}
		return domain.Activity{}, ErrNotFound
	}
	s := newTestSession(t, client, "p1")

	if err := s.RenameDevType(context.Background(), "Transmission Study", "Grid Study"); err != nil {
		t.Fatalf("RenameDevType() error = %v", err)
	}

	client.mu.Lock()
	updates := len(client.updates)
	client.mu.Unlock()
	if updates != 2 {
		t.Fatalf("expected 2 updates, got %d", updates)
	}
	for _, id := range []string{"a1", "a3"} {
		row, _ := s.Row(id)
		if row.DevType != "Grid Study" {
			t.Fatalf("row %s dev type = %q, want Grid Study", id, row.DevType)
		}
	}
	if row, _ := s.Row("a2"); row.DevType != "Permitting" {
		t.Fatalf("unrelated row rewritten to %q", row.DevType)
	}
}

func TestRenameDevTypeClearsWhenNewValueEmpty(t *testing.T) {
	client := newFakeClient()
	row := testRow("a1", "p1", 0)
	row.DevType = "Transmission Study"
	client.rows["p1"] = []domain.Activity{row}
	client.update = func(id string, patch domain.Patch) (domain.Activity, error) {
		updated := row.Clone()
		updated.DevType = *patch.DevType
		return updated, nil
	}
	s := newTestSession(t, client, "p1")

	if err := s.RenameDevType(context.Background(), "Transmission Study", ""); err != nil {
		t.Fatalf("RenameDevType() error = %v", err)
	}
	if got, _ := s.Row("a1"); got.DevType != "" {
		t.Fatalf("dev type = %q, want cleared", got.DevType)
	}
}

func TestRenameDevTypeNoOpCases(t *testing.T) {
	client := newFakeClient()
	client.rows["p1"] = []domain.Activity{testRow("a1", "p1", 0)}
	s := newTestSession(t, client, "p1")

	if err := s.RenameDevType(context.Background(), "", "Anything"); err != nil {
		t.Fatalf("empty old value must be a no-op, got %v", err)
	}
	if err := s.RenameDevType(context.Background(), "Same", "Same"); err != nil {
		t.Fatalf("identical values must be a no-op, got %v", err)
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(client.updates))
	}
}
