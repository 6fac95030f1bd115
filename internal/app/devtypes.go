package app

import (
	"context"
	"sort"
	"strings"

	"github.com/landcharge/devtrack/internal/domain"
)

// DevTypes returns the development types in use for the active project: the
// built-in options first, then any custom values found on loaded rows in
// alphabetical order.
func (s *Session) DevTypes() []string {
	defaults := domain.DefaultDevTypes()
	known := make(map[string]struct{}, len(defaults))
	for _, dt := range defaults {
		known[dt] = struct{}{}
	}

	s.mu.Lock()
	var custom []string
	for _, row := range s.rows {
		dt := strings.TrimSpace(row.DevType)
		if dt == "" {
			continue
		}
		if _, ok := known[dt]; ok {
			continue
		}
		known[dt] = struct{}{}
		custom = append(custom, dt)
	}
	s.mu.Unlock()

	sort.Strings(custom)
	return append(defaults, custom...)
}

// RenameDevType rewrites every row carrying the old development type to the
// new value. An empty new value clears the type from those rows. Each rewrite
// goes through the field mutation path, so a failed row rolls back alone and
// reports a FieldError while the rest proceed.
func (s *Session) RenameDevType(ctx context.Context, oldType, newType string) error {
	oldType = strings.TrimSpace(oldType)
	newType = strings.TrimSpace(newType)
	if oldType == "" || oldType == newType {
		return nil
	}

	s.mu.Lock()
	projectID := s.projectID
	var ids []string
	for _, row := range s.rows {
		if strings.TrimSpace(row.DevType) == oldType {
			ids = append(ids, row.ID)
		}
	}
	s.mu.Unlock()
	if projectID == "" {
		return ErrNoProject
	}

	var firstErr error
	for _, id := range ids {
		if err := s.SetDevType(ctx, id, newType); err != nil {
			s.logger.Warn("dev type rewrite failed for row", "row", id, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
