// Package sqlite persists projects, steps, and contacts behind the server
// repository port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/landcharge/devtrack/internal/adapters/server/common"
	"github.com/landcharge/devtrack/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			project_type TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS steps (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			name TEXT NOT NULL,
			dev_type TEXT NOT NULL DEFAULT '',
			phase INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT '',
			start_date TEXT,
			end_date TEXT,
			duration_days INTEGER GENERATED ALWAYS AS (
				CAST(julianday(end_date) - julianday(start_date) AS INTEGER)
			) VIRTUAL,
			planned_spend REAL,
			actual_spend REAL,
			agency TEXT NOT NULL DEFAULT '',
			owner TEXT NOT NULL DEFAULT '',
			responsible_party TEXT NOT NULL DEFAULT '',
			responsible_individual TEXT NOT NULL DEFAULT '',
			process TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			requirement TEXT NOT NULL DEFAULT '',
			req_engineering INTEGER NOT NULL DEFAULT 0,
			req_permitting INTEGER NOT NULL DEFAULT 0,
			req_financing INTEGER NOT NULL DEFAULT 0,
			req_interconnection INTEGER NOT NULL DEFAULT 0,
			req_site_control INTEGER NOT NULL DEFAULT 0,
			req_construction INTEGER NOT NULL DEFAULT 0,
			storage_hybrid_impact TEXT NOT NULL DEFAULT '',
			milestones_ntp_gates TEXT NOT NULL DEFAULT '',
			risk_heatmap TEXT NOT NULL DEFAULT '',
			custom INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_steps_project_sequence ON steps(project_id, sequence);`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			organization TEXT NOT NULL,
			contact_type TEXT NOT NULL DEFAULT '',
			responsibility TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone1 TEXT NOT NULL DEFAULT '',
			phone2 TEXT NOT NULL DEFAULT '',
			is_deleted INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_project ON contacts(project_id);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}

	alters := []string{
		`ALTER TABLE steps ADD COLUMN storage_hybrid_impact TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE steps ADD COLUMN milestones_ntp_gates TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE steps ADD COLUMN risk_heatmap TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE contacts ADD COLUMN is_deleted INTEGER NOT NULL DEFAULT 0`,
	}
	for _, stmt := range alters {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil && !isDuplicateColumnErr(err) {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// isDuplicateColumnErr reports whether the expected condition is satisfied.
func isDuplicateColumnErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

// CreateProject creates one project row.
func (r *Repository) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, project_type, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, string(p.Type), ts(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetProject gets one project row.
func (r *Repository) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, project_type, created_at FROM projects WHERE id = ?`, id,
	)
	return scanProject(row)
}

// ListProjects lists all project rows.
func (r *Repository) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, project_type, created_at FROM projects ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// stepColumns lists the readable step columns in scan order.
const stepColumns = `id, project_id, sequence, name, dev_type, phase, status,
	start_date, end_date, COALESCE(duration_days, 0),
	planned_spend, actual_spend,
	agency, owner, responsible_party, responsible_individual,
	process, link, requirement, storage_hybrid_impact, milestones_ntp_gates,
	risk_heatmap, custom`

// CreateStep creates one step row. Requirement flag columns are derived from
// the canonical requirement string on every write.
func (r *Repository) CreateStep(ctx context.Context, a domain.Activity) error {
	return r.insertStep(ctx, r.db, a)
}

// CreateSteps creates a batch of step rows in one transaction.
func (r *Repository) CreateSteps(ctx context.Context, steps []domain.Activity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, step := range steps {
		if err := r.insertStep(ctx, tx, step); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// insertStep writes one step through db or an open transaction.
func (r *Repository) insertStep(ctx context.Context, ex execerContext, a domain.Activity) error {
	reqs := a.Requirements
	_, err := ex.ExecContext(ctx,
		`INSERT INTO steps (
			id, project_id, sequence, name, dev_type, phase, status,
			start_date, end_date, planned_spend, actual_spend,
			agency, owner, responsible_party, responsible_individual,
			process, link, requirement,
			req_engineering, req_permitting, req_financing,
			req_interconnection, req_site_control, req_construction,
			storage_hybrid_impact, milestones_ntp_gates, risk_heatmap, custom
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ProjectID, a.Sequence, a.Name, a.DevType, a.Phase, string(a.Status),
		nullableDate(a.StartDate), nullableDate(a.EndDate), nullableFloat(a.PlannedSpend), nullableFloat(a.ActualSpend),
		a.Agency, string(a.Owner), a.ResponsibleParty, a.ResponsibleIndividual,
		a.Process, a.Link, reqs.String(),
		boolInt(reqs.Has(domain.RequirementEngineering)), boolInt(reqs.Has(domain.RequirementPermitting)), boolInt(reqs.Has(domain.RequirementFinancing)),
		boolInt(reqs.Has(domain.RequirementInterconnection)), boolInt(reqs.Has(domain.RequirementSiteControl)), boolInt(reqs.Has(domain.RequirementConstruction)),
		a.StorageHybridImpact, a.MilestoneGates, string(a.RiskLevel), boolInt(a.Custom),
	)
	if err != nil {
		return fmt.Errorf("insert step: %w", err)
	}
	return nil
}

// GetStep gets one step row.
func (r *Repository) GetStep(ctx context.Context, id string) (domain.Activity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+stepColumns+` FROM steps WHERE id = ?`, id,
	)
	return scanStep(row)
}

// ListSteps lists a project's steps in sequence order.
func (r *Repository) ListSteps(ctx context.Context, projectID string) ([]domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+stepColumns+` FROM steps WHERE project_id = ? ORDER BY sequence, id`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		a, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateStep overwrites one step row.
func (r *Repository) UpdateStep(ctx context.Context, a domain.Activity) error {
	reqs := a.Requirements
	res, err := r.db.ExecContext(ctx,
		`UPDATE steps SET
			sequence = ?, name = ?, dev_type = ?, phase = ?, status = ?,
			start_date = ?, end_date = ?, planned_spend = ?, actual_spend = ?,
			agency = ?, owner = ?, responsible_party = ?, responsible_individual = ?,
			process = ?, link = ?, requirement = ?,
			req_engineering = ?, req_permitting = ?, req_financing = ?,
			req_interconnection = ?, req_site_control = ?, req_construction = ?,
			storage_hybrid_impact = ?, milestones_ntp_gates = ?, risk_heatmap = ?, custom = ?
		WHERE id = ?`,
		a.Sequence, a.Name, a.DevType, a.Phase, string(a.Status),
		nullableDate(a.StartDate), nullableDate(a.EndDate), nullableFloat(a.PlannedSpend), nullableFloat(a.ActualSpend),
		a.Agency, string(a.Owner), a.ResponsibleParty, a.ResponsibleIndividual,
		a.Process, a.Link, reqs.String(),
		boolInt(reqs.Has(domain.RequirementEngineering)), boolInt(reqs.Has(domain.RequirementPermitting)), boolInt(reqs.Has(domain.RequirementFinancing)),
		boolInt(reqs.Has(domain.RequirementInterconnection)), boolInt(reqs.Has(domain.RequirementSiteControl)), boolInt(reqs.Has(domain.RequirementConstruction)),
		a.StorageHybridImpact, a.MilestoneGates, string(a.RiskLevel), boolInt(a.Custom),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update step: %w", err)
	}
	return translateNoRows(res)
}

// DeleteStep removes one step row.
func (r *Repository) DeleteStep(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM steps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete step: %w", err)
	}
	return translateNoRows(res)
}

// SetStepOrder renumbers a project's steps to match ids in one transaction.
func (r *Repository) SetStepOrder(ctx context.Context, projectID string, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for seq, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE steps SET sequence = ? WHERE id = ? AND project_id = ?`,
			seq, id, projectID,
		); err != nil {
			return fmt.Errorf("set step order: %w", err)
		}
	}
	return tx.Commit()
}

// CreateContact creates one contact row.
func (r *Repository) CreateContact(ctx context.Context, c domain.Contact) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (
			id, project_id, organization, contact_type, responsibility,
			name, title, email, phone1, phone2
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ProjectID, c.Organization, c.Type, c.Responsibility,
		c.Name, c.Title, c.Email, c.Phone1, c.Phone2,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// ListContacts lists a project's contacts, excluding soft-deleted rows.
func (r *Repository) ListContacts(ctx context.Context, projectID string) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, organization, contact_type, responsibility,
			name, title, email, phone1, phone2
		FROM contacts WHERE project_id = ? AND is_deleted = 0 ORDER BY organization, name, id`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(
			&c.ID, &c.ProjectID, &c.Organization, &c.Type, &c.Responsibility,
			&c.Name, &c.Title, &c.Email, &c.Phone1, &c.Phone2,
		); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// execerContext abstracts db and tx for shared write paths.
type execerContext interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner abstracts row and rows for shared scan paths.
type scanner interface {
	Scan(dest ...any) error
}

// scanProject reads one project row.
func scanProject(sc scanner) (domain.Project, error) {
	var p domain.Project
	var projectType, createdAt string
	if err := sc.Scan(&p.ID, &p.Name, &projectType, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Project{}, common.ErrNotFound
		}
		return domain.Project{}, fmt.Errorf("scan project: %w", err)
	}
	p.Type = domain.ProjectType(projectType)
	t, err := parseTS(createdAt)
	if err != nil {
		return domain.Project{}, err
	}
	p.CreatedAt = t
	return p, nil
}

// scanStep reads one step row.
func scanStep(sc scanner) (domain.Activity, error) {
	var a domain.Activity
	var status, owner, requirement, risk string
	var startDate, endDate sql.NullString
	var plannedSpend, actualSpend sql.NullFloat64
	var custom int

	err := sc.Scan(
		&a.ID, &a.ProjectID, &a.Sequence, &a.Name, &a.DevType, &a.Phase, &status,
		&startDate, &endDate, &a.DurationDays,
		&plannedSpend, &actualSpend,
		&a.Agency, &owner, &a.ResponsibleParty, &a.ResponsibleIndividual,
		&a.Process, &a.Link, &requirement, &a.StorageHybridImpact, &a.MilestoneGates,
		&risk, &custom,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Activity{}, common.ErrNotFound
		}
		return domain.Activity{}, fmt.Errorf("scan step: %w", err)
	}

	a.Status = domain.Status(status)
	a.Owner = domain.OwnerType(owner)
	a.RiskLevel = domain.RiskLevel(risk)
	a.Custom = custom != 0
	if startDate.Valid && startDate.String != "" {
		d, err := domain.ParseDate(startDate.String)
		if err != nil {
			return domain.Activity{}, err
		}
		a.StartDate = &d
	}
	if endDate.Valid && endDate.String != "" {
		d, err := domain.ParseDate(endDate.String)
		if err != nil {
			return domain.Activity{}, err
		}
		a.EndDate = &d
	}
	if plannedSpend.Valid {
		v := plannedSpend.Float64
		a.PlannedSpend = &v
	}
	if actualSpend.Valid {
		v := actualSpend.Float64
		a.ActualSpend = &v
	}
	reqs, err := domain.ParseRequirementSet(requirement)
	if err != nil {
		return domain.Activity{}, err
	}
	a.Requirements = reqs
	return a, nil
}

// translateNoRows maps zero-row writes to the transport not-found error.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ts formats a timestamp for storage.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses a stored timestamp.
func parseTS(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}

// nullableDate renders an optional date for storage.
func nullableDate(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// nullableFloat renders an optional amount for storage.
func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// boolInt renders a flag for storage.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
