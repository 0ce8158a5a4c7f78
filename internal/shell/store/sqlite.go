package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/shipyard/internal/core/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStoreError("Ping", "", "", err.Error(), ErrConnectionFailed)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Row Types
// =============================================================================

type projectRow struct {
	ID               int    `db:"id"`
	Name             string `db:"name"`
	Repository       string `db:"repository"`
	Branch           string `db:"branch"`
	GroupID          int    `db:"group_id"`
	KeyID            int    `db:"key_id"`
	BuildsToKeep     int    `db:"builds_to_keep"`
	URL              string `db:"url"`
	BuildURL         string `db:"build_url"`
	TemplateID       *int   `db:"template_id"`
	AllowOtherBranch bool   `db:"allow_other_branch"`
	NeedApprove      bool   `db:"need_approve"`
	CreatedAt        string `db:"created_at"`
	UpdatedAt        string `db:"updated_at"`
}

type templateRow struct {
	ID         int    `db:"id"`
	Name       string `db:"name"`
	Repository string `db:"repository"`
	Branch     string `db:"branch"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

type groupRow struct {
	ID           int    `db:"id"`
	Name         string `db:"name"`
	DisplayOrder int    `db:"display_order"`
	CreatedAt    string `db:"created_at"`
}

type keyRow struct {
	ID          int    `db:"id"`
	Name        string `db:"name"`
	PublicKey   string `db:"public_key"`
	PrivateKey  string `db:"private_key"`
	Fingerprint string `db:"fingerprint"`
	Encrypted   bool   `db:"encrypted"`
	CreatedAt   string `db:"created_at"`
}

type variableRow struct {
	ID         int    `db:"id"`
	TargetType string `db:"target_type"`
	TargetID   int    `db:"target_id"`
	Name       string `db:"name"`
	Value      string `db:"value"`
	CreatedAt  string `db:"created_at"`
}

// =============================================================================
// SQLiteStore Operations
// =============================================================================

func (s *SQLiteStore) CreateProject(ctx context.Context, project *domain.Project) error {
	return createProject(ctx, s.db, project)
}

func (s *SQLiteStore) GetProject(ctx context.Context, id int) (*domain.Project, error) {
	return getProject(ctx, s.db, id)
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, project *domain.Project) error {
	return updateProject(ctx, s.db, project)
}

// DeleteProject removes the project and its variables in one transaction.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id int) error {
	return s.WithTx(ctx, func(tx Store) error {
		return tx.DeleteProject(ctx, id)
	})
}

func (s *SQLiteStore) ListProjects(ctx context.Context, opts ListOptions) ([]domain.Project, error) {
	return listProjects(ctx, s.db, opts)
}

func (s *SQLiteStore) CountProjects(ctx context.Context) (int, error) {
	return countProjects(ctx, s.db)
}

func (s *SQLiteStore) SetProjectTemplate(ctx context.Context, projectID, templateID int) error {
	return setProjectTemplate(ctx, s.db, projectID, templateID)
}

func (s *SQLiteStore) CreateTemplate(ctx context.Context, template *domain.DeployTemplate) error {
	return createTemplate(ctx, s.db, template)
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, id int) (*domain.DeployTemplate, error) {
	return getTemplate(ctx, s.db, id)
}

func (s *SQLiteStore) GetTemplateByName(ctx context.Context, name string) (*domain.DeployTemplate, error) {
	return getTemplateByName(ctx, s.db, name)
}

func (s *SQLiteStore) ListTemplates(ctx context.Context) ([]domain.DeployTemplate, error) {
	return listTemplates(ctx, s.db)
}

func (s *SQLiteStore) CreateGroup(ctx context.Context, group *domain.ProjectGroup) error {
	return createGroup(ctx, s.db, group)
}

func (s *SQLiteStore) GetGroupByName(ctx context.Context, name string) (*domain.ProjectGroup, error) {
	return getGroupByName(ctx, s.db, name)
}

func (s *SQLiteStore) ListGroups(ctx context.Context) ([]domain.ProjectGroup, error) {
	return listGroups(ctx, s.db)
}

func (s *SQLiteStore) CreateKey(ctx context.Context, key *domain.Key) error {
	return createKey(ctx, s.db, key)
}

func (s *SQLiteStore) GetKeyByName(ctx context.Context, name string) (*domain.Key, error) {
	return getKeyByName(ctx, s.db, name)
}

func (s *SQLiteStore) ListKeys(ctx context.Context) ([]domain.Key, error) {
	return listKeys(ctx, s.db)
}

func (s *SQLiteStore) CreateVariable(ctx context.Context, variable *domain.Variable) error {
	return createVariable(ctx, s.db, variable)
}

func (s *SQLiteStore) ListVariables(ctx context.Context, kind domain.RecordKind, targetID int) ([]domain.Variable, error) {
	return listVariables(ctx, s.db, kind, targetID)
}

// =============================================================================
// Transaction Support
// =============================================================================

func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return NewStoreError("WithTx", "", "", "failed to begin transaction", ErrTxFailed)
	}

	txS := &txSQLiteStore{tx: tx}

	if err := fn(txS); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return NewStoreError("WithTx", "", "", fmt.Sprintf("rollback failed after error: %v", err), ErrTxFailed)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewStoreError("WithTx", "", "", "failed to commit transaction", ErrTxFailed)
	}

	return nil
}

// =============================================================================
// Transaction Store
// =============================================================================

// txSQLiteStore implements Store within a transaction.
type txSQLiteStore struct {
	tx *sqlx.Tx
}

func (s *txSQLiteStore) CreateProject(ctx context.Context, project *domain.Project) error {
	return createProject(ctx, s.tx, project)
}

func (s *txSQLiteStore) GetProject(ctx context.Context, id int) (*domain.Project, error) {
	return getProject(ctx, s.tx, id)
}

func (s *txSQLiteStore) UpdateProject(ctx context.Context, project *domain.Project) error {
	return updateProject(ctx, s.tx, project)
}

func (s *txSQLiteStore) DeleteProject(ctx context.Context, id int) error {
	return deleteProject(ctx, s.tx, id)
}

func (s *txSQLiteStore) ListProjects(ctx context.Context, opts ListOptions) ([]domain.Project, error) {
	return listProjects(ctx, s.tx, opts)
}

func (s *txSQLiteStore) CountProjects(ctx context.Context) (int, error) {
	return countProjects(ctx, s.tx)
}

func (s *txSQLiteStore) SetProjectTemplate(ctx context.Context, projectID, templateID int) error {
	return setProjectTemplate(ctx, s.tx, projectID, templateID)
}

func (s *txSQLiteStore) CreateTemplate(ctx context.Context, template *domain.DeployTemplate) error {
	return createTemplate(ctx, s.tx, template)
}

func (s *txSQLiteStore) GetTemplate(ctx context.Context, id int) (*domain.DeployTemplate, error) {
	return getTemplate(ctx, s.tx, id)
}

func (s *txSQLiteStore) GetTemplateByName(ctx context.Context, name string) (*domain.DeployTemplate, error) {
	return getTemplateByName(ctx, s.tx, name)
}

func (s *txSQLiteStore) ListTemplates(ctx context.Context) ([]domain.DeployTemplate, error) {
	return listTemplates(ctx, s.tx)
}

func (s *txSQLiteStore) CreateGroup(ctx context.Context, group *domain.ProjectGroup) error {
	return createGroup(ctx, s.tx, group)
}

func (s *txSQLiteStore) GetGroupByName(ctx context.Context, name string) (*domain.ProjectGroup, error) {
	return getGroupByName(ctx, s.tx, name)
}

func (s *txSQLiteStore) ListGroups(ctx context.Context) ([]domain.ProjectGroup, error) {
	return listGroups(ctx, s.tx)
}

func (s *txSQLiteStore) CreateKey(ctx context.Context, key *domain.Key) error {
	return createKey(ctx, s.tx, key)
}

func (s *txSQLiteStore) GetKeyByName(ctx context.Context, name string) (*domain.Key, error) {
	return getKeyByName(ctx, s.tx, name)
}

func (s *txSQLiteStore) ListKeys(ctx context.Context) ([]domain.Key, error) {
	return listKeys(ctx, s.tx)
}

func (s *txSQLiteStore) CreateVariable(ctx context.Context, variable *domain.Variable) error {
	return createVariable(ctx, s.tx, variable)
}

func (s *txSQLiteStore) ListVariables(ctx context.Context, kind domain.RecordKind, targetID int) ([]domain.Variable, error) {
	return listVariables(ctx, s.tx, kind, targetID)
}

func (s *txSQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	// Already in a transaction, just run the function
	return fn(s)
}

func (s *txSQLiteStore) Ping(ctx context.Context) error {
	return nil
}

func (s *txSQLiteStore) Close() error {
	// No-op for tx store
	return nil
}

// =============================================================================
// Shared Implementation Functions - Projects
// =============================================================================

func projectParams(project *domain.Project) map[string]any {
	return map[string]any{
		"id":                 project.ID,
		"name":               project.Name,
		"repository":         project.Repository,
		"branch":             project.Branch,
		"group_id":           project.GroupID,
		"key_id":             project.KeyID,
		"builds_to_keep":     project.BuildsToKeep,
		"url":                project.URL,
		"build_url":          project.BuildURL,
		"template_id":        project.TemplateID,
		"allow_other_branch": project.AllowOtherBranch,
		"need_approve":       project.NeedApprove,
		"created_at":         project.CreatedAt.Format(time.RFC3339),
		"updated_at":         project.UpdatedAt.Format(time.RFC3339),
	}
}

func createProject(ctx context.Context, exec executor, project *domain.Project) error {
	query := `
		INSERT INTO projects (
			name, repository, branch, group_id, key_id, builds_to_keep,
			url, build_url, template_id, allow_other_branch, need_approve,
			created_at, updated_at
		) VALUES (
			:name, :repository, :branch, :group_id, :key_id, :builds_to_keep,
			:url, :build_url, :template_id, :allow_other_branch, :need_approve,
			:created_at, :updated_at
		)`

	result, err := exec.NamedExecContext(ctx, query, projectParams(project))
	if err != nil {
		if isForeignKeyErr(err) {
			return NewStoreError("CreateProject", "project", "", "group, key or template not found", ErrForeignKey)
		}
		return NewStoreError("CreateProject", "project", "", err.Error(), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return NewStoreError("CreateProject", "project", "", err.Error(), err)
	}
	project.ID = int(id)
	return nil
}

func getProject(ctx context.Context, exec executor, id int) (*domain.Project, error) {
	query := `SELECT * FROM projects WHERE id = ?`

	var row projectRow
	err := exec.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetProject", "project", strconv.Itoa(id), "project not found", ErrNotFound)
		}
		return nil, NewStoreError("GetProject", "project", strconv.Itoa(id), err.Error(), err)
	}

	return rowToProject(&row), nil
}

func updateProject(ctx context.Context, exec executor, project *domain.Project) error {
	query := `
		UPDATE projects SET
			name = :name,
			repository = :repository,
			branch = :branch,
			group_id = :group_id,
			key_id = :key_id,
			builds_to_keep = :builds_to_keep,
			url = :url,
			build_url = :build_url,
			template_id = :template_id,
			allow_other_branch = :allow_other_branch,
			need_approve = :need_approve,
			updated_at = :updated_at
		WHERE id = :id`

	id := strconv.Itoa(project.ID)
	result, err := exec.NamedExecContext(ctx, query, projectParams(project))
	if err != nil {
		if isForeignKeyErr(err) {
			return NewStoreError("UpdateProject", "project", id, "group, key or template not found", ErrForeignKey)
		}
		return NewStoreError("UpdateProject", "project", id, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("UpdateProject", "project", id, "project not found", ErrNotFound)
	}

	return nil
}

func deleteProject(ctx context.Context, exec executor, id int) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return NewStoreError("DeleteProject", "project", strconv.Itoa(id), err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("DeleteProject", "project", strconv.Itoa(id), "project not found", ErrNotFound)
	}

	_, err = exec.ExecContext(ctx, `DELETE FROM variables WHERE target_type = ? AND target_id = ?`, string(domain.KindProject), id)
	if err != nil {
		return NewStoreError("DeleteProject", "variable", strconv.Itoa(id), err.Error(), err)
	}

	return nil
}

func listProjects(ctx context.Context, exec executor, opts ListOptions) ([]domain.Project, error) {
	opts = opts.Normalize()
	query := `SELECT * FROM projects ORDER BY name ASC, id ASC LIMIT ? OFFSET ?`

	var rows []projectRow
	if err := exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListProjects", "project", "", err.Error(), err)
	}

	projects := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, *rowToProject(&row))
	}
	return projects, nil
}

func countProjects(ctx context.Context, exec executor) (int, error) {
	var count int
	if err := exec.GetContext(ctx, &count, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, NewStoreError("CountProjects", "project", "", err.Error(), err)
	}
	return count, nil
}

func setProjectTemplate(ctx context.Context, exec executor, projectID, templateID int) error {
	query := `UPDATE projects SET template_id = ?, updated_at = ? WHERE id = ?`

	id := strconv.Itoa(projectID)
	result, err := exec.ExecContext(ctx, query, templateID, time.Now().UTC().Format(time.RFC3339), projectID)
	if err != nil {
		if isForeignKeyErr(err) {
			return NewStoreError("SetProjectTemplate", "project", id, "template not found", ErrForeignKey)
		}
		return NewStoreError("SetProjectTemplate", "project", id, err.Error(), err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return NewStoreError("SetProjectTemplate", "project", id, "project not found", ErrNotFound)
	}
	return nil
}

// =============================================================================
// Shared Implementation Functions - Templates
// =============================================================================

func createTemplate(ctx context.Context, exec executor, template *domain.DeployTemplate) error {
	query := `
		INSERT INTO deploy_templates (name, repository, branch, created_at, updated_at)
		VALUES (:name, :repository, :branch, :created_at, :updated_at)`

	row := map[string]any{
		"name":       template.Name,
		"repository": template.Repository,
		"branch":     template.Branch,
		"created_at": template.CreatedAt.Format(time.RFC3339),
		"updated_at": template.UpdatedAt.Format(time.RFC3339),
	}

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("CreateTemplate", "template", "", err.Error(), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return NewStoreError("CreateTemplate", "template", "", err.Error(), err)
	}
	template.ID = int(id)
	return nil
}

func getTemplate(ctx context.Context, exec executor, id int) (*domain.DeployTemplate, error) {
	var row templateRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM deploy_templates WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetTemplate", "template", strconv.Itoa(id), "template not found", ErrNotFound)
		}
		return nil, NewStoreError("GetTemplate", "template", strconv.Itoa(id), err.Error(), err)
	}
	return rowToTemplate(&row), nil
}

func getTemplateByName(ctx context.Context, exec executor, name string) (*domain.DeployTemplate, error) {
	var row templateRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM deploy_templates WHERE name = ? ORDER BY id LIMIT 1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetTemplateByName", "template", name, "template not found", ErrNotFound)
		}
		return nil, NewStoreError("GetTemplateByName", "template", name, err.Error(), err)
	}
	return rowToTemplate(&row), nil
}

func listTemplates(ctx context.Context, exec executor) ([]domain.DeployTemplate, error) {
	var rows []templateRow
	if err := exec.SelectContext(ctx, &rows, `SELECT * FROM deploy_templates ORDER BY name ASC, id ASC`); err != nil {
		return nil, NewStoreError("ListTemplates", "template", "", err.Error(), err)
	}

	templates := make([]domain.DeployTemplate, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, *rowToTemplate(&row))
	}
	return templates, nil
}

// =============================================================================
// Shared Implementation Functions - Groups
// =============================================================================

func createGroup(ctx context.Context, exec executor, group *domain.ProjectGroup) error {
	query := `
		INSERT INTO project_groups (name, display_order, created_at)
		VALUES (:name, :display_order, :created_at)`

	row := map[string]any{
		"name":          group.Name,
		"display_order": group.Order,
		"created_at":    group.CreatedAt.Format(time.RFC3339),
	}

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("CreateGroup", "group", "", err.Error(), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return NewStoreError("CreateGroup", "group", "", err.Error(), err)
	}
	group.ID = int(id)
	return nil
}

func getGroupByName(ctx context.Context, exec executor, name string) (*domain.ProjectGroup, error) {
	var row groupRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM project_groups WHERE name = ? ORDER BY id LIMIT 1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetGroupByName", "group", name, "group not found", ErrNotFound)
		}
		return nil, NewStoreError("GetGroupByName", "group", name, err.Error(), err)
	}
	return rowToGroup(&row), nil
}

func listGroups(ctx context.Context, exec executor) ([]domain.ProjectGroup, error) {
	var rows []groupRow
	if err := exec.SelectContext(ctx, &rows, `SELECT * FROM project_groups ORDER BY display_order ASC, id ASC`); err != nil {
		return nil, NewStoreError("ListGroups", "group", "", err.Error(), err)
	}

	groups := make([]domain.ProjectGroup, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, *rowToGroup(&row))
	}
	return groups, nil
}

// =============================================================================
// Shared Implementation Functions - Keys
// =============================================================================

func createKey(ctx context.Context, exec executor, key *domain.Key) error {
	query := `
		INSERT INTO keys (name, public_key, private_key, fingerprint, encrypted, created_at)
		VALUES (:name, :public_key, :private_key, :fingerprint, :encrypted, :created_at)`

	row := map[string]any{
		"name":        key.Name,
		"public_key":  key.PublicKey,
		"private_key": key.PrivateKey,
		"fingerprint": key.Fingerprint,
		"encrypted":   key.Encrypted,
		"created_at":  key.CreatedAt.Format(time.RFC3339),
	}

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		return NewStoreError("CreateKey", "key", "", err.Error(), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return NewStoreError("CreateKey", "key", "", err.Error(), err)
	}
	key.ID = int(id)
	return nil
}

func getKeyByName(ctx context.Context, exec executor, name string) (*domain.Key, error) {
	var row keyRow
	err := exec.GetContext(ctx, &row, `SELECT * FROM keys WHERE name = ? ORDER BY id LIMIT 1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetKeyByName", "key", name, "key not found", ErrNotFound)
		}
		return nil, NewStoreError("GetKeyByName", "key", name, err.Error(), err)
	}
	return rowToKey(&row), nil
}

func listKeys(ctx context.Context, exec executor) ([]domain.Key, error) {
	var rows []keyRow
	if err := exec.SelectContext(ctx, &rows, `SELECT * FROM keys ORDER BY name ASC, id ASC`); err != nil {
		return nil, NewStoreError("ListKeys", "key", "", err.Error(), err)
	}

	keys := make([]domain.Key, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, *rowToKey(&row))
	}
	return keys, nil
}

// =============================================================================
// Shared Implementation Functions - Variables
// =============================================================================

func createVariable(ctx context.Context, exec executor, variable *domain.Variable) error {
	query := `
		INSERT INTO variables (target_type, target_id, name, value, created_at)
		VALUES (:target_type, :target_id, :name, :value, :created_at)`

	row := map[string]any{
		"target_type": string(variable.TargetKind),
		"target_id":   variable.TargetID,
		"name":        variable.Name,
		"value":       variable.Value,
		"created_at":  variable.CreatedAt.Format(time.RFC3339),
	}

	result, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: variables.") {
			return NewStoreError("CreateVariable", "variable", variable.Name, "variable with this name already exists", ErrDuplicateName)
		}
		return NewStoreError("CreateVariable", "variable", variable.Name, err.Error(), err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return NewStoreError("CreateVariable", "variable", variable.Name, err.Error(), err)
	}
	variable.ID = int(id)
	return nil
}

func listVariables(ctx context.Context, exec executor, kind domain.RecordKind, targetID int) ([]domain.Variable, error) {
	query := `SELECT * FROM variables WHERE target_type = ? AND target_id = ? ORDER BY name ASC`

	var rows []variableRow
	if err := exec.SelectContext(ctx, &rows, query, string(kind), targetID); err != nil {
		return nil, NewStoreError("ListVariables", "variable", "", err.Error(), err)
	}

	variables := make([]domain.Variable, 0, len(rows))
	for _, row := range rows {
		variables = append(variables, *rowToVariable(&row))
	}
	return variables, nil
}

// =============================================================================
// Row Conversion Functions
// =============================================================================

func isForeignKeyErr(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// rowToProject converts a database row to a domain.Project.
func rowToProject(row *projectRow) *domain.Project {
	return &domain.Project{
		ID:               row.ID,
		Name:             row.Name,
		Repository:       row.Repository,
		Branch:           row.Branch,
		GroupID:          row.GroupID,
		KeyID:            row.KeyID,
		BuildsToKeep:     row.BuildsToKeep,
		URL:              row.URL,
		BuildURL:         row.BuildURL,
		TemplateID:       row.TemplateID,
		AllowOtherBranch: row.AllowOtherBranch,
		NeedApprove:      row.NeedApprove,
		CreatedAt:        parseTime(row.CreatedAt),
		UpdatedAt:        parseTime(row.UpdatedAt),
	}
}

func rowToTemplate(row *templateRow) *domain.DeployTemplate {
	return &domain.DeployTemplate{
		ID:         row.ID,
		Name:       row.Name,
		Repository: row.Repository,
		Branch:     row.Branch,
		CreatedAt:  parseTime(row.CreatedAt),
		UpdatedAt:  parseTime(row.UpdatedAt),
	}
}

func rowToGroup(row *groupRow) *domain.ProjectGroup {
	return &domain.ProjectGroup{
		ID:        row.ID,
		Name:      row.Name,
		Order:     row.DisplayOrder,
		CreatedAt: parseTime(row.CreatedAt),
	}
}

func rowToKey(row *keyRow) *domain.Key {
	return &domain.Key{
		ID:          row.ID,
		Name:        row.Name,
		PublicKey:   row.PublicKey,
		PrivateKey:  row.PrivateKey,
		Fingerprint: row.Fingerprint,
		Encrypted:   row.Encrypted,
		CreatedAt:   parseTime(row.CreatedAt),
	}
}

func rowToVariable(row *variableRow) *domain.Variable {
	return &domain.Variable{
		ID:         row.ID,
		TargetKind: domain.RecordKind(row.TargetType),
		TargetID:   row.TargetID,
		Name:       row.Name,
		Value:      row.Value,
		CreatedAt:  parseTime(row.CreatedAt),
	}
}
