package store

import (
	"context"

	"github.com/artpar/shipyard/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for projects and their lookups.
type Store interface {
	// Project operations
	CreateProject(ctx context.Context, project *domain.Project) error
	GetProject(ctx context.Context, id int) (*domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, id int) error
	ListProjects(ctx context.Context, opts ListOptions) ([]domain.Project, error)
	CountProjects(ctx context.Context) (int, error)
	SetProjectTemplate(ctx context.Context, projectID, templateID int) error

	// Template operations
	CreateTemplate(ctx context.Context, template *domain.DeployTemplate) error
	GetTemplate(ctx context.Context, id int) (*domain.DeployTemplate, error)
	GetTemplateByName(ctx context.Context, name string) (*domain.DeployTemplate, error)
	ListTemplates(ctx context.Context) ([]domain.DeployTemplate, error)

	// Group operations
	CreateGroup(ctx context.Context, group *domain.ProjectGroup) error
	GetGroupByName(ctx context.Context, name string) (*domain.ProjectGroup, error)
	ListGroups(ctx context.Context) ([]domain.ProjectGroup, error)

	// Key operations
	CreateKey(ctx context.Context, key *domain.Key) error
	GetKeyByName(ctx context.Context, name string) (*domain.Key, error)
	ListKeys(ctx context.Context) ([]domain.Key, error)

	// Variable operations
	CreateVariable(ctx context.Context, variable *domain.Variable) error
	ListVariables(ctx context.Context, kind domain.RecordKind, targetID int) ([]domain.Variable, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
