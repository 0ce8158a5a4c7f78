// Package projects provides the project administration service.
// This is part of the Imperative Shell - it loads and persists records through
// the store and hands setup work to a task queue.
package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artpar/shipyard/internal/core/domain"
	"github.com/artpar/shipyard/internal/shell/store"
)

// =============================================================================
// Ports
// =============================================================================

// TaskQueue accepts setup tasks for asynchronous execution.
// Enqueue must not wait for the task to run.
type TaskQueue interface {
	Enqueue(ctx context.Context, task domain.SetupTask) error
}

// =============================================================================
// Service
// =============================================================================

// DefaultItemsPerPage is the page size used when none is configured.
const DefaultItemsPerPage = 10

// Service lists, creates, clones, updates and destroys projects.
type Service struct {
	store        store.Store
	queue        TaskQueue
	itemsPerPage int
	logger       *slog.Logger
	now          func() time.Time
}

// NewService creates a new project service.
func NewService(s store.Store, queue TaskQueue, itemsPerPage int, logger *slog.Logger) *Service {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:        s,
		queue:        queue,
		itemsPerPage: itemsPerPage,
		logger:       logger.With("component", "projects"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ListResult is one page of projects plus the lookups a management view needs.
type ListResult struct {
	Projects  domain.Page[domain.Project] `json:"projects"`
	Keys      []domain.Key                `json:"keys"`
	Groups    []domain.ProjectGroup       `json:"groups"`
	Templates []domain.DeployTemplate     `json:"templates"`
}

// List returns projects ordered by name, keys and templates ordered by name,
// and groups ordered by their display order.
func (s *Service) List(ctx context.Context, page, perPage int) (*ListResult, error) {
	req := domain.NewPageRequest(page, perPage, s.itemsPerPage)

	total, err := s.store.CountProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	projects, err := s.store.ListProjects(ctx, store.ListOptions{Limit: req.PerPage, Offset: req.Offset()})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	keys, err := s.store.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	templates, err := s.store.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	return &ListResult{
		Projects:  domain.NewPage(projects, total, req),
		Keys:      keys,
		Groups:    groups,
		Templates: templates,
	}, nil
}

// Get returns a single project.
func (s *Service) Get(ctx context.Context, id int) (*domain.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// Create persists a new project and enqueues its setup. A template_id that
// does not resolve is not an error: the setup task gets no skeleton.
func (s *Service) Create(ctx context.Context, fields domain.CreateProjectFields) (*domain.Project, error) {
	var skeleton *domain.RecordRef
	if fields.TemplateID != nil {
		template, err := s.store.GetTemplate(ctx, *fields.TemplateID)
		switch {
		case err == nil:
			ref := template.Ref()
			skeleton = &ref
		case errors.Is(err, store.ErrNotFound):
			s.logger.Debug("template not found, creating project without skeleton", "template_id", *fields.TemplateID)
		default:
			return nil, fmt.Errorf("get template: %w", err)
		}
	}

	project := domain.NewProject(fields.ProjectFields, s.now())
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.Info("project created", "project_id", project.ID, "name", project.Name)
	s.dispatch(ctx, domain.NewSetupTask(project.Ref(), skeleton))
	return project, nil
}

// Clone creates a project or a template from the skeleton project.
// A project clone copies group, key and repository from the skeleton; a
// template clone carries only its name.
func (s *Service) Clone(ctx context.Context, skeletonID int, fields domain.CloneFields) (domain.CloneTarget, error) {
	skeleton, err := s.store.GetProject(ctx, skeletonID)
	if err != nil {
		return nil, fmt.Errorf("get skeleton: %w", err)
	}

	name := domain.CloneName(skeleton.Name, fields.Name)
	now := s.now()

	var target domain.CloneTarget
	switch fields.Kind {
	case domain.CloneAsProject:
		project := domain.NewProject(domain.ProjectFields{
			Name:       &name,
			GroupID:    &skeleton.GroupID,
			KeyID:      &skeleton.KeyID,
			Repository: &skeleton.Repository,
		}, now)
		if err := s.store.CreateProject(ctx, project); err != nil {
			return nil, fmt.Errorf("create project: %w", err)
		}
		target = project
	case domain.CloneAsTemplate:
		template := domain.NewDeployTemplate(name, now)
		if err := s.store.CreateTemplate(ctx, template); err != nil {
			return nil, fmt.Errorf("create template: %w", err)
		}
		target = template
	default:
		return nil, domain.ErrCloneKindInvalid
	}

	skeletonRef := skeleton.Ref()
	s.logger.Info("project cloned", "skeleton_id", skeleton.ID, "target", target.Ref().String(), "name", name)
	s.dispatch(ctx, domain.NewSetupTask(target.Ref(), &skeletonRef))
	return target, nil
}

// Update applies the supplied fields to an existing project.
func (s *Service) Update(ctx context.Context, id int, fields domain.ProjectFields) (*domain.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	fields.Apply(project)
	project.UpdatedAt = s.now()

	if err := s.store.UpdateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.logger.Info("project updated", "project_id", project.ID, "fields", fields.Supplied())
	return project, nil
}

// Destroy deletes an existing project.
func (s *Service) Destroy(ctx context.Context, id int) error {
	if _, err := s.store.GetProject(ctx, id); err != nil {
		return fmt.Errorf("get project: %w", err)
	}

	if err := s.store.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	s.logger.Info("project deleted", "project_id", id)
	return nil
}

// Variables returns the variables attached to an existing project.
func (s *Service) Variables(ctx context.Context, id int) ([]domain.Variable, error) {
	if _, err := s.store.GetProject(ctx, id); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	vars, err := s.store.ListVariables(ctx, domain.KindProject, id)
	if err != nil {
		return nil, fmt.Errorf("list variables: %w", err)
	}
	return vars, nil
}

// Template returns a single deploy template.
func (s *Service) Template(ctx context.Context, id int) (*domain.DeployTemplate, error) {
	template, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return template, nil
}

// CreateGroup persists a new project group.
func (s *Service) CreateGroup(ctx context.Context, name string, order int) (*domain.ProjectGroup, error) {
	group := &domain.ProjectGroup{Name: name, Order: order, CreatedAt: s.now()}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	s.logger.Info("group created", "group_id", group.ID, "name", name)
	return group, nil
}

// dispatch hands a task to the queue. Enqueue failures are logged only.
func (s *Service) dispatch(ctx context.Context, task domain.SetupTask) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Error("failed to enqueue setup task", "task_id", task.ID, "target", task.Target.String(), "error", err)
		return
	}
	s.logger.Debug("setup task enqueued", "task_id", task.ID, "target", task.Target.String())
}
