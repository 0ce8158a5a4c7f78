// Package workers runs background work for projects and templates.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artpar/shipyard/internal/core/domain"
	"github.com/artpar/shipyard/internal/shell/store"
)

// ProjectSetup provisions a newly created project or template from its skeleton.
type ProjectSetup struct {
	store  store.Store
	logger *slog.Logger
}

// NewProjectSetup creates a new setup runner.
func NewProjectSetup(s store.Store, logger *slog.Logger) *ProjectSetup {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectSetup{
		store:  s,
		logger: logger.With("component", "project_setup"),
	}
}

// Run executes a setup task. Without a skeleton there is nothing to do.
// Otherwise the skeleton's variables are copied onto the target, skipping
// names the target already has, and a project seeded from a template
// records that template.
func (p *ProjectSetup) Run(ctx context.Context, task domain.SetupTask) error {
	if task.Skeleton == nil {
		p.logger.Debug("no skeleton, nothing to set up", "task_id", task.ID, "target", task.Target.String())
		return nil
	}
	skeleton := *task.Skeleton
	target := task.Target

	exists, err := p.targetExists(ctx, target)
	if err != nil {
		return err
	}
	if !exists {
		p.logger.Warn("setup target no longer exists", "task_id", task.ID, "target", target.String())
		return nil
	}

	vars, err := p.store.ListVariables(ctx, skeleton.Kind, skeleton.ID)
	if err != nil {
		return fmt.Errorf("list skeleton variables: %w", err)
	}

	copied := 0
	err = p.store.WithTx(ctx, func(tx store.Store) error {
		now := time.Now().UTC()
		for _, v := range vars {
			clone := &domain.Variable{
				TargetKind: target.Kind,
				TargetID:   target.ID,
				Name:       v.Name,
				Value:      v.Value,
				CreatedAt:  now,
			}
			if err := tx.CreateVariable(ctx, clone); err != nil {
				if errors.Is(err, store.ErrDuplicateName) {
					continue
				}
				return err
			}
			copied++
		}

		if target.Kind == domain.KindProject && skeleton.Kind == domain.KindTemplate {
			if err := tx.SetProjectTemplate(ctx, target.ID, skeleton.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set up %s from %s: %w", target, skeleton, err)
	}

	p.logger.Info("setup applied", "task_id", task.ID, "target", target.String(), "skeleton", skeleton.String(), "variables", copied)
	return nil
}

func (p *ProjectSetup) targetExists(ctx context.Context, target domain.RecordRef) (bool, error) {
	var err error
	switch target.Kind {
	case domain.KindProject:
		_, err = p.store.GetProject(ctx, target.ID)
	case domain.KindTemplate:
		_, err = p.store.GetTemplate(ctx, target.ID)
	default:
		return false, fmt.Errorf("unknown target kind %q", target.Kind)
	}
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get setup target: %w", err)
	}
	return true, nil
}
