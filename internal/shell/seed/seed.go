// Package seed loads fixture records (groups, keys, templates) from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/artpar/shipyard/internal/core/domain"
	"github.com/artpar/shipyard/internal/shell/store"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFixture is returned when a fixture file cannot be used.
var ErrInvalidFixture = errors.New("invalid seed fixture")

// Fixture is the seed file layout.
//
//	groups:
//	  - name: Applications
//	    order: 1
//	keys:
//	  - name: deploy
//	templates:
//	  - name: laravel
//	    repository: git@github.com:acme/laravel.git
//	    variables:
//	      APP_ENV: production
type Fixture struct {
	Groups    []GroupFixture    `yaml:"groups"`
	Keys      []KeyFixture      `yaml:"keys"`
	Templates []TemplateFixture `yaml:"templates"`
}

type GroupFixture struct {
	Name  string `yaml:"name"`
	Order int    `yaml:"order"`
}

type KeyFixture struct {
	Name       string `yaml:"name"`
	PrivateKey string `yaml:"private_key"`
}

type TemplateFixture struct {
	Name       string            `yaml:"name"`
	Repository string            `yaml:"repository"`
	Branch     string            `yaml:"branch"`
	Variables  map[string]string `yaml:"variables"`
}

// Parse decodes a fixture and checks that every record is named.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
	}

	for i, g := range f.Groups {
		if strings.TrimSpace(g.Name) == "" {
			return nil, fmt.Errorf("%w: groups[%d] has no name", ErrInvalidFixture, i)
		}
	}
	for i, k := range f.Keys {
		if strings.TrimSpace(k.Name) == "" {
			return nil, fmt.Errorf("%w: keys[%d] has no name", ErrInvalidFixture, i)
		}
	}
	for i, t := range f.Templates {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("%w: templates[%d] has no name", ErrInvalidFixture, i)
		}
	}
	return &f, nil
}

// LoadFile reads and parses a fixture file.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// KeyCreator stores a deployment key, generating a pair when privateKeyPEM is blank.
type KeyCreator interface {
	Create(ctx context.Context, name, privateKeyPEM string) (*domain.Key, error)
}

// Result counts the records a seed run created.
type Result struct {
	Groups    int
	Keys      int
	Templates int
	Variables int
}

// Seeder writes fixtures into the store. Records whose name already exists
// are left alone.
type Seeder struct {
	store  store.Store
	keys   KeyCreator
	logger *slog.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(s store.Store, keys KeyCreator, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		store:  s,
		keys:   keys,
		logger: logger.With("component", "seed"),
	}
}

// Apply creates the fixture's missing records.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Result, error) {
	var res Result
	now := time.Now().UTC()

	for _, g := range f.Groups {
		_, err := s.store.GetGroupByName(ctx, g.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return res, err
		}
		if err := s.store.CreateGroup(ctx, &domain.ProjectGroup{Name: g.Name, Order: g.Order, CreatedAt: now}); err != nil {
			return res, err
		}
		res.Groups++
	}

	for _, k := range f.Keys {
		_, err := s.store.GetKeyByName(ctx, k.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return res, err
		}
		if _, err := s.keys.Create(ctx, k.Name, k.PrivateKey); err != nil {
			return res, fmt.Errorf("seed key %s: %w", k.Name, err)
		}
		res.Keys++
	}

	for _, t := range f.Templates {
		_, err := s.store.GetTemplateByName(ctx, t.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return res, err
		}

		vars := 0
		err = s.store.WithTx(ctx, func(tx store.Store) error {
			template := domain.NewDeployTemplate(t.Name, now)
			template.Repository = t.Repository
			template.Branch = t.Branch
			if err := tx.CreateTemplate(ctx, template); err != nil {
				return err
			}
			for name, value := range t.Variables {
				v := &domain.Variable{
					TargetKind: domain.KindTemplate,
					TargetID:   template.ID,
					Name:       name,
					Value:      value,
					CreatedAt:  now,
				}
				if err := tx.CreateVariable(ctx, v); err != nil {
					return err
				}
				vars++
			}
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("seed template %s: %w", t.Name, err)
		}
		res.Templates++
		res.Variables += vars
	}

	s.logger.Info("seed applied", "groups", res.Groups, "keys", res.Keys, "templates", res.Templates, "variables", res.Variables)
	return res, nil
}
