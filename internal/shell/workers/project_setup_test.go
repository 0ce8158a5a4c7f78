package workers

import (
	"context"
	"testing"
	"time"

	"github.com/artpar/shipyard/internal/core/domain"
	"github.com/artpar/shipyard/internal/shell/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createProject(t *testing.T, s store.Store, name string) *domain.Project {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	group := &domain.ProjectGroup{Name: "g-" + name, CreatedAt: now}
	require.NoError(t, s.CreateGroup(ctx, group))
	key := &domain.Key{Name: "k-" + name, CreatedAt: now}
	require.NoError(t, s.CreateKey(ctx, key))

	project := domain.NewProject(domain.ProjectFields{Name: &name, GroupID: &group.ID, KeyID: &key.ID}, now)
	require.NoError(t, s.CreateProject(ctx, project))
	return project
}

func addVariable(t *testing.T, s store.Store, ref domain.RecordRef, name, value string) {
	t.Helper()
	require.NoError(t, s.CreateVariable(context.Background(), &domain.Variable{
		TargetKind: ref.Kind, TargetID: ref.ID, Name: name, Value: value, CreatedAt: time.Now().UTC(),
	}))
}

func TestProjectSetup_NoSkeletonIsNoop(t *testing.T) {
	s := testStore(t)
	project := createProject(t, s, "api")

	err := NewProjectSetup(s, nil).Run(context.Background(), domain.NewSetupTask(project.Ref(), nil))
	require.NoError(t, err)

	vars, err := s.ListVariables(context.Background(), domain.KindProject, project.ID)
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestProjectSetup_FromTemplate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tmpl := domain.NewDeployTemplate("laravel", time.Now().UTC())
	require.NoError(t, s.CreateTemplate(ctx, tmpl))
	addVariable(t, s, tmpl.Ref(), "APP_ENV", "production")
	addVariable(t, s, tmpl.Ref(), "CACHE", "redis")

	project := createProject(t, s, "api")
	addVariable(t, s, project.Ref(), "CACHE", "memcached")

	skeleton := tmpl.Ref()
	err := NewProjectSetup(s, nil).Run(ctx, domain.NewSetupTask(project.Ref(), &skeleton))
	require.NoError(t, err)

	vars, err := s.ListVariables(ctx, domain.KindProject, project.ID)
	require.NoError(t, err)
	require.Len(t, vars, 2)
	assert.Equal(t, "APP_ENV", vars[0].Name)
	assert.Equal(t, "production", vars[0].Value)
	assert.Equal(t, "CACHE", vars[1].Name)
	assert.Equal(t, "memcached", vars[1].Value)

	stored, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TemplateID)
	assert.Equal(t, tmpl.ID, *stored.TemplateID)
}

func TestProjectSetup_CloneIntoTemplate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	project := createProject(t, s, "api")
	addVariable(t, s, project.Ref(), "PORT", "8080")

	tmpl := domain.NewDeployTemplate("api_Clone", time.Now().UTC())
	require.NoError(t, s.CreateTemplate(ctx, tmpl))

	skeleton := project.Ref()
	err := NewProjectSetup(s, nil).Run(ctx, domain.NewSetupTask(tmpl.Ref(), &skeleton))
	require.NoError(t, err)

	vars, err := s.ListVariables(ctx, domain.KindTemplate, tmpl.ID)
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Equal(t, "PORT", vars[0].Name)
}

func TestProjectSetup_CloneIntoProjectKeepsTemplateUnset(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	source := createProject(t, s, "api")
	clone := createProject(t, s, "api_Clone")

	skeleton := source.Ref()
	require.NoError(t, NewProjectSetup(s, nil).Run(ctx, domain.NewSetupTask(clone.Ref(), &skeleton)))

	stored, err := s.GetProject(ctx, clone.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.TemplateID)
}

func TestProjectSetup_MissingTargetIsSkipped(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tmpl := domain.NewDeployTemplate("laravel", time.Now().UTC())
	require.NoError(t, s.CreateTemplate(ctx, tmpl))
	addVariable(t, s, tmpl.Ref(), "APP_ENV", "production")

	skeleton := tmpl.Ref()
	target := domain.RecordRef{Kind: domain.KindProject, ID: 404}
	require.NoError(t, NewProjectSetup(s, nil).Run(ctx, domain.NewSetupTask(target, &skeleton)))

	vars, err := s.ListVariables(ctx, domain.KindProject, 404)
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestProjectSetup_UnknownTargetKind(t *testing.T) {
	s := testStore(t)
	skeleton := domain.RecordRef{Kind: domain.KindTemplate, ID: 1}
	target := domain.RecordRef{Kind: "build", ID: 1}

	err := NewProjectSetup(s, nil).Run(context.Background(), domain.NewSetupTask(target, &skeleton))
	assert.Error(t, err)
}

func TestProjectSetup_ThroughQueue(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	tmpl := domain.NewDeployTemplate("laravel", time.Now().UTC())
	require.NoError(t, s.CreateTemplate(ctx, tmpl))
	addVariable(t, s, tmpl.Ref(), "APP_ENV", "production")
	project := createProject(t, s, "api")

	q := NewSetupQueue(NewProjectSetup(s, nil).Run, SetupQueueConfig{Workers: 1, QueueSize: 4}, nil)
	q.Start()
	skeleton := tmpl.Ref()
	require.NoError(t, q.Enqueue(ctx, domain.NewSetupTask(project.Ref(), &skeleton)))
	q.Stop()

	vars, err := s.ListVariables(ctx, domain.KindProject, project.ID)
	require.NoError(t, err)
	assert.Len(t, vars, 1)
}
