package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

// =============================================================================
// Project Creation Tests
// =============================================================================

func TestNewProject_AppliesDefaults(t *testing.T) {
	now := time.Now().UTC()
	p := NewProject(ProjectFields{Name: strPtr("api")}, now)

	assert.Equal(t, "api", p.Name)
	assert.Equal(t, DefaultBranch, p.Branch)
	assert.Equal(t, DefaultBuildsToKeep, p.BuildsToKeep)
	assert.Nil(t, p.TemplateID)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now, p.UpdatedAt)
}

func TestNewProject_EmptyBranchFallsBack(t *testing.T) {
	p := NewProject(ProjectFields{Branch: strPtr(""), BuildsToKeep: intPtr(0)}, time.Now())

	assert.Equal(t, DefaultBranch, p.Branch)
	assert.Equal(t, DefaultBuildsToKeep, p.BuildsToKeep)
}

func TestNewProject_AllFields(t *testing.T) {
	fields := ProjectFields{
		Name:             strPtr("web"),
		Repository:       strPtr("git@github.com:acme/web.git"),
		Branch:           strPtr("main"),
		GroupID:          intPtr(2),
		KeyID:            intPtr(3),
		BuildsToKeep:     intPtr(5),
		URL:              strPtr("https://web.example.com"),
		BuildURL:         strPtr("https://ci.example.com/web"),
		AllowOtherBranch: boolPtr(true),
		NeedApprove:      boolPtr(true),
	}

	p := NewProject(fields, time.Now())

	assert.Equal(t, "web", p.Name)
	assert.Equal(t, "git@github.com:acme/web.git", p.Repository)
	assert.Equal(t, "main", p.Branch)
	assert.Equal(t, 2, p.GroupID)
	assert.Equal(t, 3, p.KeyID)
	assert.Equal(t, 5, p.BuildsToKeep)
	assert.Equal(t, "https://web.example.com", p.URL)
	assert.Equal(t, "https://ci.example.com/web", p.BuildURL)
	assert.True(t, p.AllowOtherBranch)
	assert.True(t, p.NeedApprove)
}

// =============================================================================
// Field Set Tests
// =============================================================================

func TestProjectFields_ApplyOnlySupplied(t *testing.T) {
	p := &Project{Name: "old", Repository: "git@host:old.git", Branch: "dev", NeedApprove: true}

	ProjectFields{Name: strPtr("new"), NeedApprove: boolPtr(false)}.Apply(p)

	assert.Equal(t, "new", p.Name)
	assert.Equal(t, "git@host:old.git", p.Repository)
	assert.Equal(t, "dev", p.Branch)
	assert.False(t, p.NeedApprove)
}

func TestProjectFields_Supplied(t *testing.T) {
	f := ProjectFields{Name: strPtr("x"), KeyID: intPtr(1), NeedApprove: boolPtr(false)}
	assert.Equal(t, []string{"name", "key_id", "need_approve"}, f.Supplied())

	assert.Empty(t, ProjectFields{}.Supplied())
}

func TestCreateProjectFields_SuppliedIncludesTemplate(t *testing.T) {
	f := CreateProjectFields{
		ProjectFields: ProjectFields{Name: strPtr("x")},
		TemplateID:    intPtr(5),
	}
	assert.Equal(t, []string{"name", "template_id"}, f.Supplied())
}

// =============================================================================
// Clone Tests
// =============================================================================

func TestParseCloneKind(t *testing.T) {
	testCases := []struct {
		input    string
		expected CloneKind
		wantErr  bool
	}{
		{"project", CloneAsProject, false},
		{"template", CloneAsTemplate, false},
		{"", CloneAsTemplate, true},
		{"Project", CloneAsTemplate, true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			kind, err := ParseCloneKind(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrCloneKindInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, kind)
			assert.Equal(t, tc.input, kind.String())
		})
	}
}

func TestCloneName(t *testing.T) {
	assert.Equal(t, "api_Clone", CloneName("api", ""))
	assert.Equal(t, "api_Clone", CloneName("api", "   "))
	assert.Equal(t, "copy", CloneName("api", "copy"))
}

func TestCloneTarget_Redirects(t *testing.T) {
	var target CloneTarget = &Project{ID: 7, Name: "p"}
	assert.Equal(t, Redirect{Route: RouteProject, ID: 7, Path: "/projects/7"}, target.Redirect())
	assert.Equal(t, RecordRef{Kind: KindProject, ID: 7, Name: "p"}, target.Ref())

	target = &DeployTemplate{ID: 9, Name: "t"}
	assert.Equal(t, Redirect{Route: RouteTemplate, ID: 9, Path: "/templates/9"}, target.Redirect())
	assert.Equal(t, RecordRef{Kind: KindTemplate, ID: 9, Name: "t"}, target.Ref())
}

func TestNewSetupTask(t *testing.T) {
	target := RecordRef{Kind: KindProject, ID: 1, Name: "p"}

	task := NewSetupTask(target, nil)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, target, task.Target)
	assert.Nil(t, task.Skeleton)
	assert.False(t, task.CreatedAt.IsZero())

	other := NewSetupTask(target, &RecordRef{Kind: KindTemplate, ID: 2})
	assert.NotEqual(t, task.ID, other.ID)
	require.NotNil(t, other.Skeleton)
	assert.Equal(t, "template:2", other.Skeleton.String())
}

// =============================================================================
// Pagination Tests
// =============================================================================

func TestNewPageRequest(t *testing.T) {
	testCases := []struct {
		name            string
		page, perPage   int
		expectedPage    int
		expectedPerPage int
		expectedOffset  int
	}{
		{"defaults", 0, 0, 1, 10, 0},
		{"second page", 2, 10, 2, 10, 10},
		{"negative page", -3, 5, 1, 5, 0},
		{"capped", 1, 500, 1, MaxPerPage, 0},
		{"third page of five", 3, 5, 3, 5, 10},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := NewPageRequest(tc.page, tc.perPage, 10)
			assert.Equal(t, tc.expectedPage, req.Page)
			assert.Equal(t, tc.expectedPerPage, req.PerPage)
			assert.Equal(t, tc.expectedOffset, req.Offset())
		})
	}
}

func TestNewPage_LastPage(t *testing.T) {
	req := NewPageRequest(1, 10, 10)

	empty := NewPage[int](nil, 0, req)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 1, empty.LastPage)

	full := NewPage([]int{1, 2}, 21, req)
	assert.Equal(t, 3, full.LastPage)
	assert.Equal(t, 21, full.Total)
	assert.Equal(t, 1, full.CurrentPage)
}
