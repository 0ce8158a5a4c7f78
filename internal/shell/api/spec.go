package api

import (
	"net/http"

	"github.com/artpar/shipyard/internal/core/domain"
	"github.com/artpar/shipyard/internal/shell/api/openapi"
	"github.com/artpar/shipyard/internal/shell/projects"
)

// newSpecGenerator describes every route served by Routes.
func newSpecGenerator() *openapi.Generator {
	g := openapi.NewGenerator(
		openapi.WithTitle("Shipyard API"),
		openapi.WithDescription("Project administration: projects, templates, keys and groups"),
		openapi.WithErrorModel(ErrorResponse{}),
	)

	g.Register(
		openapi.Operation{Method: http.MethodGet, Path: "/health", ID: "health", Summary: "Liveness probe", Tag: "Health", Response: HealthResponse{}},
		openapi.Operation{Method: http.MethodGet, Path: "/ready", ID: "ready", Summary: "Readiness probe", Tag: "Health", Response: ReadyResponse{}},

		openapi.Operation{Method: http.MethodGet, Path: "/projects", ID: "listProjects", Summary: "List projects with keys, groups and templates", Tag: "Projects", Query: []string{"page", "per_page"}, Response: projects.ListResult{}},
		openapi.Operation{Method: http.MethodPost, Path: "/projects", ID: "createProject", Summary: "Create a project", Tag: "Projects", Request: CreateProjectRequest{}, Response: domain.Project{}, Status: http.StatusCreated},
		openapi.Operation{Method: http.MethodGet, Path: "/projects/{id}", ID: "getProject", Summary: "Get a project", Tag: "Projects", Response: domain.Project{}},
		openapi.Operation{Method: http.MethodPut, Path: "/projects/{id}", ID: "replaceProject", Summary: "Update a project", Tag: "Projects", Request: UpdateProjectRequest{}, Response: domain.Project{}},
		openapi.Operation{Method: http.MethodPatch, Path: "/projects/{id}", ID: "updateProject", Summary: "Update a project", Tag: "Projects", Request: UpdateProjectRequest{}, Response: domain.Project{}},
		openapi.Operation{Method: http.MethodDelete, Path: "/projects/{id}", ID: "deleteProject", Summary: "Delete a project", Tag: "Projects", Response: SuccessResponse{}},
		openapi.Operation{Method: http.MethodPost, Path: "/projects/{id}/clone", ID: "cloneProject", Summary: "Clone a project as a project or template", Tag: "Projects", Request: CloneProjectRequest{}, Response: domain.Redirect{}, Status: http.StatusCreated},
		openapi.Operation{Method: http.MethodGet, Path: "/projects/{id}/variables", ID: "listProjectVariables", Summary: "List project variables", Tag: "Projects", Response: []domain.Variable{}},

		openapi.Operation{Method: http.MethodGet, Path: "/templates/{id}", ID: "getTemplate", Summary: "Get a deploy template", Tag: "Templates", Response: domain.DeployTemplate{}},
		openapi.Operation{Method: http.MethodPost, Path: "/keys", ID: "createKey", Summary: "Create or import a deployment key", Tag: "Keys", Request: CreateKeyRequest{}, Response: domain.Key{}, Status: http.StatusCreated},
		openapi.Operation{Method: http.MethodPost, Path: "/groups", ID: "createGroup", Summary: "Create a project group", Tag: "Groups", Request: CreateGroupRequest{}, Response: domain.ProjectGroup{}, Status: http.StatusCreated},
	)

	return g
}
