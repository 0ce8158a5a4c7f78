package api

import "github.com/artpar/shipyard/internal/core/domain"

// =============================================================================
// Request Types
// =============================================================================

// CreateProjectRequest is the request body for creating a project.
// Fields outside this set are ignored.
type CreateProjectRequest struct {
	Name             *string `json:"name" validate:"required,min=1,max=255"`
	Repository       *string `json:"repository" validate:"required,repository"`
	Branch           *string `json:"branch" validate:"omitempty,max=255"`
	GroupID          *int    `json:"group_id" validate:"required,gt=0"`
	KeyID            *int    `json:"key_id" validate:"required,gt=0"`
	BuildsToKeep     *int    `json:"builds_to_keep" validate:"omitempty,min=1,max=20"`
	URL              *string `json:"url" validate:"omitempty,url"`
	BuildURL         *string `json:"build_url" validate:"omitempty,url"`
	TemplateID       *int    `json:"template_id" validate:"omitempty,gt=0"`
	AllowOtherBranch *bool   `json:"allow_other_branch"`
	NeedApprove      *bool   `json:"need_approve"`
}

// Fields converts the request to the create field set.
func (r CreateProjectRequest) Fields() domain.CreateProjectFields {
	return domain.CreateProjectFields{
		ProjectFields: domain.ProjectFields{
			Name:             r.Name,
			Repository:       r.Repository,
			Branch:           r.Branch,
			GroupID:          r.GroupID,
			KeyID:            r.KeyID,
			BuildsToKeep:     r.BuildsToKeep,
			URL:              r.URL,
			BuildURL:         r.BuildURL,
			AllowOtherBranch: r.AllowOtherBranch,
			NeedApprove:      r.NeedApprove,
		},
		TemplateID: r.TemplateID,
	}
}

// UpdateProjectRequest is the request body for updating a project.
// Omitted fields keep their current value; template_id is not accepted.
type UpdateProjectRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=255"`
	Repository       *string `json:"repository" validate:"omitempty,repository"`
	Branch           *string `json:"branch" validate:"omitempty,min=1,max=255"`
	GroupID          *int    `json:"group_id" validate:"omitempty,gt=0"`
	KeyID            *int    `json:"key_id" validate:"omitempty,gt=0"`
	BuildsToKeep     *int    `json:"builds_to_keep" validate:"omitempty,min=1,max=20"`
	URL              *string `json:"url" validate:"omitempty,url"`
	BuildURL         *string `json:"build_url" validate:"omitempty,url"`
	AllowOtherBranch *bool   `json:"allow_other_branch"`
	NeedApprove      *bool   `json:"need_approve"`
}

// Fields converts the request to the update field set.
func (r UpdateProjectRequest) Fields() domain.ProjectFields {
	return domain.ProjectFields{
		Name:             r.Name,
		Repository:       r.Repository,
		Branch:           r.Branch,
		GroupID:          r.GroupID,
		KeyID:            r.KeyID,
		BuildsToKeep:     r.BuildsToKeep,
		URL:              r.URL,
		BuildURL:         r.BuildURL,
		AllowOtherBranch: r.AllowOtherBranch,
		NeedApprove:      r.NeedApprove,
	}
}

// CloneProjectRequest is the request body for cloning a project.
type CloneProjectRequest struct {
	Name string `json:"name" validate:"omitempty,max=255"`
	Type string `json:"type" validate:"required,oneof=project template"`
}

// CreateKeyRequest is the request body for creating a deployment key.
// A blank private_key generates a new pair.
type CreateKeyRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	PrivateKey string `json:"private_key"`
}

// CreateGroupRequest is the request body for creating a project group.
type CreateGroupRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Order int    `json:"order" validate:"gte=0"`
}

// =============================================================================
// Response Types
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// SuccessResponse acknowledges an operation without a body.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
