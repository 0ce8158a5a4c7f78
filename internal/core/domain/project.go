// Package domain contains the core domain types and validation logic.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import (
	"fmt"
	"time"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultBranch is used when a project is created without a branch.
	DefaultBranch = "master"

	// DefaultBuildsToKeep is used when a project is created without builds_to_keep.
	DefaultBuildsToKeep = 10
)

// =============================================================================
// Project
// =============================================================================

// Project is a deployable unit with repository, branch and build configuration.
type Project struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	Repository       string    `json:"repository"`
	Branch           string    `json:"branch"`
	GroupID          int       `json:"group_id"`
	KeyID            int       `json:"key_id"`
	BuildsToKeep     int       `json:"builds_to_keep"`
	URL              string    `json:"url"`
	BuildURL         string    `json:"build_url"`
	TemplateID       *int      `json:"template_id"`
	AllowOtherBranch bool      `json:"allow_other_branch"`
	NeedApprove      bool      `json:"need_approve"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewProject builds an unsaved project from the supplied fields.
// Branch and BuildsToKeep fall back to their defaults when not supplied.
func NewProject(fields ProjectFields, now time.Time) *Project {
	p := &Project{
		Branch:       DefaultBranch,
		BuildsToKeep: DefaultBuildsToKeep,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	fields.Apply(p)
	if p.Branch == "" {
		p.Branch = DefaultBranch
	}
	if p.BuildsToKeep <= 0 {
		p.BuildsToKeep = DefaultBuildsToKeep
	}
	return p
}

// Ref returns a reference to the project.
func (p *Project) Ref() RecordRef {
	return RecordRef{Kind: KindProject, ID: p.ID, Name: p.Name}
}

// Redirect returns the named route that shows the project.
func (p *Project) Redirect() Redirect {
	return Redirect{
		Route: RouteProject,
		ID:    p.ID,
		Path:  fmt.Sprintf("/projects/%d", p.ID),
	}
}

func (*Project) cloneTarget() {}

// =============================================================================
// ProjectGroup
// =============================================================================

// ProjectGroup is an ordered category grouping projects for display.
type ProjectGroup struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// Key
// =============================================================================

// Key is a named deployment credential.
// PrivateKey holds either the PEM private key or, when an encryption key is
// configured, its base64 AES-256-GCM ciphertext. It is never serialized.
type Key struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	PublicKey   string    `json:"public_key"`
	Fingerprint string    `json:"fingerprint"`
	PrivateKey  string    `json:"-"`
	Encrypted   bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// =============================================================================
// Variable
// =============================================================================

// Variable is a name/value pair attached to a project or a template.
type Variable struct {
	ID         int        `json:"id"`
	TargetKind RecordKind `json:"target_type"`
	TargetID   int        `json:"target_id"`
	Name       string     `json:"name"`
	Value      string     `json:"value"`
	CreatedAt  time.Time  `json:"created_at"`
}
