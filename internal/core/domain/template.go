package domain

import (
	"fmt"
	"time"
)

// DeployTemplate is a reusable configuration skeleton used to seed new projects.
// It carries the project shape without the deployment runtime fields.
type DeployTemplate struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Repository string    `json:"repository"`
	Branch     string    `json:"branch"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewDeployTemplate builds an unsaved template carrying only a name.
func NewDeployTemplate(name string, now time.Time) *DeployTemplate {
	return &DeployTemplate{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Ref returns a reference to the template.
func (t *DeployTemplate) Ref() RecordRef {
	return RecordRef{Kind: KindTemplate, ID: t.ID, Name: t.Name}
}

// Redirect returns the named route that shows the template.
func (t *DeployTemplate) Redirect() Redirect {
	return Redirect{
		Route: RouteTemplate,
		ID:    t.ID,
		Path:  fmt.Sprintf("/templates/%d", t.ID),
	}
}

func (*DeployTemplate) cloneTarget() {}
