package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Errors
// =============================================================================

var (
	ErrCloneKindInvalid = errors.New("clone type must be project or template")
)

// =============================================================================
// Record Kinds
// =============================================================================

// RecordKind names the record table a reference points at.
type RecordKind string

const (
	KindProject  RecordKind = "project"
	KindTemplate RecordKind = "template"
)

// IsValid checks if the record kind is known.
func (k RecordKind) IsValid() bool {
	return k == KindProject || k == KindTemplate
}

// RecordRef identifies a project or a template.
type RecordRef struct {
	Kind RecordKind `json:"kind"`
	ID   int        `json:"id"`
	Name string     `json:"name"`
}

func (r RecordRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// =============================================================================
// Clone Kind
// =============================================================================

// CloneKind selects which record a clone produces.
type CloneKind int

const (
	CloneAsTemplate CloneKind = iota
	CloneAsProject
)

// ParseCloneKind converts the wire value of a clone type.
func ParseCloneKind(s string) (CloneKind, error) {
	switch RecordKind(s) {
	case KindProject:
		return CloneAsProject, nil
	case KindTemplate:
		return CloneAsTemplate, nil
	default:
		return CloneAsTemplate, ErrCloneKindInvalid
	}
}

func (k CloneKind) String() string {
	if k == CloneAsProject {
		return string(KindProject)
	}
	return string(KindTemplate)
}

// CloneName returns the name for a clone of skeleton. A blank requested
// name becomes "<skeleton>_Clone".
func CloneName(skeleton, requested string) string {
	if strings.TrimSpace(requested) == "" {
		return skeleton + "_Clone"
	}
	return requested
}

// =============================================================================
// Clone Target
// =============================================================================

// Named routes used for redirects after a clone.
const (
	RouteProject  = "projects"
	RouteTemplate = "admin.templates.show"
)

// Redirect names the route a caller should follow after a clone.
type Redirect struct {
	Route string `json:"route"`
	ID    int    `json:"id"`
	Path  string `json:"path"`
}

// CloneTarget is the record produced by a clone: a *Project or a *DeployTemplate.
type CloneTarget interface {
	Ref() RecordRef
	Redirect() Redirect
	cloneTarget()
}

// =============================================================================
// Setup Task
// =============================================================================

// SetupTask asks a worker to provision a newly created project or template
// from an optional skeleton. A nil Skeleton means there is nothing to copy.
type SetupTask struct {
	ID        string     `json:"id"`
	Target    RecordRef  `json:"target"`
	Skeleton  *RecordRef `json:"skeleton"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewSetupTask creates a setup task for target.
func NewSetupTask(target RecordRef, skeleton *RecordRef) SetupTask {
	return SetupTask{
		ID:        "task_" + uuid.New().String()[:8],
		Target:    target,
		Skeleton:  skeleton,
		CreatedAt: time.Now().UTC(),
	}
}
