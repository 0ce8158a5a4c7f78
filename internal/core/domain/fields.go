package domain

// =============================================================================
// Field Sets
// =============================================================================

// ProjectFields is the allow-listed set of project attributes accepted by
// update. A nil field was not supplied and leaves the project untouched.
type ProjectFields struct {
	Name             *string
	Repository       *string
	Branch           *string
	GroupID          *int
	KeyID            *int
	BuildsToKeep     *int
	URL              *string
	BuildURL         *string
	AllowOtherBranch *bool
	NeedApprove      *bool
}

// CreateProjectFields is the field set accepted by create: the update set
// plus the optional template used as the setup skeleton.
type CreateProjectFields struct {
	ProjectFields
	TemplateID *int
}

// CloneFields is the field set accepted by clone.
type CloneFields struct {
	Name string
	Kind CloneKind
}

// Apply copies every supplied field onto p.
func (f ProjectFields) Apply(p *Project) {
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Repository != nil {
		p.Repository = *f.Repository
	}
	if f.Branch != nil {
		p.Branch = *f.Branch
	}
	if f.GroupID != nil {
		p.GroupID = *f.GroupID
	}
	if f.KeyID != nil {
		p.KeyID = *f.KeyID
	}
	if f.BuildsToKeep != nil {
		p.BuildsToKeep = *f.BuildsToKeep
	}
	if f.URL != nil {
		p.URL = *f.URL
	}
	if f.BuildURL != nil {
		p.BuildURL = *f.BuildURL
	}
	if f.AllowOtherBranch != nil {
		p.AllowOtherBranch = *f.AllowOtherBranch
	}
	if f.NeedApprove != nil {
		p.NeedApprove = *f.NeedApprove
	}
}

// Supplied returns the wire names of the fields that were supplied, in
// declaration order.
func (f ProjectFields) Supplied() []string {
	var names []string
	add := func(set bool, name string) {
		if set {
			names = append(names, name)
		}
	}
	add(f.Name != nil, "name")
	add(f.Repository != nil, "repository")
	add(f.Branch != nil, "branch")
	add(f.GroupID != nil, "group_id")
	add(f.KeyID != nil, "key_id")
	add(f.BuildsToKeep != nil, "builds_to_keep")
	add(f.URL != nil, "url")
	add(f.BuildURL != nil, "build_url")
	add(f.AllowOtherBranch != nil, "allow_other_branch")
	add(f.NeedApprove != nil, "need_approve")
	return names
}

// Supplied returns the wire names of the supplied create fields.
func (f CreateProjectFields) Supplied() []string {
	names := f.ProjectFields.Supplied()
	if f.TemplateID != nil {
		names = append(names, "template_id")
	}
	return names
}
