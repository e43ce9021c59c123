package gitlab

// User identifies an account on a GitLab instance.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Group describes a group or subgroup.
type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	FullPath    string `json:"full_path"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	ParentID    int64  `json:"parent_id"`
}

// Namespace describes the namespace a project belongs to.
type Namespace struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	FullPath string `json:"full_path"`
}

// Project describes a project including the repository flags the
// replication planner relies on.
type Project struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Path              string    `json:"path"`
	PathWithNamespace string    `json:"path_with_namespace"`
	Description       string    `json:"description"`
	DefaultBranch     string    `json:"default_branch"`
	HTTPURLToRepo     string    `json:"http_url_to_repo"`
	AvatarURL         string    `json:"avatar_url"`
	Archived          bool      `json:"archived"`
	EmptyRepo         bool      `json:"empty_repo"`
	Namespace         Namespace `json:"namespace"`
}

// Label describes a project label.
type Label struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
	Priority    *int   `json:"priority"`
}

// Issue describes a project issue.
type Issue struct {
	ID           int64    `json:"id"`
	IID          int64    `json:"iid"`
	ProjectID    int64    `json:"project_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	State        string   `json:"state"`
	IssueType    string   `json:"issue_type"`
	Confidential bool     `json:"confidential"`
	CreatedAt    string   `json:"created_at"`
	DueDate      string   `json:"due_date"`
	Labels       []string `json:"labels"`
	Author       *User    `json:"author"`
}

// Note describes a comment on an issue or merge request.
type Note struct {
	ID           int64  `json:"id"`
	Body         string `json:"body"`
	System       bool   `json:"system"`
	Confidential bool   `json:"confidential"`
	CreatedAt    string `json:"created_at"`
	Author       *User  `json:"author"`
}

// MergeRequest describes a project merge request.
type MergeRequest struct {
	ID           int64    `json:"id"`
	IID          int64    `json:"iid"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	State        string   `json:"state"`
	SourceBranch string   `json:"source_branch"`
	TargetBranch string   `json:"target_branch"`
	Labels       []string `json:"labels"`
	Author       *User    `json:"author"`
}

// Variable describes a CI/CD variable.
type Variable struct {
	Key              string `json:"key"`
	Value            string `json:"value"`
	VariableType     string `json:"variable_type"`
	EnvironmentScope string `json:"environment_scope"`
	Masked           bool   `json:"masked"`
	Protected        bool   `json:"protected"`
}

// Milestone describes a project milestone.
type Milestone struct {
	ID          int64  `json:"id"`
	IID         int64  `json:"iid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"`
	DueDate     string `json:"due_date"`
	StartDate   string `json:"start_date"`
}

// WikiPage describes a wiki page without its content.
type WikiPage struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Format string `json:"format"`
}

// AccessLevel describes a single access grant on a protected ref.
type AccessLevel struct {
	AccessLevel int64 `json:"access_level"`
}

// ProtectedBranch describes a branch protection rule.
type ProtectedBranch struct {
	ID                    int64         `json:"id"`
	Name                  string        `json:"name"`
	PushAccessLevels      []AccessLevel `json:"push_access_levels"`
	MergeAccessLevels     []AccessLevel `json:"merge_access_levels"`
	UnprotectAccessLevels []AccessLevel `json:"unprotect_access_levels"`
	AllowForcePush        bool          `json:"allow_force_push"`
}

// ProtectedTag describes a tag protection rule.
type ProtectedTag struct {
	Name               string        `json:"name"`
	CreateAccessLevels []AccessLevel `json:"create_access_levels"`
}

// Pipeline describes a CI pipeline.
type Pipeline struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
	Ref    string `json:"ref"`
}

// GroupCreatePayload carries the fields sent when creating a group.
// A zero ParentID places the group at the instance root.
type GroupCreatePayload struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	ParentID    int64  `json:"parent_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProjectCreatePayload carries the fields sent when creating a project shell.
type ProjectCreatePayload struct {
	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	NamespaceID int64  `json:"namespace_id,omitempty"`
}

// ProjectUpdatePayload carries the mutable project fields set after creation.
type ProjectUpdatePayload struct {
	Description string `json:"description,omitempty"`
}

// LabelCreatePayload carries the fields sent when creating a label.
type LabelCreatePayload struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
	Priority    *int   `json:"priority,omitempty"`
}

// IssueCreatePayload carries the fields sent when creating an issue.
type IssueCreatePayload struct {
	Title        string   `json:"title"`
	IID          int64    `json:"iid,omitempty"`
	Description  string   `json:"description,omitempty"`
	IssueType    string   `json:"issue_type,omitempty"`
	Confidential bool     `json:"confidential"`
	CreatedAt    string   `json:"created_at,omitempty"`
	DueDate      string   `json:"due_date,omitempty"`
	Labels       []string `json:"labels,omitempty"`
}

// NoteCreatePayload carries the fields sent when creating a note.
type NoteCreatePayload struct {
	Body         string `json:"body"`
	Confidential bool   `json:"confidential"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// MergeRequestCreatePayload carries the fields sent when creating a merge request.
type MergeRequestCreatePayload struct {
	SourceBranch string   `json:"source_branch"`
	TargetBranch string   `json:"target_branch"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Labels       []string `json:"labels,omitempty"`
}

// VariableCreatePayload carries the fields sent when creating a CI/CD variable.
type VariableCreatePayload struct {
	Key              string `json:"key"`
	Value            string `json:"value"`
	VariableType     string `json:"variable_type"`
	EnvironmentScope string `json:"environment_scope"`
	Masked           bool   `json:"masked"`
	Protected        bool   `json:"protected"`
}

// MilestoneCreatePayload carries the fields sent when creating a milestone.
type MilestoneCreatePayload struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
}

// ProtectedBranchCreatePayload carries the fields sent when protecting a branch.
// Access levels default to zero, meaning no role is granted.
type ProtectedBranchCreatePayload struct {
	Name                 string `json:"name"`
	PushAccessLevel      int64  `json:"push_access_level"`
	MergeAccessLevel     int64  `json:"merge_access_level"`
	UnprotectAccessLevel int64  `json:"unprotect_access_level"`
	AllowForcePush       bool   `json:"allow_force_push"`
}

// ProtectedTagCreatePayload carries the fields sent when protecting a tag.
type ProtectedTagCreatePayload struct {
	Name              string `json:"name"`
	CreateAccessLevel int64  `json:"create_access_level"`
}
