package migrate

import (
	"context"
	"fmt"

	"github.com/temirov/albatross/internal/gitlab"
)

const (
	resolveSourceGroupErrorTemplateConstant  = "unable to resolve source group %d: %w"
	listSourceProjectsErrorTemplateConstant  = "unable to list projects of source group %s: %w"
	listSourceSubgroupsErrorTemplateConstant = "unable to list subgroups of source group %s: %w"
)

// GroupNode is one source group with its direct projects and subgroups.
// Empty marks groups holding no projects and no non-empty subgroups.
type GroupNode struct {
	ID          int64
	Name        string
	Path        string
	FullPath    string
	Description string
	Projects    []ProjectRef
	Subgroups   []*GroupNode
	Empty       bool
}

// ProjectRef identifies one source project scheduled for migration.
type ProjectRef struct {
	ID                int64
	Name              string
	Path              string
	PathWithNamespace string
	Namespace         string
	Description       string
	RepositoryURL     string
	AvatarURL         string
	Orphan            bool
	Empty             bool
	Archived          bool
}

// Planner reads the source hierarchy once and annotates it for the
// migration walk.
type Planner struct {
	source SourceClient
}

// NewPlanner constructs a Planner reading from the provided client.
func NewPlanner(source SourceClient) *Planner {
	return &Planner{source: source}
}

// Plan loads the group tree below rootGroupIdentifier and resolves
// which groups and projects carry no migratable content. Projects owned
// directly by the root group are flagged as orphans. Sibling order
// follows the source listing order throughout.
func (planner *Planner) Plan(executionContext context.Context, rootGroupIdentifier int64) (*GroupNode, error) {
	rootGroup, rootError := planner.source.FetchGroup(executionContext, rootGroupIdentifier)
	if rootError != nil {
		return nil, fmt.Errorf(resolveSourceGroupErrorTemplateConstant, rootGroupIdentifier, rootError)
	}

	rootNode := newGroupNode(rootGroup)
	pendingNodes := []*GroupNode{rootNode}
	for len(pendingNodes) > 0 {
		currentNode := pendingNodes[len(pendingNodes)-1]
		pendingNodes = pendingNodes[:len(pendingNodes)-1]

		projects, projectsError := planner.source.FetchGroupProjects(executionContext, currentNode.ID)
		if projectsError != nil {
			return nil, fmt.Errorf(listSourceProjectsErrorTemplateConstant, currentNode.FullPath, projectsError)
		}
		for _, project := range projects {
			currentNode.Projects = append(currentNode.Projects, newProjectRef(project, currentNode == rootNode))
		}

		subgroups, subgroupsError := planner.source.FetchSubgroups(executionContext, currentNode.ID)
		if subgroupsError != nil {
			return nil, fmt.Errorf(listSourceSubgroupsErrorTemplateConstant, currentNode.FullPath, subgroupsError)
		}
		for _, subgroup := range subgroups {
			currentNode.Subgroups = append(currentNode.Subgroups, newGroupNode(subgroup))
		}
		for subgroupIndex := len(currentNode.Subgroups) - 1; subgroupIndex >= 0; subgroupIndex-- {
			pendingNodes = append(pendingNodes, currentNode.Subgroups[subgroupIndex])
		}
	}

	resolveEmptiness(rootNode)

	return rootNode, nil
}

func newGroupNode(group gitlab.Group) *GroupNode {
	return &GroupNode{
		ID:          group.ID,
		Name:        group.Name,
		Path:        group.Path,
		FullPath:    group.FullPath,
		Description: group.Description,
	}
}

func newProjectRef(project gitlab.Project, orphan bool) ProjectRef {
	return ProjectRef{
		ID:                project.ID,
		Name:              project.Name,
		Path:              project.Path,
		PathWithNamespace: project.PathWithNamespace,
		Namespace:         project.Namespace.FullPath,
		Description:       project.Description,
		RepositoryURL:     project.HTTPURLToRepo,
		AvatarURL:         project.AvatarURL,
		Orphan:            orphan,
		Empty:             project.EmptyRepo,
		Archived:          project.Archived,
	}
}

// resolveEmptiness marks every group holding no projects and no
// non-empty subgroups. Children resolve before their parents.
func resolveEmptiness(rootNode *GroupNode) {
	orderedNodes := make([]*GroupNode, 0)
	pendingNodes := []*GroupNode{rootNode}
	for len(pendingNodes) > 0 {
		currentNode := pendingNodes[len(pendingNodes)-1]
		pendingNodes = pendingNodes[:len(pendingNodes)-1]
		orderedNodes = append(orderedNodes, currentNode)
		pendingNodes = append(pendingNodes, currentNode.Subgroups...)
	}

	for nodeIndex := len(orderedNodes) - 1; nodeIndex >= 0; nodeIndex-- {
		currentNode := orderedNodes[nodeIndex]
		empty := len(currentNode.Projects) == 0
		if empty {
			for _, subgroup := range currentNode.Subgroups {
				if !subgroup.Empty {
					empty = false
					break
				}
			}
		}
		currentNode.Empty = empty
	}
}
