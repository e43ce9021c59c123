package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	fakeAPIPrefixConstant          = "/api/v4"
	fakeUserPathConstant           = "/user"
	fakeGroupsSegmentConstant      = "groups"
	fakeProjectsSegmentConstant    = "projects"
	fakeSubgroupsSegmentConstant   = "subgroups"
	fakeIssuesSegmentConstant      = "issues"
	fakeNotFoundBodyConstant       = `{"message":"404 Not Found"}`
	fakeRepositoryURLTemplateConst = "%s/%s.git"
	fakeFirstCreatedIdentifier     = 5000
)

// fakeGitLabInstance is an in-memory GitLab API double good enough for
// the migration walk: group and project reads, escaped-path lookups,
// write endpoints that echo their payload, and a mutation log recording
// every non-GET request in call order.
type fakeGitLabInstance struct {
	mutex sync.Mutex

	username         string
	groupsByID       map[int64]map[string]any
	groupsByPath     map[string]map[string]any
	subgroupsByGroup map[int64][]map[string]any
	projectsByGroup  map[int64][]map[string]any
	projectResources map[string][]map[string]any
	projectsByPath   map[string]map[string]any

	nextIdentifier int64
	mutations      []string

	server *httptest.Server
}

func newFakeGitLabInstance(testInstance *testing.T, username string) *fakeGitLabInstance {
	instance := &fakeGitLabInstance{
		username:         username,
		groupsByID:       map[int64]map[string]any{},
		groupsByPath:     map[string]map[string]any{},
		subgroupsByGroup: map[int64][]map[string]any{},
		projectsByGroup:  map[int64][]map[string]any{},
		projectResources: map[string][]map[string]any{},
		projectsByPath:   map[string]map[string]any{},
		nextIdentifier:   fakeFirstCreatedIdentifier,
	}
	instance.server = httptest.NewServer(http.HandlerFunc(instance.handle))
	testInstance.Cleanup(instance.server.Close)

	return instance
}

func (instance *fakeGitLabInstance) URL() string {
	return instance.server.URL
}

func (instance *fakeGitLabInstance) seedGroup(group map[string]any) {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	instance.registerGroup(group)
}

func (instance *fakeGitLabInstance) seedSubgroups(groupIdentifier int64, subgroups ...map[string]any) {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	instance.subgroupsByGroup[groupIdentifier] = subgroups
	for _, subgroup := range subgroups {
		instance.registerGroup(subgroup)
	}
}

func (instance *fakeGitLabInstance) registerGroup(group map[string]any) {
	instance.groupsByID[asIdentifier(group["id"])] = group
	instance.groupsByPath[group["full_path"].(string)] = group
}

func (instance *fakeGitLabInstance) seedGroupProjects(groupIdentifier int64, projects ...map[string]any) {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	instance.projectsByGroup[groupIdentifier] = projects
}

func (instance *fakeGitLabInstance) seedProjectResource(projectIdentifier int64, resourceName string, items ...map[string]any) {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	instance.projectResources[projectResourceKey(projectIdentifier, resourceName)] = items
}

func (instance *fakeGitLabInstance) seedProject(project map[string]any) {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	instance.projectsByPath[project["path_with_namespace"].(string)] = project
}

// mutationLog returns a copy of the non-GET requests seen so far, each
// formatted as "METHOD /path".
func (instance *fakeGitLabInstance) mutationLog() []string {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	return append([]string{}, instance.mutations...)
}

func (instance *fakeGitLabInstance) handle(responseWriter http.ResponseWriter, request *http.Request) {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()

	escapedPath := strings.TrimPrefix(request.URL.EscapedPath(), fakeAPIPrefixConstant)
	if request.Method != http.MethodGet {
		instance.mutations = append(instance.mutations, request.Method+" "+escapedPath)
	}

	segments := strings.Split(strings.TrimPrefix(escapedPath, "/"), "/")

	switch request.Method {
	case http.MethodGet:
		instance.handleRead(responseWriter, escapedPath, segments)
	case http.MethodPost:
		instance.handleCreate(responseWriter, request, segments)
	case http.MethodPut:
		writeFakeJSON(responseWriter, decodeRequestBody(request))
	case http.MethodDelete:
		instance.handleDelete(responseWriter, segments)
	default:
		writeFakeNotFound(responseWriter)
	}
}

func (instance *fakeGitLabInstance) handleRead(responseWriter http.ResponseWriter, escapedPath string, segments []string) {
	switch {
	case escapedPath == fakeUserPathConstant:
		writeFakeJSON(responseWriter, map[string]any{"id": int64(1), "username": instance.username, "name": instance.username})
	case len(segments) == 2 && segments[0] == fakeGroupsSegmentConstant:
		group, exists := instance.groupsByID[parseIdentifierSegment(segments[1])]
		if !exists {
			groupFullPath, unescapeError := url.PathUnescape(segments[1])
			if unescapeError == nil {
				group, exists = instance.groupsByPath[groupFullPath]
			}
		}
		if !exists {
			writeFakeNotFound(responseWriter)
			return
		}
		writeFakeJSON(responseWriter, group)
	case len(segments) == 3 && segments[0] == fakeGroupsSegmentConstant && segments[2] == fakeSubgroupsSegmentConstant:
		writeFakeList(responseWriter, instance.subgroupsByGroup[parseIdentifierSegment(segments[1])])
	case len(segments) == 3 && segments[0] == fakeGroupsSegmentConstant && segments[2] == fakeProjectsSegmentConstant:
		writeFakeList(responseWriter, instance.projectsByGroup[parseIdentifierSegment(segments[1])])
	case len(segments) == 2 && segments[0] == fakeProjectsSegmentConstant:
		projectFullPath, unescapeError := url.PathUnescape(segments[1])
		if unescapeError != nil {
			writeFakeNotFound(responseWriter)
			return
		}
		project, exists := instance.projectsByPath[projectFullPath]
		if !exists {
			writeFakeNotFound(responseWriter)
			return
		}
		writeFakeJSON(responseWriter, project)
	case len(segments) == 3 && segments[0] == fakeProjectsSegmentConstant:
		writeFakeList(responseWriter, instance.projectResources[projectResourceKey(parseIdentifierSegment(segments[1]), segments[2])])
	case len(segments) == 5 && segments[0] == fakeProjectsSegmentConstant:
		// Issue and merge request note listings.
		writeFakeList(responseWriter, instance.projectResources[projectResourceKey(parseIdentifierSegment(segments[1]), segments[2]+"/"+segments[3]+"/"+segments[4])])
	default:
		writeFakeNotFound(responseWriter)
	}
}

func (instance *fakeGitLabInstance) handleCreate(responseWriter http.ResponseWriter, request *http.Request, segments []string) {
	payload := decodeRequestBody(request)

	if len(segments) == 1 && segments[0] == fakeProjectsSegmentConstant {
		instance.nextIdentifier++
		createdIdentifier := instance.nextIdentifier

		projectFullPath := payload["path"].(string)
		if namespace, exists := instance.groupsByID[asIdentifier(payload["namespace_id"])]; exists {
			projectFullPath = namespace["full_path"].(string) + "/" + projectFullPath
		}

		createdProject := map[string]any{
			"id":                  createdIdentifier,
			"name":                payload["name"],
			"path":                payload["path"],
			"path_with_namespace": projectFullPath,
			"http_url_to_repo":    fmt.Sprintf(fakeRepositoryURLTemplateConst, instance.server.URL, projectFullPath),
		}
		instance.projectsByPath[projectFullPath] = createdProject
		writeFakeJSON(responseWriter, createdProject)
		return
	}

	if len(segments) == 1 && segments[0] == fakeGroupsSegmentConstant {
		instance.nextIdentifier++
		payload["id"] = instance.nextIdentifier

		groupFullPath := payload["path"].(string)
		if parent, exists := instance.groupsByID[asIdentifier(payload["parent_id"])]; exists {
			groupFullPath = parent["full_path"].(string) + "/" + groupFullPath
		}
		payload["full_path"] = groupFullPath
		instance.registerGroup(payload)
		writeFakeJSON(responseWriter, payload)
		return
	}

	instance.nextIdentifier++
	payload["id"] = instance.nextIdentifier
	if _, hasInternalIdentifier := payload["iid"]; !hasInternalIdentifier && segmentListsIssues(segments) {
		payload["iid"] = instance.nextIdentifier
	}
	writeFakeJSON(responseWriter, payload)
}

func (instance *fakeGitLabInstance) handleDelete(responseWriter http.ResponseWriter, segments []string) {
	if len(segments) == 2 && segments[0] == fakeProjectsSegmentConstant {
		deletedIdentifier := parseIdentifierSegment(segments[1])
		for projectPath, project := range instance.projectsByPath {
			if asIdentifier(project["id"]) == deletedIdentifier {
				delete(instance.projectsByPath, projectPath)
				break
			}
		}
	}
	writeFakeJSON(responseWriter, map[string]any{})
}

func segmentListsIssues(segments []string) bool {
	return len(segments) == 3 && segments[2] == fakeIssuesSegmentConstant
}

func projectResourceKey(projectIdentifier int64, resourceName string) string {
	return fmt.Sprintf("%d/%s", projectIdentifier, resourceName)
}

func parseIdentifierSegment(segment string) int64 {
	parsedIdentifier, _ := strconv.ParseInt(segment, 10, 64)
	return parsedIdentifier
}

// asIdentifier tolerates the numeric types seen in seeded maps and
// decoded JSON payloads.
func asIdentifier(rawValue any) int64 {
	switch typedValue := rawValue.(type) {
	case int64:
		return typedValue
	case int:
		return int64(typedValue)
	case float64:
		return int64(typedValue)
	default:
		return 0
	}
}

func decodeRequestBody(request *http.Request) map[string]any {
	payload := map[string]any{}
	_ = json.NewDecoder(request.Body).Decode(&payload)
	return payload
}

func writeFakeJSON(responseWriter http.ResponseWriter, payload any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(responseWriter).Encode(payload)
}

func writeFakeList(responseWriter http.ResponseWriter, items []map[string]any) {
	if items == nil {
		items = []map[string]any{}
	}
	writeFakeJSON(responseWriter, items)
}

func writeFakeNotFound(responseWriter http.ResponseWriter) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(http.StatusNotFound)
	_, _ = responseWriter.Write([]byte(fakeNotFoundBodyConstant))
}
