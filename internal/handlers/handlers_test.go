package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"taskManagement/internal/handlers"
	"taskManagement/internal/models/page"
	"taskManagement/internal/models/project"
	"taskManagement/internal/models/task"
	"taskManagement/internal/models/user"
	"taskManagement/internal/security"
	"taskManagement/internal/security/keycloak"
	"taskManagement/internal/service"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskService - мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) CreateTask(ctx context.Context, projectID uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	args := m.Called(ctx, projectID, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id uuid.UUID, version int, options ...task.TaskOption) (*task.Task, error) {
	args := m.Called(ctx, id, version, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskService) FindTasks(ctx context.Context, projectID uuid.UUID, filter *task.Filter, req page.Request) ([]*task.Task, error) {
	args := m.Called(ctx, projectID, filter, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

// MockProjectService - мок сервиса проектов
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) CreateProject(ctx context.Context, name string) (*project.Project, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectService) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectService) ListProjects(ctx context.Context, req page.Request) ([]*project.Project, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Project), args.Error(1)
}

// MockUserDirectory - мок поиска пользователей
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindUserInfo(ctx context.Context, userID string) (*user.Info, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*user.Info), args.Bool(1), args.Error(2)
}

func (m *MockUserDirectory) FindUsers(ctx context.Context, searchTerm string, limit, offset int) ([]*user.Info, error) {
	args := m.Called(ctx, searchTerm, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.Info), args.Error(1)
}

var (
	_ handlers.TaskService    = (*MockTaskService)(nil)
	_ handlers.ProjectService = (*MockProjectService)(nil)
	_ handlers.UserDirectory  = (*MockUserDirectory)(nil)
	_ handlers.UserDirectory  = (*keycloak.Lookup)(nil)
)

type fixture struct {
	tasks    *MockTaskService
	projects *MockProjectService
	users    *MockUserDirectory
	router   http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		tasks:    new(MockTaskService),
		projects: new(MockProjectService),
		users:    new(MockUserDirectory),
	}

	th := handlers.NewTaskHandler(f.tasks, f.users)
	r := chi.NewRouter()
	r.Get("/health", th.HealthCheck)
	r.Route("/api", func(r chi.Router) {
		handlers.RegisterRoutes(r, th,
			handlers.NewProjectHandler(f.projects),
			handlers.NewUserHandler(f.users),
			func(next http.Handler) http.Handler { return next })
	})
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return f.doCtx(t, context.Background(), method, path, body)
}

func (f *fixture) doCtx(t *testing.T, ctx context.Context, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(ctx)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func mustUser(t *testing.T, id, username, first, last string) *user.Info {
	t.Helper()
	info, err := user.New(user.Claims{
		Subject:           id,
		PreferredUsername: username,
		GivenName:         &first,
		FamilyName:        &last,
	})
	require.NoError(t, err)
	return info
}

// applied применяет опции, переданные в мок, к пустой задаче
func applied(options []task.TaskOption) *task.Task {
	t := task.New(uuid.New(), time.UTC, options...)
	return t
}

// TestTaskHandler_HealthCheck тестирует HealthCheck
func TestTaskHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedBody   string
	}{
		{name: "healthy", expectedStatus: http.StatusOK, expectedBody: "ok"},
		{name: "unhealthy", serviceErr: errors.New("db down"), expectedStatus: http.StatusServiceUnavailable, expectedBody: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.tasks.On("HealthCheck", mock.Anything).Return(tt.serviceErr)

			rr := f.do(t, http.MethodGet, "/health", nil)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedBody, decode(t, rr)["status"])
			f.tasks.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_PostTask тестирует создание задачи
func TestTaskHandler_PostTask(t *testing.T) {
	projectID := uuid.New()
	path := fmt.Sprintf("/api/projects/%s/tasks", projectID)

	t.Run("success", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("CreateTask", mock.Anything, projectID, mock.MatchedBy(func(options []task.TaskOption) bool {
			got := applied(options)
			return got.Description == "Write report" &&
				got.Status == task.StatusInProgress &&
				got.Priority == task.PriorityHigh &&
				got.DueDate != nil && got.DueDate.Format("2006-01-02") == "2025-03-01" &&
				got.DueTime != nil && *got.DueTime == 9*time.Hour+30*time.Minute &&
				len(got.Assignees) == 1
		})).Return(&task.Task{UUID: uuid.New(), ProjectID: projectID, Description: "Write report", Version: 1}, nil)

		rr := f.do(t, http.MethodPost, path, map[string]any{
			"description": "Write report",
			"status":      "in_progress",
			"priority":    "HIGH",
			"due_date":    "2025-03-01",
			"due_time":    "09:30",
			"assignees":   []string{"u-1", "u-1"},
		})

		assert.Equal(t, http.StatusCreated, rr.Code)
		created := decode(t, rr)["task"].(map[string]any)
		assert.Equal(t, "Write report", created["description"])
		f.tasks.AssertExpectations(t)
	})

	t.Run("wrong content type", func(t *testing.T) {
		f := newFixture()
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "text/plain")
		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
		f.tasks.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything)
	})

	badRequests := []struct {
		name string
		body map[string]any
	}{
		{name: "bad date", body: map[string]any{"description": "x", "due_date": "01.03.2025"}},
		{name: "bad time", body: map[string]any{"description": "x", "due_date": "2025-03-01", "due_time": "9am"}},
		{name: "bad status", body: map[string]any{"description": "x", "status": "LATER"}},
		{name: "bad priority", body: map[string]any{"description": "x", "priority": "SOMEDAY"}},
	}
	for _, tt := range badRequests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rr := f.do(t, http.MethodPost, path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			f.tasks.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("bad project id", func(t *testing.T) {
		f := newFixture()
		rr := f.do(t, http.MethodPost, "/api/projects/not-a-uuid/tasks", map[string]any{"description": "x"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	serviceErrors := []struct {
		name   string
		err    error
		status int
	}{
		{name: "validation", err: service.NewValidationError("description", "описание обязательно"), status: http.StatusBadRequest},
		{name: "unknown project", err: service.NewNotFound(service.ResourceProject, projectID.String()), status: http.StatusNotFound},
		{name: "storage failure", err: errors.New("connection refused"), status: http.StatusInternalServerError},
	}
	for _, tt := range serviceErrors {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.tasks.On("CreateTask", mock.Anything, projectID, mock.Anything).Return(nil, tt.err)

			rr := f.do(t, http.MethodPost, path, map[string]any{"description": ""})

			assert.Equal(t, tt.status, rr.Code)
			f.tasks.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_GetProjectTasks тестирует разбор фильтра и страницы
func TestTaskHandler_GetProjectTasks(t *testing.T) {
	projectID := uuid.New()
	base := fmt.Sprintf("/api/projects/%s/tasks", projectID)

	t.Run("filter and page", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("FindTasks", mock.Anything, projectID, mock.MatchedBy(func(filter *task.Filter) bool {
			return filter.SearchTerm == "report" &&
				assert.ObjectsAreEqual([]task.Status{task.StatusPending, task.StatusPaused, task.StatusDone}, filter.Statuses) &&
				assert.ObjectsAreEqual([]task.Priority{task.PriorityHigh}, filter.Priorities)
		}), page.Of(2, 5)).Return([]*task.Task{{UUID: uuid.New(), Description: "report"}}, nil)

		rr := f.do(t, http.MethodGet, base+"?search=report&status=pending,paused&status=DONE&priority=HIGH&page=2&limit=5", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decode(t, rr)
		assert.Len(t, body["tasks"], 1)
		assert.EqualValues(t, 5, body["offset"])
		assert.EqualValues(t, 5, body["limit"])
		f.tasks.AssertExpectations(t)
	})

	t.Run("huge page number", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("FindTasks", mock.Anything, projectID, mock.Anything, page.Request{Offset: math.MaxInt, Limit: 100}).
			Return([]*task.Task{}, nil)

		rr := f.do(t, http.MethodGet, base+"?page=92233720368547760&limit=100", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decode(t, rr)["tasks"])
		f.tasks.AssertExpectations(t)
	})

	t.Run("defaults to empty filter", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("FindTasks", mock.Anything, projectID, mock.MatchedBy(func(filter *task.Filter) bool {
			return filter.IsEmpty()
		}), page.Of(1, page.DefaultSize)).Return([]*task.Task{}, nil)

		rr := f.do(t, http.MethodGet, base, nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, decode(t, rr)["tasks"])
		f.tasks.AssertExpectations(t)
	})

	for _, query := range []string{"?status=LATER", "?priority=SOON", "?page=abc", "?limit=0", "?page=-1"} {
		t.Run("bad query "+query, func(t *testing.T) {
			f := newFixture()
			rr := f.do(t, http.MethodGet, base+query, nil)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			f.tasks.AssertNotCalled(t, "FindTasks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

// TestTaskHandler_GetTaskByID тестирует получение задачи
func TestTaskHandler_GetTaskByID(t *testing.T) {
	taskID := uuid.New()
	path := "/api/tasks/" + taskID.String()
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	at := 18*time.Hour + 5*time.Minute

	existing := &task.Task{
		UUID:        taskID,
		Description: "Write report",
		Status:      task.StatusPending,
		Priority:    task.PriorityNormal,
		DueDate:     &date,
		DueTime:     &at,
		Assignees:   []string{"u-1", "u-gone"},
		TimeZone:    "Europe/Helsinki",
		Version:     2,
	}

	t.Run("success", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("GetTask", mock.Anything, taskID).Return(existing, nil)

		rr := f.do(t, http.MethodGet, path, nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decode(t, rr)["task"].(map[string]any)
		assert.Equal(t, "2025-03-01", got["due_date"])
		assert.Equal(t, "18:05", got["due_time"])
		assert.Equal(t, "Europe/Helsinki", got["time_zone"])
		assert.NotContains(t, got, "assignee_names")
		f.users.AssertNotCalled(t, "FindUserInfo", mock.Anything, mock.Anything)
	})

	t.Run("expand assignees", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("GetTask", mock.Anything, taskID).Return(existing, nil)
		f.users.On("FindUserInfo", mock.Anything, "u-1").Return(mustUser(t, "u-1", "jdoe", "John", "Doe"), true, nil)
		f.users.On("FindUserInfo", mock.Anything, "u-gone").Return(nil, false, nil)

		rr := f.do(t, http.MethodGet, path+"?expand=assignees", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decode(t, rr)["task"].(map[string]any)
		people := got["assignee_names"].([]any)
		require.Len(t, people, 2)
		assert.Equal(t, "John Doe", people[0].(map[string]any)["name"])
		assert.Equal(t, "N/A", people[1].(map[string]any)["name"])
		f.users.AssertExpectations(t)
	})

	t.Run("lookup failure", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("GetTask", mock.Anything, taskID).Return(existing, nil)
		f.users.On("FindUserInfo", mock.Anything, "u-1").
			Return(nil, false, fmt.Errorf("%w: timeout", keycloak.ErrLookupFailed))

		rr := f.do(t, http.MethodGet, path+"?expand=assignees", nil)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("GetTask", mock.Anything, taskID).Return(nil, service.NewNotFound(service.ResourceTask, taskID.String()))

		rr := f.do(t, http.MethodGet, path, nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, service.CodeNotFound, decode(t, rr)["error"])
	})

	t.Run("nil id", func(t *testing.T) {
		f := newFixture()
		rr := f.do(t, http.MethodGet, "/api/tasks/"+uuid.Nil.String(), nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// TestTaskHandler_UpdateTaskByID тестирует обновление задачи
func TestTaskHandler_UpdateTaskByID(t *testing.T) {
	taskID := uuid.New()
	path := "/api/tasks/" + taskID.String()

	t.Run("success", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("UpdateTask", mock.Anything, taskID, 3, mock.MatchedBy(func(options []task.TaskOption) bool {
			got := applied(options)
			return len(options) == 3 &&
				got.Description == "Updated" &&
				got.Status == task.StatusDone &&
				got.DueDate == nil && got.DueTime == nil
		})).Return(&task.Task{UUID: taskID, Description: "Updated", Status: task.StatusDone, Version: 4}, nil)

		rr := f.do(t, http.MethodPut, path, map[string]any{
			"version":     3,
			"description": "Updated",
			"status":      "DONE",
			"due_date":    "",
		})

		assert.Equal(t, http.StatusOK, rr.Code)
		got := decode(t, rr)["task"].(map[string]any)
		assert.EqualValues(t, 4, got["version"])
		f.tasks.AssertExpectations(t)
	})

	t.Run("version conflict", func(t *testing.T) {
		f := newFixture()
		f.tasks.On("UpdateTask", mock.Anything, taskID, 1, mock.Anything).
			Return(nil, service.NewVersionConflict(taskID.String(), 1))

		rr := f.do(t, http.MethodPut, path, map[string]any{"version": 1, "description": "Updated"})

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, service.CodeVersionConflict, decode(t, rr)["error"])
	})

	t.Run("invalid json", func(t *testing.T) {
		f := newFixture()
		req := httptest.NewRequest(http.MethodPut, path, bytes.NewBufferString(`{"version":`))
		rr := httptest.NewRecorder()
		f.router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// TestTaskHandler_DeleteTaskByID тестирует удаление задачи
func TestTaskHandler_DeleteTaskByID(t *testing.T) {
	taskID := uuid.New()
	path := "/api/tasks/" + taskID.String()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "success", status: http.StatusNoContent},
		{name: "access denied", err: service.NewAccessDenied(security.RoleAdmin), status: http.StatusForbidden},
		{name: "not found", err: service.NewNotFound(service.ResourceTask, taskID.String()), status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.tasks.On("DeleteTask", mock.Anything, taskID).Return(tt.err)

			rr := f.do(t, http.MethodDelete, path, nil)

			assert.Equal(t, tt.status, rr.Code)
			f.tasks.AssertExpectations(t)
		})
	}
}

// TestProjectHandler тестирует обработчики проектов
func TestProjectHandler(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		f := newFixture()
		created := &project.Project{UUID: uuid.New(), Name: "Launch", CreatedAt: time.Now()}
		f.projects.On("CreateProject", mock.Anything, "Launch").Return(created, nil)

		rr := f.do(t, http.MethodPost, "/api/projects", map[string]any{"name": "Launch"})

		assert.Equal(t, http.StatusCreated, rr.Code)
		got := decode(t, rr)["project"].(map[string]any)
		assert.Equal(t, created.UUID.String(), got["id"])
	})

	t.Run("create invalid", func(t *testing.T) {
		f := newFixture()
		f.projects.On("CreateProject", mock.Anything, "").Return(nil, service.NewValidationError("name", "название проекта обязательно"))

		rr := f.do(t, http.MethodPost, "/api/projects", map[string]any{"name": ""})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("list", func(t *testing.T) {
		f := newFixture()
		f.projects.On("ListProjects", mock.Anything, page.Of(1, 2)).Return([]*project.Project{{Name: "A"}, {Name: "B"}}, nil)

		rr := f.do(t, http.MethodGet, "/api/projects?limit=2", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decode(t, rr)["projects"], 2)
	})

	t.Run("get missing", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.projects.On("GetProject", mock.Anything, id).Return(nil, service.NewNotFound(service.ResourceProject, id.String()))

		rr := f.do(t, http.MethodGet, "/api/projects/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

// TestUserHandler тестирует поиск пользователей
func TestUserHandler(t *testing.T) {
	t.Run("find users passes paging verbatim", func(t *testing.T) {
		f := newFixture()
		f.users.On("FindUsers", mock.Anything, "jo", 5, 10).Return([]*user.Info{
			mustUser(t, "u-1", "jdoe", "John", "Doe"),
		}, nil)

		rr := f.do(t, http.MethodGet, "/api/users?search=jo&limit=5&offset=10", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		users := decode(t, rr)["users"].([]any)
		require.Len(t, users, 1)
		assert.Equal(t, "John Doe", users[0].(map[string]any)["full_name"])
		assert.NotContains(t, users[0].(map[string]any), "email")
		f.users.AssertExpectations(t)
	})

	t.Run("find users bad limit", func(t *testing.T) {
		f := newFixture()
		rr := f.do(t, http.MethodGet, "/api/users?limit=-1", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	lookupErrors := []struct {
		name   string
		found  bool
		err    error
		status int
	}{
		{name: "found", found: true, status: http.StatusOK},
		{name: "not found", status: http.StatusNotFound},
		{name: "upstream failure", err: fmt.Errorf("%w: 500", keycloak.ErrLookupFailed), status: http.StatusBadGateway},
		{name: "closed", err: keycloak.ErrClosed, status: http.StatusServiceUnavailable},
		{name: "malformed record", err: fmt.Errorf("%w: нет username", user.ErrMalformed), status: http.StatusBadGateway},
	}
	for _, tt := range lookupErrors {
		t.Run("get user "+tt.name, func(t *testing.T) {
			f := newFixture()
			var info any
			if tt.found {
				info = mustUser(t, "u-1", "jdoe", "John", "Doe")
			}
			f.users.On("FindUserInfo", mock.Anything, "u-1").Return(info, tt.found, tt.err)

			rr := f.do(t, http.MethodGet, "/api/users/u-1", nil)

			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

// TestUserHandler_Me тестирует текущего пользователя
func TestUserHandler_Me(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		f := newFixture()
		p, err := security.NewPrincipal(security.Claims{
			"sub":                "u-1",
			"preferred_username": "jdoe",
			"given_name":         "John",
			"picture":            "https://example.com/jdoe.png",
			"roles":              []any{"admin"},
		}, "Europe/Helsinki")
		require.NoError(t, err)

		rr := f.doCtx(t, security.WithPrincipal(context.Background(), p), http.MethodGet, "/api/me", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		me := decode(t, rr)["user"].(map[string]any)
		assert.Equal(t, "John", me["full_name"])
		assert.Equal(t, "https://example.com/jdoe.png", me["picture"])
		assert.Equal(t, "Europe/Helsinki", me["time_zone"])
		assert.Contains(t, me["authorities"], security.RoleAdmin)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture()
		rr := f.do(t, http.MethodGet, "/api/me", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
