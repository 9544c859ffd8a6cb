package handlers

import (
	"context"
	"taskManagement/internal/models/page"
	"taskManagement/internal/models/project"
	"taskManagement/internal/models/task"
	"taskManagement/internal/models/user"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(context.Context) error
	CreateTask(context.Context, uuid.UUID, ...task.TaskOption) (*task.Task, error)
	GetTask(context.Context, uuid.UUID) (*task.Task, error)
	UpdateTask(context.Context, uuid.UUID, int, ...task.TaskOption) (*task.Task, error)
	DeleteTask(context.Context, uuid.UUID) error
	FindTasks(context.Context, uuid.UUID, *task.Filter, page.Request) ([]*task.Task, error)
}

type ProjectService interface {
	CreateProject(context.Context, string) (*project.Project, error)
	GetProject(context.Context, uuid.UUID) (*project.Project, error)
	ListProjects(context.Context, page.Request) ([]*project.Project, error)
}

// UserDirectory - поиск пользователей в провайдере идентификации
type UserDirectory interface {
	FindUserInfo(ctx context.Context, userID string) (*user.Info, bool, error)
	FindUsers(ctx context.Context, searchTerm string, limit, offset int) ([]*user.Info, error)
}
