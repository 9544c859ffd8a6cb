package service

import (
	"context"
	"taskManagement/internal/models/page"
	"taskManagement/internal/models/project"
	"taskManagement/internal/models/task"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	Delete(context.Context, uuid.UUID) error
	Find(context.Context, uuid.UUID, *task.Filter, page.Request) ([]*task.Task, error)
	ExistsForProject(context.Context, uuid.UUID) (bool, error)
}

type ProjectRepository interface {
	Create(context.Context, *project.Project) error
	GetByID(context.Context, uuid.UUID) (*project.Project, error)
	List(context.Context, page.Request) ([]*project.Project, error)
}
