package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskManagement/internal/logger"
	"taskManagement/internal/models/page"
	"taskManagement/internal/models/task"
	rep "taskManagement/internal/repository"
	"taskManagement/internal/security"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo     TaskRepository
	projects ProjectRepository
}

func NewTaskService(repo TaskRepository, projects ProjectRepository) *TaskService {
	return &TaskService{
		repo:     repo,
		projects: projects,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// NewTask создаёт несохранённую задачу проекта в часовом поясе текущего пользователя
func (s *TaskService) NewTask(ctx context.Context, projectID uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}
	return task.New(projectID, security.CurrentZone(ctx), options...), nil
}

// CreateTask - NewTask и SaveTask за один вызов
func (s *TaskService) CreateTask(ctx context.Context, projectID uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.NewTask(ctx, projectID, options...)
	if err != nil {
		return nil, err
	}
	return s.SaveTask(ctx, t)
}

// SaveTask добавляет задачу с нулевой версией и обновляет остальные
func (s *TaskService) SaveTask(ctx context.Context, t *task.Task) (*task.Task, error) {
	if t == nil {
		return nil, NewValidationError("task", "задача не передана")
	}
	if err := validateTask(t); err != nil {
		logger.Warn("Service: Ошибка валидации задачи",
			zap.String("task_id", t.UUID.String()),
			zap.Error(err))
		return nil, err
	}

	if t.Version == 0 {
		if err := s.repo.Create(ctx, t); err != nil {
			return nil, fmt.Errorf("создание задачи: %w", err)
		}
		logger.Info("Service: Задача создана",
			zap.String("task_id", t.UUID.String()),
			zap.String("project_id", t.ProjectID.String()))
		return t, nil
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, s.mapRepoError(err, t.UUID, t.Version)
	}
	logger.Info("Service: Задача обновлена",
		zap.String("task_id", t.UUID.String()),
		zap.Int("version", t.Version))
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, 0)
	}
	return t, nil
}

// UpdateTask применяет изменения к задаче версии version; 0 отключает проверку версии
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, version int, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, version)
	}

	if version > 0 && t.Version != version {
		logger.Warn("Service: Устаревшая версия задачи",
			zap.String("task_id", id.String()),
			zap.Int("expected_version", version),
			zap.Int("actual_version", t.Version))
		return nil, NewVersionConflict(id.String(), version)
	}

	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return s.SaveTask(ctx, t)
}

// DeleteTask доступен только пользователям с ROLE_ADMIN
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	principal, ok := security.PrincipalFrom(ctx)
	if !ok || !principal.HasAuthority(security.RoleAdmin) {
		subject := ""
		if ok {
			subject = principal.Subject()
		}
		logger.Warn("Service: Удаление задачи без прав администратора",
			zap.String("task_id", id.String()),
			zap.String("subject", subject))
		return NewAccessDenied(security.RoleAdmin)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, 0)
	}

	logger.Info("Service: Задача удалена",
		zap.String("task_id", id.String()),
		zap.String("subject", principal.Subject()))
	return nil
}

func (s *TaskService) FindTasks(ctx context.Context, projectID uuid.UUID, filter *task.Filter, req page.Request) ([]*task.Task, error) {
	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}

	start := time.Now()
	tasks, err := s.repo.Find(ctx, projectID, filter, req)
	if err != nil {
		return nil, fmt.Errorf("поиск задач: %w", err)
	}

	logger.Debug("Service: Задачи найдены",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))
	return tasks, nil
}

func (s *TaskService) HasTasks(ctx context.Context, projectID uuid.UUID) (bool, error) {
	exists, err := s.repo.ExistsForProject(ctx, projectID)
	if err != nil {
		return false, fmt.Errorf("проверка задач проекта: %w", err)
	}
	return exists, nil
}

func (s *TaskService) ensureProject(ctx context.Context, projectID uuid.UUID) error {
	if projectID == uuid.Nil {
		return NewValidationError("project_id", "проект обязателен")
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(ResourceProject, projectID.String())
		}
		return fmt.Errorf("получение проекта: %w", err)
	}
	return nil
}

func (s *TaskService) mapRepoError(err error, id uuid.UUID, version int) error {
	switch {
	case errors.Is(err, rep.ErrNotFound):
		logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		return NewNotFound(ResourceTask, id.String())
	case errors.Is(err, rep.ErrVersionConflict):
		return NewVersionConflict(id.String(), version)
	default:
		return fmt.Errorf("задача %s: %w", id.String(), err)
	}
}

func validateTask(t *task.Task) error {
	if t.ProjectID == uuid.Nil {
		return NewValidationError("project_id", "проект обязателен")
	}

	if strings.TrimSpace(t.Description) == "" {
		return NewValidationError("description", "описание обязательно")
	}
	if utf8.RuneCountInString(t.Description) > task.DescriptionMaxLength {
		return NewValidationError("description", fmt.Sprintf("не более %d символов", task.DescriptionMaxLength))
	}

	if t.DueTime != nil {
		if t.DueDate == nil {
			return NewValidationError("due_time", "время срока задаётся только вместе с датой")
		}
		if *t.DueTime < 0 || *t.DueTime >= 24*time.Hour {
			return NewValidationError("due_time", "время вне суток")
		}
	}

	if !t.Status.Valid() {
		return NewValidationError("status", fmt.Sprintf("неизвестный статус %q", t.Status))
	}
	if !t.Priority.Valid() {
		return NewValidationError("priority", fmt.Sprintf("неизвестный приоритет %q", t.Priority))
	}

	if t.TimeZone == "" {
		return NewValidationError("time_zone", "часовой пояс не задан")
	}
	if _, err := time.LoadLocation(t.TimeZone); err != nil {
		return NewValidationError("time_zone", fmt.Sprintf("неизвестный часовой пояс %q", t.TimeZone))
	}

	if t.Assignees == nil {
		t.Assignees = []string{}
	} else {
		task.WithAssignees(t.Assignees)(t)
	}
	return nil
}
