package inmemory

import (
	"context"
	"sync"
	"taskManagement/internal/logger"
	"taskManagement/internal/models/page"
	"taskManagement/internal/models/task"
	repo "taskManagement/internal/repository"
	"time"

	"github.com/google/uuid"
)

// TaskStorage хранит копии задач; порядок ids задаёт стабильную пагинацию
type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskToCreate.CreatedAt = time.Now()
	taskToCreate.Version = 1

	s.storage[taskToCreate.UUID] = cloneTask(taskToCreate)
	s.ids = append(s.ids, taskToCreate.UUID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[taskToUpdate.UUID]
	if !ok {
		return repo.ErrNotFound
	}
	if existing.Version != taskToUpdate.Version {
		return repo.ErrVersionConflict
	}

	now := time.Now()
	taskToUpdate.UpdatedAt = &now
	taskToUpdate.Version++
	// часовой пояс и проект задаются при создании
	taskToUpdate.TimeZone = existing.TimeZone
	taskToUpdate.ProjectID = existing.ProjectID
	taskToUpdate.CreatedAt = existing.CreatedAt

	s.storage[taskToUpdate.UUID] = cloneTask(taskToUpdate)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneTask(taskToGet), nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// Find - задачи проекта, подходящие под фильтр, в порядке создания
func (s *TaskStorage) Find(ctx context.Context, projectID uuid.UUID, filter *task.Filter, req page.Request) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	matched := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if t.ProjectID != projectID || !filter.Matches(t) {
			continue
		}
		matched = append(matched, t)
	}

	start, end := req.Bounds(len(matched))
	res := make([]*task.Task, 0, end-start)
	for _, t := range matched[start:end] {
		res = append(res, cloneTask(t))
	}
	return res, nil
}

func (s *TaskStorage) ExistsForProject(ctx context.Context, projectID uuid.UUID) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, t := range s.storage {
		if t.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func cloneTask(t *task.Task) *task.Task {
	c := *t
	c.Assignees = append([]string(nil), t.Assignees...)
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.DueTime != nil {
		d := *t.DueTime
		c.DueTime = &d
	}
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		c.UpdatedAt = &u
	}
	return &c
}
