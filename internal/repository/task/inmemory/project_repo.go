package inmemory

import (
	"context"
	"sync"
	"taskManagement/internal/models/page"
	"taskManagement/internal/models/project"
	repo "taskManagement/internal/repository"
	"time"

	"github.com/google/uuid"
)

type ProjectStorage struct {
	storage map[uuid.UUID]project.Project
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewProjectStorage() *ProjectStorage {
	return &ProjectStorage{
		storage: make(map[uuid.UUID]project.Project),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *ProjectStorage) Create(ctx context.Context, p *project.Project) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	p.CreatedAt = time.Now()
	s.storage[p.UUID] = *p
	s.ids = append(s.ids, p.UUID)
	return nil
}

func (s *ProjectStorage) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (s *ProjectStorage) List(ctx context.Context, req page.Request) ([]*project.Project, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	start, end := req.Bounds(len(s.ids))
	res := make([]*project.Project, 0, end-start)
	for _, id := range s.ids[start:end] {
		p := s.storage[id]
		res = append(res, &p)
	}
	return res, nil
}
