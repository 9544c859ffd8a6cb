package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskManagement/internal/logger"
	"taskManagement/internal/models/page"
	"taskManagement/internal/models/project"
	rep "taskManagement/internal/repository"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProjectService struct {
	repo ProjectRepository
}

func NewProjectService(repo ProjectRepository) *ProjectService {
	return &ProjectService{repo: repo}
}

func (s *ProjectService) CreateProject(ctx context.Context, name string) (*project.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "название проекта обязательно")
	}
	if utf8.RuneCountInString(name) > project.NameMaxLength {
		return nil, NewValidationError("name", fmt.Sprintf("не более %d символов", project.NameMaxLength))
	}

	p := project.New(name)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("создание проекта: %w", err)
	}

	logger.Info("Service: Проект создан", zap.String("project_id", p.UUID.String()))
	return p, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Проект не найден", zap.String("target_id", id.String()))
			return nil, NewNotFound(ResourceProject, id.String())
		}
		return nil, fmt.Errorf("получение проекта: %w", err)
	}
	return p, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, req page.Request) ([]*project.Project, error) {
	projects, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	return projects, nil
}
