package postgres

import (
	"context"
	"errors"
	"fmt"
	"taskManagement/internal/logger"
	"taskManagement/internal/models/page"
	"taskManagement/internal/models/project"
	repo "taskManagement/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProjectStorage struct {
	pool *pgxpool.Pool
}

func (s *ProjectStorage) Create(ctx context.Context, p *project.Project) error {
	start := time.Now()

	query := `INSERT INTO projects (uuid, name, created_at)
				VALUES ($1, $2, $3)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query, p.UUID, p.Name, time.Now()).Scan(&p.CreatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось добавить проект", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление проекта: %w", err)
	}

	warnIfSlow(start, time.Millisecond*50, "create_project")
	return nil
}

func (s *ProjectStorage) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p := &project.Project{}
	err := s.pool.QueryRow(ctx, `SELECT uuid, name, created_at FROM projects WHERE uuid = $1`, id).
		Scan(&p.UUID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить проект", err)
		return nil, fmt.Errorf("получение проекта: %w", err)
	}
	return p, nil
}

func (s *ProjectStorage) List(ctx context.Context, req page.Request) ([]*project.Project, error) {
	start := time.Now()

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.pool.Query(ctx, `SELECT uuid, name, created_at
				FROM projects
				ORDER BY created_at, uuid
				LIMIT $1 OFFSET $2`, req.Limit, offset)
	if err != nil {
		logger.Error("Repository: Не удалось получить проекты", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	defer rows.Close()

	projects := []*project.Project{}
	for rows.Next() {
		p := &project.Project{}
		if err := rows.Scan(&p.UUID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("сканирование проекта: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, time.Millisecond*100, "list_projects")
	return projects, nil
}
