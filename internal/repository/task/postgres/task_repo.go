package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskManagement/internal/logger"
	"taskManagement/internal/models/page"
	"taskManagement/internal/models/task"
	repo "taskManagement/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type Storage struct {
	pool       *pgxpool.Pool
	connString string
}

func New(ctx context.Context, connString string, opts PoolOptions) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool, connString: connString}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

// Projects возвращает хранилище проектов на том же пуле соединений
func (s *Storage) Projects() *ProjectStorage {
	return &ProjectStorage{pool: s.pool}
}

const taskColumns = `uuid,
				project_id,
				description,
				due_date,
				due_time,
				status,
				priority,
				assignees,
				time_zone,
				created_at,
				updated_at,
				version`

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	var dueTime pgtype.Time

	err := row.Scan(
		&t.UUID,
		&t.ProjectID,
		&t.Description,
		&t.DueDate,
		&dueTime,
		&t.Status,
		&t.Priority,
		&t.Assignees,
		&t.TimeZone,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}

	if dueTime.Valid {
		d := time.Duration(dueTime.Microseconds) * time.Microsecond
		t.DueTime = &d
	}
	if t.Assignees == nil {
		t.Assignees = []string{}
	}
	return t, nil
}

func toPgTime(d *time.Duration) pgtype.Time {
	if d == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: d.Microseconds(), Valid: true}
}

func toPgDate(d *time.Time) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

func warnIfSlow(start time.Time, threshold time.Duration, op string) {
	if time.Since(start) > threshold {
		logger.Warn("Repository: Медленный запрос", zap.String("operation", op), zap.Duration("ms", time.Since(start)))
	}
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(uuid, project_id, description, due_date, due_time, status, priority, assignees, time_zone, created_at, version)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
				RETURNING created_at, version`

	assignees := taskToCreate.Assignees
	if assignees == nil {
		assignees = []string{}
	}

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.UUID,
		taskToCreate.ProjectID,
		taskToCreate.Description,
		toPgDate(taskToCreate.DueDate),
		toPgTime(taskToCreate.DueTime),
		string(taskToCreate.Status),
		string(taskToCreate.Priority),
		assignees,
		taskToCreate.TimeZone,
		time.Now(),
	).Scan(&taskToCreate.CreatedAt, &taskToCreate.Version)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow(start, time.Millisecond*50, "create_task")
	return nil
}

// Update меняет задачу при совпадении версии; проект и часовой пояс не обновляются
func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET description = $1,
				due_date = $2,
				due_time = $3,
				status = $4,
				priority = $5,
				assignees = $6,
				version = version + 1,
				updated_at = NOW()
			WHERE uuid = $7 AND version = $8
			RETURNING updated_at, version, time_zone, project_id, created_at`

	assignees := taskToUpdate.Assignees
	if assignees == nil {
		assignees = []string{}
	}

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Description,
		toPgDate(taskToUpdate.DueDate),
		toPgTime(taskToUpdate.DueTime),
		string(taskToUpdate.Status),
		string(taskToUpdate.Priority),
		assignees,
		taskToUpdate.UUID,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.UpdatedAt, &taskToUpdate.Version, &taskToUpdate.TimeZone, &taskToUpdate.ProjectID, &taskToUpdate.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			exists, existsErr := s.exists(ctx, taskToUpdate.UUID)
			if existsErr != nil {
				return fmt.Errorf("обновление задачи: %w", existsErr)
			}
			if !exists {
				return repo.ErrNotFound
			}
			logger.Warn("Конфликт версий при обновлении задачи",
				zap.String("task_id", taskToUpdate.UUID.String()),
				zap.Int("expected_version", taskToUpdate.Version))
			return repo.ErrVersionConflict
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	warnIfSlow(start, time.Millisecond*100, "update_task")
	return nil
}

func (s *Storage) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE uuid = $1)`, id).Scan(&exists)
	return exists, err
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE uuid = $1`, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start, time.Millisecond*100, "delete_task")
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE uuid = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	warnIfSlow(start, time.Millisecond*100, "get_task")
	return t, nil
}

// buildFindQuery собирает условия фильтра; порядок (created_at, uuid) делает страницы стабильными
func buildFindQuery(projectID uuid.UUID, filter *task.Filter, req page.Request) (string, []any) {
	conditions := []string{"project_id = $1"}
	args := []any{projectID}

	if filter != nil {
		if term := strings.TrimSpace(filter.SearchTerm); term != "" {
			args = append(args, term)
			conditions = append(conditions, fmt.Sprintf("strpos(lower(description), lower($%d)) > 0", len(args)))
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]string, len(filter.Statuses))
			for i, st := range filter.Statuses {
				statuses[i] = string(st)
			}
			args = append(args, statuses)
			conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
		}
		if len(filter.Priorities) > 0 {
			priorities := make([]string, len(filter.Priorities))
			for i, p := range filter.Priorities {
				priorities[i] = string(p)
			}
			args = append(args, priorities)
			conditions = append(conditions, fmt.Sprintf("priority = ANY($%d)", len(args)))
		}
	}

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, req.Limit, offset)

	query := `SELECT ` + taskColumns + `
				FROM tasks
				WHERE ` + strings.Join(conditions, " AND ") + fmt.Sprintf(`
				ORDER BY created_at, uuid
				LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return query, args
}

func (s *Storage) Find(ctx context.Context, projectID uuid.UUID, filter *task.Filter, req page.Request) ([]*task.Task, error) {
	start := time.Now()

	query, args := buildFindQuery(projectID, filter, req)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, time.Millisecond*50+time.Millisecond*10*time.Duration(req.Limit), "find_tasks")
	return tasks, nil
}

func (s *Storage) ExistsForProject(ctx context.Context, projectID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE project_id = $1)`, projectID).Scan(&exists)
	if err != nil {
		logger.Error("Repository: Проверка задач проекта", err)
		return false, fmt.Errorf("проверка задач проекта: %w", err)
	}
	return exists, nil
}
