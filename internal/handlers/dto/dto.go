package dto

import (
	"fmt"
	"strings"
	"taskManagement/internal/models/project"
	"taskManagement/internal/models/task"
	"taskManagement/internal/models/user"
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// UnknownUser подставляется вместо имени исполнителя, которого нет в Keycloak
	UnknownUser = "N/A"
)

type CreateProjectRequest struct {
	Name string `json:"name"`
}

type ProjectResponse struct {
	UUID      uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func FromProject(p *project.Project) ProjectResponse {
	return ProjectResponse{
		UUID:      p.UUID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

func FromProjectList(projects []*project.Project) []ProjectResponse {
	result := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		result[i] = FromProject(p)
	}
	return result
}

type CreateTaskRequest struct {
	Description string   `json:"description"`
	DueDate     *string  `json:"due_date,omitempty"`
	DueTime     *string  `json:"due_time,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
}

// UpdateTaskRequest - отсутствующие поля не меняются; пустые due_date и due_time сбрасывают срок
type UpdateTaskRequest struct {
	Version     int       `json:"version"`
	Description *string   `json:"description,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	DueTime     *string   `json:"due_time,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Priority    *string   `json:"priority,omitempty"`
	Assignees   *[]string `json:"assignees,omitempty"`
}

type AssigneeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TaskResponse struct {
	UUID        uuid.UUID          `json:"id"`
	ProjectID   uuid.UUID          `json:"project_id"`
	Description string             `json:"description"`
	DueDate     *string            `json:"due_date,omitempty"`
	DueTime     *string            `json:"due_time,omitempty"`
	Status      string             `json:"status"`
	Priority    string             `json:"priority"`
	Assignees   []string           `json:"assignees"`
	People      []AssigneeResponse `json:"assignee_names,omitempty"`
	TimeZone    string             `json:"time_zone"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   *time.Time         `json:"updated_at,omitempty"`
	Version     int                `json:"version"`
}

func FromTask(t *task.Task) TaskResponse {
	resp := TaskResponse{
		UUID:        t.UUID,
		ProjectID:   t.ProjectID,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Assignees:   t.Assignees,
		TimeZone:    t.TimeZone,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Version:     t.Version,
	}
	if resp.Assignees == nil {
		resp.Assignees = []string{}
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(DateLayout)
		resp.DueDate = &d
	}
	if t.DueTime != nil {
		at := FormatTimeOfDay(*t.DueTime)
		resp.DueTime = &at
	}
	return resp
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

// ParseDate разбирает дату YYYY-MM-DD; пустая строка означает отсутствие даты
func ParseDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, strings.TrimSpace(*value))
	if err != nil {
		return nil, fmt.Errorf("дата должна быть в формате %s", DateLayout)
	}
	return &d, nil
}

// ParseTimeOfDay разбирает время HH:MM в смещение от полуночи
func ParseTimeOfDay(value *string) (*time.Duration, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.Parse(TimeLayout, strings.TrimSpace(*value))
	if err != nil {
		return nil, fmt.Errorf("время должно быть в формате %s", TimeLayout)
	}
	d := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	return &d, nil
}

func FormatTimeOfDay(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

type UserResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	FullName string  `json:"full_name"`
	Email    *string `json:"email,omitempty"`
	Profile  *string `json:"profile,omitempty"`
	Picture  *string `json:"picture,omitempty"`
}

func FromUser(u *user.Info) UserResponse {
	resp := UserResponse{
		ID:       u.Subject(),
		Username: u.PreferredUsername(),
		FullName: u.FullName(),
	}
	if v, ok := u.Email(); ok {
		resp.Email = &v
	}
	if v, ok := u.Profile(); ok {
		resp.Profile = &v
	}
	if v, ok := u.Picture(); ok {
		resp.Picture = &v
	}
	return resp
}

func FromUserList(users []*user.Info) []UserResponse {
	result := make([]UserResponse, len(users))
	for i, u := range users {
		result[i] = FromUser(u)
	}
	return result
}

type MeResponse struct {
	UserResponse
	TimeZone    string   `json:"time_zone"`
	Authorities []string `json:"authorities"`
}
