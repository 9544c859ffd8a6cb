package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DescriptionMaxLength = 255

type Task struct {
	UUID        uuid.UUID      `json:"uuid" db:"uuid"`
	ProjectID   uuid.UUID      `json:"project_id" db:"project_id"`
	Description string         `json:"description" db:"description"`
	DueDate     *time.Time     `json:"due_date,omitempty" db:"due_date"`
	DueTime     *time.Duration `json:"due_time,omitempty" db:"due_time"`
	Status      Status         `json:"status" db:"status"`
	Priority    Priority       `json:"priority" db:"priority"`
	Assignees   []string       `json:"assignees" db:"assignees"`
	TimeZone    string         `json:"time_zone" db:"time_zone"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty" db:"updated_at,omitempty"`
	Version     int            `json:"version" db:"version"`
}

type Status string
type Priority string

const StatusPending Status = "PENDING"
const StatusInProgress Status = "IN_PROGRESS"
const StatusPaused Status = "PAUSED"
const StatusDone Status = "DONE"

const PriorityLow Priority = "LOW"
const PriorityNormal Priority = "NORMAL"
const PriorityHigh Priority = "HIGH"
const PriorityUrgent Priority = "URGENT"

var Statuses = []Status{StatusPending, StatusInProgress, StatusPaused, StatusDone}
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusPaused:
		return "Paused"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.Valid() {
		return "", fmt.Errorf("неизвестный статус %q", value)
	}
	return s, nil
}

func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

func (p Priority) DisplayName() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityNormal:
		return "Normal"
	case PriorityHigh:
		return "High"
	case PriorityUrgent:
		return "Urgent"
	}
	return string(p)
}

func ParsePriority(value string) (Priority, error) {
	p := Priority(value)
	if !p.Valid() {
		return "", fmt.Errorf("неизвестный приоритет %q", value)
	}
	return p, nil
}

// New создаёт задачу проекта; часовой пояс фиксируется здесь и дальше не меняется
func New(projectID uuid.UUID, zone *time.Location, options ...TaskOption) *Task {
	if zone == nil {
		zone = time.Local
	}
	t := &Task{
		UUID:      uuid.New(),
		ProjectID: projectID,
		Status:    StatusPending,
		Priority:  PriorityNormal,
		Assignees: []string{},
		TimeZone:  zone.String(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Location возвращает часовой пояс, в котором задача была создана
func (t *Task) Location() *time.Location {
	loc, err := time.LoadLocation(t.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Due собирает срок из даты и времени в часовом поясе задачи
func (t *Task) Due() (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	d := *t.DueDate
	due := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
	if t.DueTime != nil {
		due = due.Add(*t.DueTime)
	}
	return due, true
}
