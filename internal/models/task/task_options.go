package task

import (
	"time"
)

type TaskOption func(*Task)

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithStatus(status Status) TaskOption {
	if status == "" {
		return nil
	}
	return func(task *Task) {
		task.Status = status
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

// WithDue задаёт дату и время срока; nil сбрасывает значение
func WithDue(date *time.Time, timeOfDay *time.Duration) TaskOption {
	return func(task *Task) {
		if date != nil {
			d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
			date = &d
		}
		task.DueDate = date
		task.DueTime = timeOfDay
	}
}

// WithAssignees заменяет исполнителей, повторяющиеся id отбрасываются
func WithAssignees(assignees []string) TaskOption {
	if assignees == nil {
		return nil
	}
	return func(task *Task) {
		task.Assignees = uniqueAssignees(assignees)
	}
}

func uniqueAssignees(assignees []string) []string {
	seen := make(map[string]struct{}, len(assignees))
	res := make([]string, 0, len(assignees))
	for _, a := range assignees {
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		res = append(res, a)
	}
	return res
}
