package task

import "strings"

// Filter пустые множества статусов и приоритетов означают отсутствие ограничения
type Filter struct {
	SearchTerm string
	Statuses   []Status
	Priorities []Priority
}

func (f *Filter) IncludeStatus(statuses ...Status) {
	for _, s := range statuses {
		if !containsStatus(f.Statuses, s) {
			f.Statuses = append(f.Statuses, s)
		}
	}
}

func (f *Filter) IncludePriority(priorities ...Priority) {
	for _, p := range priorities {
		if !containsPriority(f.Priorities, p) {
			f.Priorities = append(f.Priorities, p)
		}
	}
}

func (f *Filter) IsEmpty() bool {
	return f == nil || (strings.TrimSpace(f.SearchTerm) == "" && len(f.Statuses) == 0 && len(f.Priorities) == 0)
}

// Matches проверяет задачу без учёта проекта; nil фильтр пропускает всё
func (f *Filter) Matches(t *Task) bool {
	if f == nil {
		return true
	}
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		if !strings.Contains(strings.ToLower(t.Description), strings.ToLower(term)) {
			return false
		}
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, t.Priority) {
		return false
	}
	return true
}

func containsStatus(statuses []Status, s Status) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(priorities []Priority, p Priority) bool {
	for _, v := range priorities {
		if v == p {
			return true
		}
	}
	return false
}
