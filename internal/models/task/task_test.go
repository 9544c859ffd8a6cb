package task_test

import (
	"taskManagement/internal/models/task"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StampsProjectAndZone(t *testing.T) {
	projectID := uuid.New()
	zone, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)

	tsk := task.New(projectID, zone, task.WithDescription("Write docs"))

	assert.NotEqual(t, uuid.Nil, tsk.UUID)
	assert.Equal(t, projectID, tsk.ProjectID)
	assert.Equal(t, "Europe/Helsinki", tsk.TimeZone)
	assert.Equal(t, task.StatusPending, tsk.Status)
	assert.Equal(t, task.PriorityNormal, tsk.Priority)
	assert.Equal(t, "Write docs", tsk.Description)
	assert.Empty(t, tsk.Assignees)
}

func TestNew_NilZoneFallsBackToLocal(t *testing.T) {
	tsk := task.New(uuid.New(), nil)
	assert.Equal(t, time.Local.String(), tsk.TimeZone)
}

func TestWithAssignees_Deduplicates(t *testing.T) {
	tsk := task.New(uuid.New(), time.UTC, task.WithAssignees([]string{"a", "b", "a", "", "c", "b"}))
	assert.Equal(t, []string{"a", "b", "c"}, tsk.Assignees)
}

func TestWithStatus_EmptyIsNoop(t *testing.T) {
	assert.Nil(t, task.WithStatus(""))
	assert.Nil(t, task.WithPriority(""))
	assert.Nil(t, task.WithAssignees(nil))
}

func TestDue(t *testing.T) {
	zone, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	date := time.Date(2025, 3, 14, 17, 45, 0, 0, time.UTC)
	at := 9*time.Hour + 30*time.Minute

	tsk := task.New(uuid.New(), zone, task.WithDue(&date, &at))

	due, ok := tsk.Due()
	require.True(t, ok)
	assert.True(t, time.Date(2025, 3, 14, 9, 30, 0, 0, zone).Equal(due), "due = %s", due)

	noDue := task.New(uuid.New(), zone)
	_, ok = noDue.Due()
	assert.False(t, ok)
}

func TestParseStatusAndPriority(t *testing.T) {
	s, err := task.ParseStatus("IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, s)

	_, err = task.ParseStatus("in progress")
	assert.Error(t, err)

	p, err := task.ParsePriority("URGENT")
	require.NoError(t, err)
	assert.Equal(t, task.PriorityUrgent, p)

	_, err = task.ParsePriority("CRITICAL")
	assert.Error(t, err)

	assert.Equal(t, "In Progress", task.StatusInProgress.DisplayName())
	assert.Equal(t, "Urgent", task.PriorityUrgent.DisplayName())
}

func sampleTasks() []*task.Task {
	projectID := uuid.New()
	return []*task.Task{
		task.New(projectID, time.UTC, task.WithDescription("First task"), task.WithStatus(task.StatusPending), task.WithPriority(task.PriorityLow)),
		task.New(projectID, time.UTC, task.WithDescription("Second task"), task.WithStatus(task.StatusInProgress), task.WithPriority(task.PriorityNormal)),
		task.New(projectID, time.UTC, task.WithDescription("Third task"), task.WithStatus(task.StatusPaused), task.WithPriority(task.PriorityHigh)),
		task.New(projectID, time.UTC, task.WithDescription("Fourth todo"), task.WithStatus(task.StatusDone), task.WithPriority(task.PriorityUrgent)),
	}
}

func matching(f *task.Filter, tasks []*task.Task) []string {
	res := []string{}
	for _, t := range tasks {
		if f.Matches(t) {
			res = append(res, t.Description)
		}
	}
	return res
}

func TestFilter_Matches(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		name   string
		filter func() *task.Filter
		want   []string
	}{
		{
			name:   "nil filter matches all",
			filter: func() *task.Filter { return nil },
			want:   []string{"First task", "Second task", "Third task", "Fourth todo"},
		},
		{
			name:   "empty filter matches all",
			filter: func() *task.Filter { return &task.Filter{} },
			want:   []string{"First task", "Second task", "Third task", "Fourth todo"},
		},
		{
			name:   "search term is case insensitive",
			filter: func() *task.Filter { return &task.Filter{SearchTerm: "TASK"} },
			want:   []string{"First task", "Second task", "Third task"},
		},
		{
			name: "status set",
			filter: func() *task.Filter {
				f := &task.Filter{}
				f.IncludeStatus(task.StatusPending, task.StatusPaused)
				return f
			},
			want: []string{"First task", "Third task"},
		},
		{
			name: "priority set",
			filter: func() *task.Filter {
				f := &task.Filter{}
				f.IncludePriority(task.PriorityHigh)
				f.IncludePriority(task.PriorityUrgent)
				return f
			},
			want: []string{"Third task", "Fourth todo"},
		},
		{
			name: "constraints are combined with and",
			filter: func() *task.Filter {
				f := &task.Filter{SearchTerm: "task"}
				f.IncludePriority(task.PriorityHigh, task.PriorityUrgent)
				return f
			},
			want: []string{"Third task"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matching(tt.filter(), tasks))
		})
	}
}

func TestFilter_IncludeIsIdempotent(t *testing.T) {
	f := &task.Filter{}
	f.IncludeStatus(task.StatusDone, task.StatusDone)
	f.IncludeStatus(task.StatusDone)
	assert.Len(t, f.Statuses, 1)
	assert.False(t, f.IsEmpty())

	var nilFilter *task.Filter
	assert.True(t, nilFilter.IsEmpty())
	assert.True(t, (&task.Filter{SearchTerm: "  "}).IsEmpty())
}
