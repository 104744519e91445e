package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func TestCurrentStatus(t *testing.T) {
	now := mustParse(t, "2024-01-02T13:30:00Z")

	tests := []struct {
		name   string
		task   Task
		expect string
	}{
		{
			name:   "pending before due",
			task:   Task{Status: StatusPending, DueAt: now.Add(time.Hour)},
			expect: StatusPending,
		},
		{
			name:   "overdue after due",
			task:   Task{Status: StatusPending, DueAt: now.Add(-time.Hour)},
			expect: StatusOverdue,
		},
		{
			name:   "completed stays completed past due",
			task:   Task{Status: StatusCompleted, DueAt: now.Add(-48 * time.Hour)},
			expect: StatusCompleted,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, CurrentStatus(&tc.task, now))
		})
	}
}

func TestHoursOverdue(t *testing.T) {
	due := mustParse(t, "2024-01-01T10:00:00Z")
	now := mustParse(t, "2024-01-02T13:30:00Z")

	task := Task{Status: StatusPending, DueAt: due}
	assert.InDelta(t, 27.5, HoursOverdue(&task, now), 1e-9)

	completed := Task{Status: StatusCompleted, DueAt: due}
	assert.Zero(t, HoursOverdue(&completed, now))

	pending := Task{Status: StatusPending, DueAt: now.Add(time.Hour)}
	assert.Zero(t, HoursOverdue(&pending, now))
}

func TestFormatOverdue(t *testing.T) {
	tests := []struct {
		hours  float64
		expect string
	}{
		{1, "1 hour"},
		{5.4, "5 hours"},
		{23.9, "23 hours"},
		{24, "1 day"},
		{27.5, "1 day and 3 hours"},
		{48, "2 days"},
		{49.2, "2 days and 1 hour"},
		{75, "3 days and 3 hours"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expect, FormatOverdue(tc.hours), "hours=%v", tc.hours)
	}
}

func TestBuildScheduleOrdering(t *testing.T) {
	now := mustParse(t, "2024-06-01T12:00:00Z")

	tasks := []Task{
		{ID: "completed-late", Status: StatusCompleted, DueAt: now.Add(-72 * time.Hour)},
		{ID: "overdue-b", Status: StatusPending, DueAt: now.Add(-2 * time.Hour)},
		{ID: "pending-b", Status: StatusPending, DueAt: now.Add(48 * time.Hour)},
		{ID: "completed-early", Status: StatusCompleted, DueAt: now.Add(24 * time.Hour)},
		{ID: "overdue-a", Status: StatusPending, DueAt: now.Add(-30 * time.Hour)},
		{ID: "pending-a", Status: StatusPending, DueAt: now.Add(time.Hour)},
	}

	views := BuildSchedule(tasks, now)

	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	assert.Equal(t, []string{
		"pending-a", "pending-b",
		"overdue-a", "overdue-b",
		"completed-late", "completed-early",
	}, ids)

	// within each bucket the due instants are non-decreasing
	for i := 1; i < len(views); i++ {
		if views[i].CurrentStatus == views[i-1].CurrentStatus {
			assert.False(t, views[i].DueAt.Before(views[i-1].DueAt))
		}
	}
}

func TestBuildScheduleViewFields(t *testing.T) {
	now := mustParse(t, "2024-01-02T13:30:00Z")
	due := mustParse(t, "2024-01-01T10:00:00Z")

	views := BuildSchedule([]Task{{ID: "t1", Status: StatusPending, DueAt: due}}, now)
	require.Len(t, views, 1)

	assert.Equal(t, StatusOverdue, views[0].CurrentStatus)
	assert.InDelta(t, 27.5, views[0].HoursOverdue, 1e-9)
	assert.Equal(t, "1 day and 3 hours", views[0].OverdueLabel)

	views = BuildSchedule([]Task{{ID: "t2", Status: StatusPending, DueAt: now.Add(time.Hour)}}, now)
	require.Len(t, views, 1)
	assert.Equal(t, StatusPending, views[0].CurrentStatus)
	assert.Zero(t, views[0].HoursOverdue)
	assert.Empty(t, views[0].OverdueLabel)
}
