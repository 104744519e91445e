package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Derived read-time statuses. StatusOverdue never appears in storage.
const StatusOverdue = "overdue"

// TaskView is a task enriched with its derived schedule state for listings.
type TaskView struct {
	Task
	CurrentStatus string  `json:"current_status"`
	HoursOverdue  float64 `json:"hours_overdue"`
	OverdueLabel  string  `json:"overdue_label,omitempty"`
}

// CurrentStatus derives the read-time status of a task. The reference instant
// is passed explicitly so the classification stays deterministic and testable.
func CurrentStatus(t *Task, now time.Time) string {
	switch {
	case t.IsCompleted():
		return StatusCompleted
	case t.DueAt.Before(now):
		return StatusOverdue
	default:
		return StatusPending
	}
}

// HoursOverdue returns how many hours past due the task is at the reference
// instant, rounded to one decimal. It is exactly zero for any task whose
// current status is not overdue.
func HoursOverdue(t *Task, now time.Time) float64 {
	if CurrentStatus(t, now) != StatusOverdue {
		return 0
	}
	hours := now.Sub(t.DueAt).Hours()
	return math.Round(hours*10) / 10
}

// FormatOverdue renders an overdue duration for display. Durations under a
// day are reported in whole hours, longer ones in days plus leftover hours.
func FormatOverdue(hours float64) string {
	whole := int(hours)
	if hours < 24 {
		return fmt.Sprintf("%d %s", whole, pluralize("hour", whole))
	}
	days := whole / 24
	rem := whole % 24
	if rem == 0 {
		return fmt.Sprintf("%d %s", days, pluralize("day", days))
	}
	return fmt.Sprintf("%d %s and %d %s", days, pluralize("day", days), rem, pluralize("hour", rem))
}

func pluralize(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

func statusRank(status string) int {
	switch status {
	case StatusPending:
		return 1
	case StatusOverdue:
		return 2
	default:
		return 3
	}
}

// BuildSchedule derives the view state for every task and sorts the result:
// pending first, then overdue, then completed, each bucket ordered by due
// instant ascending. The ordering is user-facing and must stay exact.
func BuildSchedule(tasks []Task, now time.Time) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		t := tasks[i]
		status := CurrentStatus(&t, now)
		view := TaskView{
			Task:          t,
			CurrentStatus: status,
			HoursOverdue:  HoursOverdue(&t, now),
		}
		if view.HoursOverdue > 0 {
			view.OverdueLabel = FormatOverdue(view.HoursOverdue)
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		ri, rj := statusRank(views[i].CurrentStatus), statusRank(views[j].CurrentStatus)
		if ri != rj {
			return ri < rj
		}
		return views[i].DueAt.Before(views[j].DueAt)
	})
	return views
}
