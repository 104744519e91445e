package domain

import "time"

// Stored task statuses. "overdue" is never persisted; it is derived at read
// time by CurrentStatus.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Difficulty bounds, inclusive.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// TaskAttributes are the raw inputs the estimation model predicts from.
type TaskAttributes struct {
	Course             string  `json:"course"`
	TaskType           string  `json:"task_type"`
	Difficulty         int     `json:"difficulty"`
	TotalAvailableTime float64 `json:"total_available_time"`
	DeadlineDays       int     `json:"deadline_days"`
}

// Validate checks attribute ranges. It runs at the input boundary so
// out-of-range values never reach the model layer.
func (a TaskAttributes) Validate() error {
	if a.Course == "" {
		return NewError(ErrCodeInvalid, "course is required")
	}
	if a.TaskType == "" {
		return NewError(ErrCodeInvalid, "task type is required")
	}
	if a.Difficulty < MinDifficulty || a.Difficulty > MaxDifficulty {
		return NewError(ErrCodeInvalid, "difficulty must be between 1 and 5")
	}
	if a.TotalAvailableTime <= 0 {
		return NewError(ErrCodeInvalid, "total available time must be positive")
	}
	if a.DeadlineDays < 0 {
		return NewError(ErrCodeInvalid, "deadline days must not be negative")
	}
	return nil
}

// Task represents a unit of coursework owned by a single user.
type Task struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	TaskAttributes
	PredictedTime float64   `json:"predicted_time"`
	ActualTime    *float64  `json:"actual_time,omitempty"`
	DueAt         time.Time `json:"due_at"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsLogged reports whether an actual completion time has been recorded.
// Logged tasks are the ground truth for training and insights.
func (t *Task) IsLogged() bool {
	return t != nil && t.ActualTime != nil
}

// Outcome is a single training example: task attributes plus the observed
// completion time.
type Outcome struct {
	TaskAttributes
	ActualTime float64 `json:"actual_time"`
}

// Outcome converts a logged task into a training example. Returns false when
// no actual time has been recorded yet.
func (t *Task) Outcome() (Outcome, bool) {
	if !t.IsLogged() {
		return Outcome{}, false
	}
	return Outcome{TaskAttributes: t.TaskAttributes, ActualTime: *t.ActualTime}, true
}
