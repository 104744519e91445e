package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studyflow/backend/domain"
	"github.com/studyflow/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, user_id, course, task_type, difficulty, total_available_time, deadline_days, predicted_time, actual_time, due_at, status, created_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = $1
	ORDER BY due_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}

	const query = `
	INSERT INTO tasks (id, user_id, course, task_type, difficulty, total_available_time, deadline_days, predicted_time, due_at, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Course,
		task.TaskType,
		task.Difficulty,
		task.TotalAvailableTime,
		task.DeadlineDays,
		task.PredictedTime,
		task.DueAt,
		task.Status,
	).Scan(&task.CreatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

// SetActualTime writes at most once: the predicate keeps recorded outcomes
// immutable so the training corpus is never rewritten.
func (r *taskRepository) SetActualTime(ctx context.Context, id string, hours float64) error {
	const query = `
	UPDATE tasks
	SET actual_time = $2
	WHERE id = $1 AND actual_time IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id, hours)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrActualTimeSet
	}
	return nil
}

// Complete enforces the one-way pending -> completed transition in SQL.
func (r *taskRepository) Complete(ctx context.Context, id string) error {
	const query = `
	UPDATE tasks
	SET status = $2
	WHERE id = $1 AND status = $3
	`
	tag, err := r.pool.Exec(ctx, query, id, domain.StatusCompleted, domain.StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrAlreadyCompleted
	}
	return nil
}

func (r *taskRepository) ListLogged(ctx context.Context) ([]domain.Outcome, error) {
	const query = `
	SELECT course, task_type, difficulty, total_available_time, deadline_days, actual_time
	FROM tasks
	WHERE actual_time IS NOT NULL
	ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []domain.Outcome
	for rows.Next() {
		var o domain.Outcome
		if err := rows.Scan(
			&o.Course,
			&o.TaskType,
			&o.Difficulty,
			&o.TotalAvailableTime,
			&o.DeadlineDays,
			&o.ActualTime,
		); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Course,
		&task.TaskType,
		&task.Difficulty,
		&task.TotalAvailableTime,
		&task.DeadlineDays,
		&task.PredictedTime,
		&task.ActualTime,
		&task.DueAt,
		&task.Status,
		&task.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}
