package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/studyflow/backend/domain"
	"github.com/studyflow/backend/repository"
	"github.com/studyflow/backend/usecase/estimation"
)

// UseCase is the task-lifecycle and estimation engine exposed to the HTTP
// layer. Storage failures propagate to the caller; nothing here retries.
type UseCase struct {
	tasks     repository.TaskRepository
	estimator *estimation.Estimator
	insights  repository.InsightCache
	bootstrap []domain.Outcome
	logger    *zap.Logger
}

func New(tasks repository.TaskRepository, estimator *estimation.Estimator, insights repository.InsightCache, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		estimator: estimator,
		insights:  insights,
		logger:    logger,
	}
}

// WithBootstrapCorpus registers seed outcomes that are folded into every
// retraining alongside the logged outcomes from storage.
func (uc *UseCase) WithBootstrapCorpus(rows []domain.Outcome) *UseCase {
	uc.bootstrap = rows
	return uc
}

// CreateTaskInput carries the attributes of a new task plus its due instant.
type CreateTaskInput struct {
	UserID string
	domain.TaskAttributes
	DueAt time.Time
}

func (in CreateTaskInput) validate() error {
	if in.UserID == "" {
		return domain.ErrUnauthorized
	}
	if err := in.TaskAttributes.Validate(); err != nil {
		return err
	}
	if in.DueAt.IsZero() {
		return domain.NewError(domain.ErrCodeInvalid, "due date is required")
	}
	return nil
}

// Estimate predicts the completion time for the given attributes without
// touching the model's fitted state or persisting anything.
func (uc *UseCase) Estimate(ctx context.Context, attrs domain.TaskAttributes) (float64, error) {
	if err := attrs.Validate(); err != nil {
		return 0, err
	}
	return uc.estimator.Predict(ctx, attrs)
}

// CreateTask predicts the completion time and persists the task with that
// prediction. The prediction is set exactly once and never recomputed.
func (uc *UseCase) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	predicted, err := uc.estimator.Predict(ctx, input.TaskAttributes)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		UserID:         input.UserID,
		TaskAttributes: input.TaskAttributes,
		PredictedTime:  predicted,
		DueAt:          input.DueAt,
		Status:         domain.StatusPending,
	}
	return uc.tasks.Create(ctx, task)
}

// LogActualTime records the observed completion time for an owned task. The
// outcome is ground truth for training, so it can be written only once.
func (uc *UseCase) LogActualTime(ctx context.Context, userID, taskID string, hours float64) error {
	if hours <= 0 {
		return domain.NewError(domain.ErrCodeInvalid, "actual time must be positive")
	}
	if _, err := uc.ownedTask(ctx, userID, taskID); err != nil {
		return err
	}
	if err := uc.tasks.SetActualTime(ctx, taskID, hours); err != nil {
		return err
	}
	uc.invalidateInsights(ctx, userID)
	return nil
}

// CompleteTask flips an owned task pending -> completed.
func (uc *UseCase) CompleteTask(ctx context.Context, userID, taskID string) error {
	if _, err := uc.ownedTask(ctx, userID, taskID); err != nil {
		return err
	}
	if err := uc.tasks.Complete(ctx, taskID); err != nil {
		return err
	}
	uc.invalidateInsights(ctx, userID)
	return nil
}

// ListWithStatus returns the owner's tasks with their derived status, sorted
// pending, overdue, completed, each bucket by due instant ascending.
func (uc *UseCase) ListWithStatus(ctx context.Context, userID string, now time.Time) ([]domain.TaskView, error) {
	tasks, err := uc.tasks.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.BuildSchedule(tasks, now), nil
}

// Insights generates behavioral statements from the owner's logged history,
// served through the cache when available. Cache failures degrade to a miss.
func (uc *UseCase) Insights(ctx context.Context, userID string) ([]string, error) {
	if uc.insights != nil {
		cached, err := uc.insights.Get(ctx, userID)
		if err != nil {
			uc.logger.Warn("insight cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	tasks, err := uc.tasks.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	statements := domain.GenerateInsights(tasks)

	if uc.insights != nil {
		if err := uc.insights.Set(ctx, userID, statements); err != nil {
			uc.logger.Warn("insight cache write failed", zap.Error(err))
		}
	}
	return statements, nil
}

// Retrain refits the shared model on the full logged corpus plus any
// bootstrap rows. It is invoked by the periodic retrainer or the admin
// endpoint; the engine never schedules it on its own.
func (uc *UseCase) Retrain(ctx context.Context) error {
	logged, err := uc.tasks.ListLogged(ctx)
	if err != nil {
		return err
	}
	corpus := make([]domain.Outcome, 0, len(uc.bootstrap)+len(logged))
	corpus = append(corpus, uc.bootstrap...)
	corpus = append(corpus, logged...)
	return uc.estimator.Train(ctx, corpus)
}

func (uc *UseCase) ownedTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskForbidden
	}
	return task, nil
}

func (uc *UseCase) invalidateInsights(ctx context.Context, userID string) {
	if uc.insights == nil {
		return
	}
	if err := uc.insights.Invalidate(ctx, userID); err != nil {
		uc.logger.Warn("insight cache invalidation failed", zap.Error(err))
	}
}
