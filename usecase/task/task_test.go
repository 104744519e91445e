package task

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyflow/backend/domain"
	"github.com/studyflow/backend/internal/feature"
	"github.com/studyflow/backend/usecase/estimation"
)

type fakeTaskRepo struct {
	byID   map[string]*domain.Task
	nextID int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{byID: make(map[string]*domain.Task)}
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	task, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (r *fakeTaskRepo) ListByOwner(_ context.Context, userID string) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range r.byID {
		if task.UserID == userID {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.nextID++
	stored := *task
	stored.ID = fmt.Sprintf("task-%d", r.nextID)
	stored.CreatedAt = time.Now()
	r.byID[stored.ID] = &stored
	clone := stored
	return &clone, nil
}

func (r *fakeTaskRepo) SetActualTime(_ context.Context, id string, hours float64) error {
	task, ok := r.byID[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if task.ActualTime != nil {
		return domain.ErrActualTimeSet
	}
	task.ActualTime = &hours
	return nil
}

func (r *fakeTaskRepo) Complete(_ context.Context, id string) error {
	task, ok := r.byID[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if task.Status != domain.StatusPending {
		return domain.ErrAlreadyCompleted
	}
	task.Status = domain.StatusCompleted
	return nil
}

func (r *fakeTaskRepo) ListLogged(_ context.Context) ([]domain.Outcome, error) {
	var out []domain.Outcome
	for _, task := range r.byID {
		if outcome, ok := task.Outcome(); ok {
			out = append(out, outcome)
		}
	}
	return out, nil
}

type fakeInsightCache struct {
	values      map[string][]string
	getErr      error
	sets        int
	invalidates int
}

func newFakeInsightCache() *fakeInsightCache {
	return &fakeInsightCache{values: make(map[string][]string)}
}

func (c *fakeInsightCache) Get(_ context.Context, userID string) ([]string, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.values[userID], nil
}

func (c *fakeInsightCache) Set(_ context.Context, userID string, statements []string) error {
	c.sets++
	c.values[userID] = statements
	return nil
}

func (c *fakeInsightCache) Invalidate(_ context.Context, userID string) error {
	c.invalidates++
	delete(c.values, userID)
	return nil
}

func trainedEstimator(t *testing.T, actual float64) *estimation.Estimator {
	t.Helper()
	e := estimation.New(nil, feature.DefaultForestConfig(), zap.NewNop())
	rows := make([]domain.Outcome, 0, 6)
	for i := 1; i <= 6; i++ {
		rows = append(rows, domain.Outcome{
			TaskAttributes: domain.TaskAttributes{
				Course:             "Math",
				TaskType:           "Homework",
				Difficulty:         (i % 5) + 1,
				TotalAvailableTime: float64(i * 2),
				DeadlineDays:       i + 1,
			},
			ActualTime: actual,
		})
	}
	require.NoError(t, e.Train(context.Background(), rows))
	return e
}

func validInput(userID string) CreateTaskInput {
	return CreateTaskInput{
		UserID: userID,
		TaskAttributes: domain.TaskAttributes{
			Course:             "Math",
			TaskType:           "Homework",
			Difficulty:         3,
			TotalAvailableTime: 6,
			DeadlineDays:       4,
		},
		DueAt: time.Now().Add(48 * time.Hour),
	}
}

func TestCreateTaskStoresPrediction(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, trainedEstimator(t, 3), newFakeInsightCache(), zap.NewNop())

	task, err := uc.CreateTask(context.Background(), validInput("u1"))
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.InDelta(t, 3, task.PredictedTime, 1e-9)
	assert.Nil(t, task.ActualTime)
}

func TestCreateTaskValidation(t *testing.T) {
	uc := New(newFakeTaskRepo(), trainedEstimator(t, 3), nil, zap.NewNop())
	ctx := context.Background()

	input := validInput("")
	_, err := uc.CreateTask(ctx, input)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	input = validInput("u1")
	input.Difficulty = 6
	_, err = uc.CreateTask(ctx, input)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	input = validInput("u1")
	input.DueAt = time.Time{}
	_, err = uc.CreateTask(ctx, input)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCreateTaskModelNotReady(t *testing.T) {
	untrained := estimation.New(nil, feature.DefaultForestConfig(), zap.NewNop())
	uc := New(newFakeTaskRepo(), untrained, nil, zap.NewNop())

	_, err := uc.CreateTask(context.Background(), validInput("u1"))
	assert.ErrorIs(t, err, domain.ErrModelNotReady)
}

func TestEstimateDoesNotPersist(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, trainedEstimator(t, 3), nil, zap.NewNop())

	got, err := uc.Estimate(context.Background(), validInput("u1").TaskAttributes)
	require.NoError(t, err)
	assert.InDelta(t, 3, got, 1e-9)
	assert.Empty(t, repo.byID)
}

func TestLogActualTime(t *testing.T) {
	repo := newFakeTaskRepo()
	cache := newFakeInsightCache()
	uc := New(repo, trainedEstimator(t, 3), cache, zap.NewNop())
	ctx := context.Background()

	task, err := uc.CreateTask(ctx, validInput("u1"))
	require.NoError(t, err)

	require.NoError(t, uc.LogActualTime(ctx, "u1", task.ID, 4.5))
	assert.Equal(t, 1, cache.invalidates)

	// immutable once written
	err = uc.LogActualTime(ctx, "u1", task.ID, 5)
	assert.ErrorIs(t, err, domain.ErrActualTimeSet)

	err = uc.LogActualTime(ctx, "u1", task.ID, 0)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	err = uc.LogActualTime(ctx, "u1", "missing", 2)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestLogActualTimeOwnership(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, trainedEstimator(t, 3), nil, zap.NewNop())
	ctx := context.Background()

	task, err := uc.CreateTask(ctx, validInput("u1"))
	require.NoError(t, err)

	err = uc.LogActualTime(ctx, "intruder", task.ID, 2)
	assert.ErrorIs(t, err, domain.ErrTaskForbidden)
	assert.Nil(t, repo.byID[task.ID].ActualTime)
}

func TestCompleteTask(t *testing.T) {
	repo := newFakeTaskRepo()
	cache := newFakeInsightCache()
	uc := New(repo, trainedEstimator(t, 3), cache, zap.NewNop())
	ctx := context.Background()

	task, err := uc.CreateTask(ctx, validInput("u1"))
	require.NoError(t, err)

	require.NoError(t, uc.CompleteTask(ctx, "u1", task.ID))
	assert.Equal(t, domain.StatusCompleted, repo.byID[task.ID].Status)
	assert.Equal(t, 1, cache.invalidates)

	err = uc.CompleteTask(ctx, "u1", task.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	err = uc.CompleteTask(ctx, "other", task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskForbidden)
}

func TestListWithStatusOrdering(t *testing.T) {
	repo := newFakeTaskRepo()
	uc := New(repo, trainedEstimator(t, 3), nil, zap.NewNop())
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	mk := func(due time.Time, completed bool) string {
		input := validInput("u1")
		input.DueAt = due
		task, err := uc.CreateTask(ctx, input)
		require.NoError(t, err)
		if completed {
			require.NoError(t, uc.CompleteTask(ctx, "u1", task.ID))
		}
		return task.ID
	}

	overdue := mk(now.Add(-3*time.Hour), false)
	pending := mk(now.Add(24*time.Hour), false)
	completed := mk(now.Add(-48*time.Hour), true)

	views, err := uc.ListWithStatus(ctx, "u1", now)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, pending, views[0].ID)
	assert.Equal(t, domain.StatusPending, views[0].CurrentStatus)
	assert.Equal(t, overdue, views[1].ID)
	assert.Equal(t, domain.StatusOverdue, views[1].CurrentStatus)
	assert.InDelta(t, 3.0, views[1].HoursOverdue, 1e-9)
	assert.Equal(t, completed, views[2].ID)
	assert.Equal(t, domain.StatusCompleted, views[2].CurrentStatus)
}

func TestInsightsCaching(t *testing.T) {
	repo := newFakeTaskRepo()
	cache := newFakeInsightCache()
	uc := New(repo, trainedEstimator(t, 3), cache, zap.NewNop())
	ctx := context.Background()

	first, err := uc.Insights(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{domain.NoInsightsMessage}, first)
	assert.Equal(t, 1, cache.sets)

	// second read is served from the cache
	second, err := uc.Insights(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
}

func TestInsightsCacheFailureDegradesToMiss(t *testing.T) {
	repo := newFakeTaskRepo()
	cache := newFakeInsightCache()
	cache.getErr = errors.New("connection refused")
	uc := New(repo, trainedEstimator(t, 3), cache, zap.NewNop())

	statements, err := uc.Insights(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{domain.NoInsightsMessage}, statements)
}

func TestRetrainMergesBootstrapAndLogged(t *testing.T) {
	repo := newFakeTaskRepo()
	estimator := estimation.New(nil, feature.DefaultForestConfig(), zap.NewNop())
	bootstrap := []domain.Outcome{
		{
			TaskAttributes: domain.TaskAttributes{
				Course: "Math", TaskType: "Homework", Difficulty: 2, TotalAvailableTime: 4, DeadlineDays: 3,
			},
			ActualTime: 2,
		},
		{
			TaskAttributes: domain.TaskAttributes{
				Course: "Math", TaskType: "Homework", Difficulty: 4, TotalAvailableTime: 8, DeadlineDays: 6,
			},
			ActualTime: 2,
		},
	}
	uc := New(repo, estimator, nil, zap.NewNop()).WithBootstrapCorpus(bootstrap)

	require.NoError(t, uc.Retrain(context.Background()))
	assert.True(t, estimator.Ready())

	got, err := estimator.Predict(context.Background(), bootstrap[0].TaskAttributes)
	require.NoError(t, err)
	assert.InDelta(t, 2, got, 1e-9)
}

func TestRetrainWithEmptyCorpus(t *testing.T) {
	repo := newFakeTaskRepo()
	estimator := estimation.New(nil, feature.DefaultForestConfig(), zap.NewNop())
	uc := New(repo, estimator, nil, zap.NewNop())

	err := uc.Retrain(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTrainingData)
}
