// Package estimation wraps the feature codec and regression forest behind a
// single process-wide estimator shared by every owner.
package estimation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/studyflow/backend/domain"
	"github.com/studyflow/backend/internal/feature"
)

// MinPrediction is the minimum plausible work unit in hours. Predictions are
// floored here as a domain policy, whatever the regressor outputs.
const MinPrediction = 0.5

// Regressor evaluates an encoded feature vector.
type Regressor interface {
	Predict(vec []float64) float64
}

// SnapshotStore persists the fitted model state across restarts.
type SnapshotStore interface {
	Save(ctx context.Context, snap feature.Snapshot) error
	// Load returns nil when no snapshot has been saved yet.
	Load(ctx context.Context) (*feature.Snapshot, error)
}

// Estimator learns the mapping from task attributes to completion time. One
// mutable instance is shared process-wide, so Train is serialized against
// Predict with a read-write lock: a prediction must never observe partially
// updated normalization parameters.
type Estimator struct {
	mu        sync.RWMutex
	codec     *feature.Codec
	regressor Regressor
	forestCfg feature.ForestConfig
	store     SnapshotStore
	logger    *zap.Logger
	trainedAt time.Time
	rows      int
}

// New builds an untrained estimator. The snapshot store may be nil, in which
// case fitted state lives only in memory.
func New(store SnapshotStore, cfg feature.ForestConfig, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		codec:     feature.NewCodec(),
		forestCfg: cfg,
		store:     store,
		logger:    logger,
	}
}

// Restore loads the last persisted snapshot, if any, so a restarted process
// keeps its known categories and fitted regression state.
func (e *Estimator) Restore(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	snap, err := e.store.Load(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.codec = feature.RestoreCodec(*snap)
	if snap.Forest != nil {
		e.regressor = snap.Forest
	}
	e.trainedAt = snap.TrainedAt
	e.rows = snap.Rows
	e.logger.Info("estimation model restored",
		zap.Time("trained_at", snap.TrainedAt),
		zap.Int("rows", snap.Rows),
		zap.Int("courses", e.codec.Courses().Size()),
		zap.Int("task_types", e.codec.TaskTypes().Size()))
	return nil
}

// Train refits the whole pipeline on the supplied corpus. The fit is a full
// replacement: vocabulary codes carry forward, but normalization parameters
// and the regression forest are rebuilt from scratch on exactly this corpus.
func (e *Estimator) Train(ctx context.Context, rows []domain.Outcome) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	matrix, targets, err := e.codec.EncodeTraining(rows)
	if err != nil {
		return err
	}

	forest := feature.GrowForest(e.forestCfg, matrix, targets)
	e.regressor = forest
	e.trainedAt = time.Now()
	e.rows = len(rows)

	e.logger.Info("estimation model trained",
		zap.Int("rows", len(rows)),
		zap.Int("courses", e.codec.Courses().Size()),
		zap.Int("task_types", e.codec.TaskTypes().Size()))

	if e.store == nil {
		return nil
	}
	snap := e.codec.Snapshot()
	snap.Forest = forest
	snap.TrainedAt = e.trainedAt
	snap.Rows = e.rows
	if err := e.store.Save(ctx, snap); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to persist model snapshot", err)
	}
	return nil
}

// Predict encodes one task in inference mode and evaluates the regressor.
// Calling it before a successful Train (or Restore of a trained snapshot)
// reports the model as not ready.
func (e *Estimator) Predict(ctx context.Context, attrs domain.TaskAttributes) (float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.regressor == nil {
		return 0, domain.ErrModelNotReady
	}
	vec, err := e.codec.EncodeRow(attrs)
	if err != nil {
		return 0, err
	}

	predicted := e.regressor.Predict(vec)
	if predicted < MinPrediction {
		predicted = MinPrediction
	}
	return predicted, nil
}

// Ready reports whether Predict can serve.
func (e *Estimator) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.regressor != nil && e.codec.Ready()
}

// TrainedAt returns when the current fit was produced, zero if untrained.
func (e *Estimator) TrainedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.trainedAt
}
