package modelstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyflow/backend/domain"
	"github.com/studyflow/backend/internal/feature"
)

func sampleOutcomes() []domain.Outcome {
	return []domain.Outcome{
		{
			TaskAttributes: domain.TaskAttributes{
				Course: "Math", TaskType: "Quiz", Difficulty: 2, TotalAvailableTime: 4, DeadlineDays: 3,
			},
			ActualTime: 1.5,
		},
		{
			TaskAttributes: domain.TaskAttributes{
				Course: "Physics", TaskType: "Project", Difficulty: 5, TotalAvailableTime: 12, DeadlineDays: 10,
			},
			ActualTime: 9,
		},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "model.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSnapshot() feature.Snapshot {
	codec := feature.NewCodec()
	matrix, targets, _ := codec.EncodeTraining(sampleOutcomes())
	snap := codec.Snapshot()
	snap.Forest = feature.GrowForest(feature.DefaultForestConfig(), matrix, targets)
	snap.TrainedAt = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	snap.Rows = len(targets)
	return snap
}

func TestLoadBeforeSave(t *testing.T) {
	store := openTestStore(t)

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.True(t, store.Ready())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	saved := sampleSnapshot()

	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved.TrainedAt, loaded.TrainedAt)
	assert.Equal(t, saved.Rows, loaded.Rows)
	require.NotNil(t, loaded.Forest)

	probe := []float64{1, 1, 0.2, -0.3, 0.1}
	assert.Equal(t, saved.Forest.Predict(probe), loaded.Forest.Predict(probe))
}

func TestSaveOverwritesPrevious(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := sampleSnapshot()
	first.Rows = 10
	require.NoError(t, store.Save(ctx, first))

	second := sampleSnapshot()
	second.Rows = 25
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 25, loaded.Rows)
}

func TestClosedStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "model.db"), "snapshots")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.False(t, store.Ready())
	assert.Error(t, store.Save(context.Background(), sampleSnapshot()))
}
