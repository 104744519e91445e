package feature

import "time"

type vocabularySnapshot struct {
	Codes map[string]int `json:"codes"`
	Next  int            `json:"next"`
}

type scalerSnapshot struct {
	Means  []float64 `json:"means"`
	Scales []float64 `json:"scales"`
	Fitted bool      `json:"fitted"`
}

// Snapshot captures the full fitted state of the estimation pipeline so it
// can be persisted and reloaded across process restarts without losing known
// categories or normalization parameters.
type Snapshot struct {
	Courses   vocabularySnapshot `json:"courses"`
	TaskTypes vocabularySnapshot `json:"task_types"`
	Scaler    scalerSnapshot     `json:"scaler"`
	Forest    *Forest            `json:"forest,omitempty"`
	TrainedAt time.Time          `json:"trained_at"`
	Rows      int                `json:"rows"`
}

// Snapshot extracts the codec's current state.
func (c *Codec) Snapshot() Snapshot {
	return Snapshot{
		Courses:   c.courses.snapshot(),
		TaskTypes: c.taskTypes.snapshot(),
		Scaler:    c.scaler.snapshot(),
	}
}

// RestoreCodec rebuilds a codec from a persisted snapshot.
func RestoreCodec(snap Snapshot) *Codec {
	return &Codec{
		courses:   restoreVocabulary(snap.Courses),
		taskTypes: restoreVocabulary(snap.TaskTypes),
		scaler:    restoreScaler(snap.Scaler),
	}
}
