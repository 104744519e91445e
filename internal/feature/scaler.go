package feature

import (
	"gonum.org/v1/gonum/stat"

	"github.com/studyflow/backend/domain"
)

// Scaler standardizes numeric columns to zero mean and unit scale. Parameters
// are fitted from the training corpus and held fixed until the next fit, so
// every prediction between trainings applies the same normalization.
type Scaler struct {
	means  []float64
	scales []float64
	fitted bool
}

func NewScaler() *Scaler {
	return &Scaler{}
}

// Fit computes mean and scale per column. Zero-variance columns get scale 1
// so a degenerate corpus still encodes without dividing by zero.
func (s *Scaler) Fit(columns [][]float64) {
	s.means = make([]float64, len(columns))
	s.scales = make([]float64, len(columns))
	for i, col := range columns {
		mean := stat.Mean(col, nil)
		scale := stat.PopStdDev(col, nil)
		if scale == 0 {
			scale = 1
		}
		s.means[i] = mean
		s.scales[i] = scale
	}
	s.fitted = true
}

// Transform applies the fitted parameters to one row of numeric values.
func (s *Scaler) Transform(values []float64) ([]float64, error) {
	if !s.fitted {
		return nil, domain.ErrModelNotReady
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - s.means[i]) / s.scales[i]
	}
	return out, nil
}

// Fitted reports whether normalization parameters are available.
func (s *Scaler) Fitted() bool {
	return s.fitted
}

func (s *Scaler) snapshot() scalerSnapshot {
	return scalerSnapshot{
		Means:  append([]float64(nil), s.means...),
		Scales: append([]float64(nil), s.scales...),
		Fitted: s.fitted,
	}
}

func restoreScaler(snap scalerSnapshot) *Scaler {
	return &Scaler{
		means:  append([]float64(nil), snap.Means...),
		scales: append([]float64(nil), snap.Scales...),
		fitted: snap.Fitted,
	}
}
