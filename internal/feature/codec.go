package feature

import "github.com/studyflow/backend/domain"

// Feature column order. The model is trained against this exact layout, so it
// must never change between training and inference.
const (
	colCourse = iota
	colTaskType
	colDifficulty
	colAvailableTime
	colDeadlineDays
	numColumns
)

const numNumericColumns = 3

// Codec converts task attributes into numeric feature vectors. It owns the
// categorical vocabularies and the numeric normalization parameters.
type Codec struct {
	courses   *Vocabulary
	taskTypes *Vocabulary
	scaler    *Scaler
}

func NewCodec() *Codec {
	return &Codec{
		courses:   NewVocabulary(),
		taskTypes: NewVocabulary(),
		scaler:    NewScaler(),
	}
}

// EncodeTraining extends the vocabularies with this batch, refits the
// normalization parameters, and encodes every row. Returns the feature matrix
// and the actual-time targets in matching order.
func (c *Codec) EncodeTraining(rows []domain.Outcome) ([][]float64, []float64, error) {
	if len(rows) == 0 {
		return nil, nil, domain.ErrInvalidTrainingData
	}

	courses := make([]string, len(rows))
	taskTypes := make([]string, len(rows))
	numeric := make([][]float64, numNumericColumns)
	for i := range numeric {
		numeric[i] = make([]float64, len(rows))
	}
	for i, row := range rows {
		if row.Course == "" || row.TaskType == "" {
			return nil, nil, domain.ErrInvalidTrainingData
		}
		courses[i] = row.Course
		taskTypes[i] = row.TaskType
		numeric[0][i] = float64(row.Difficulty)
		numeric[1][i] = row.TotalAvailableTime
		numeric[2][i] = float64(row.DeadlineDays)
	}

	c.courses.Extend(courses)
	c.taskTypes.Extend(taskTypes)
	c.scaler.Fit(numeric)

	matrix := make([][]float64, len(rows))
	targets := make([]float64, len(rows))
	for i, row := range rows {
		vec, err := c.EncodeRow(row.TaskAttributes)
		if err != nil {
			return nil, nil, err
		}
		matrix[i] = vec
		targets[i] = row.ActualTime
	}
	return matrix, targets, nil
}

// EncodeRow encodes a single task in inference mode: the vocabulary is not
// extended (novel values map to the unknown code) and the normalization
// parameters from the last fit are applied unchanged. Encoding before any fit
// reports the model as not ready.
func (c *Codec) EncodeRow(attrs domain.TaskAttributes) ([]float64, error) {
	scaled, err := c.scaler.Transform([]float64{
		float64(attrs.Difficulty),
		attrs.TotalAvailableTime,
		float64(attrs.DeadlineDays),
	})
	if err != nil {
		return nil, err
	}

	vec := make([]float64, numColumns)
	vec[colCourse] = float64(c.courses.Code(attrs.Course))
	vec[colTaskType] = float64(c.taskTypes.Code(attrs.TaskType))
	vec[colDifficulty] = scaled[0]
	vec[colAvailableTime] = scaled[1]
	vec[colDeadlineDays] = scaled[2]
	return vec, nil
}

// Ready reports whether the codec can encode in inference mode.
func (c *Codec) Ready() bool {
	return c.scaler.Fitted()
}

// Courses exposes the course vocabulary.
func (c *Codec) Courses() *Vocabulary {
	return c.courses
}

// TaskTypes exposes the task-type vocabulary.
func (c *Codec) TaskTypes() *Vocabulary {
	return c.taskTypes
}
