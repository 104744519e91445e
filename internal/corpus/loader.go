// Package corpus loads the bootstrap training corpus from a CSV file with
// the columns course, task_type, difficulty, total_available_time,
// deadline_days, actual_time.
package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/studyflow/backend/domain"
)

var requiredColumns = []string{
	"course",
	"task_type",
	"difficulty",
	"total_available_time",
	"deadline_days",
	"actual_time",
}

// LoadFile reads a bootstrap corpus from disk. A missing file is not an
// error: the caller decides whether to boot untrained.
func LoadFile(path string) ([]domain.Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load parses corpus rows from a CSV stream. The header row is required and
// may carry the columns in any order.
func Load(r io.Reader) ([]domain.Outcome, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, domain.ErrInvalidTrainingData
		}
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, domain.WrapError(domain.ErrCodeInvalidTraining,
				"training corpus is missing required columns",
				fmt.Errorf("column %q not found", col))
		}
	}

	var outcomes []domain.Outcome
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		outcome, err := parseRecord(record, index)
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeInvalidTraining,
				"training corpus is missing required columns",
				fmt.Errorf("line %d: %w", line, err))
		}
		outcomes = append(outcomes, outcome)
	}

	if len(outcomes) == 0 {
		return nil, domain.ErrInvalidTrainingData
	}
	return outcomes, nil
}

func parseRecord(record []string, index map[string]int) (domain.Outcome, error) {
	var o domain.Outcome
	var err error

	o.Course = record[index["course"]]
	o.TaskType = record[index["task_type"]]
	if o.Course == "" || o.TaskType == "" {
		return o, fmt.Errorf("empty categorical value")
	}

	if o.Difficulty, err = strconv.Atoi(record[index["difficulty"]]); err != nil {
		return o, fmt.Errorf("difficulty: %w", err)
	}
	if o.TotalAvailableTime, err = strconv.ParseFloat(record[index["total_available_time"]], 64); err != nil {
		return o, fmt.Errorf("total_available_time: %w", err)
	}
	if o.DeadlineDays, err = strconv.Atoi(record[index["deadline_days"]]); err != nil {
		return o, fmt.Errorf("deadline_days: %w", err)
	}
	if o.ActualTime, err = strconv.ParseFloat(record[index["actual_time"]], 64); err != nil {
		return o, fmt.Errorf("actual_time: %w", err)
	}
	return o, nil
}
