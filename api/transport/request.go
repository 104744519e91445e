package transport

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TTL      int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

type EstimateRequest struct {
	Course             string  `json:"course"`
	TaskType           string  `json:"task_type"`
	Difficulty         int     `json:"difficulty"`
	TotalAvailableTime float64 `json:"total_available_time"`
	DeadlineDays       int     `json:"deadline_days"`
}

// TaskCreateRequest accepts the due instant either as a single RFC3339
// due_at or as separate due_date (2006-01-02) and due_time (15:04,
// defaulting to 23:59) fields.
type TaskCreateRequest struct {
	EstimateRequest
	DueAt   string `json:"due_at"`
	DueDate string `json:"due_date"`
	DueTime string `json:"due_time"`
}

type ActualTimeRequest struct {
	ActualTime float64 `json:"actual_time"`
}
