package monitor

import "time"

type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	ModelStore bool      `json:"model_store"`
	LastCheck  time.Time `json:"last_check"`
}
