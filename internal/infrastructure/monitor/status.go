package monitor

import "time"

type Service struct {
	Driver string `json:"driver,omitempty"`
	Online bool   `json:"online"`
}

// Status is the cached result of the last round of checks.
// Redis is nil when no Redis server is configured.
type Status struct {
	Store     Service   `json:"store"`
	Redis     *Service  `json:"redis,omitempty"`
	LastCheck time.Time `json:"last_check"`
}
