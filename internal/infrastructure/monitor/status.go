package monitor

import "time"

type Status struct {
	PostgreSQL bool `json:"postgresql"`
	Redis      bool `json:"redis"`
	Journal    bool `json:"journal"`
	// Aggregate journal stats only; the health endpoint is unauthenticated.
	JournalSize        int       `json:"journal_size"`
	JournalLastApplied time.Time `json:"journal_last_applied"`
	LastCheck          time.Time `json:"last_check"`
}
