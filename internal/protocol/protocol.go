package protocol

import (
	"github.com/RichardKnop/nacho/internal/nacho"
)

// Very simplistic TCP protocol, JSON messages terminated by newlines.

const (
	RequestPing  = "ping"
	RequestSQL   = "sql"
	RequestStats = "stats"
)

type Request struct {
	Type string `json:"type"` // "ping", "sql", "stats"
	SQL  string `json:"sql,omitempty"`
}

type Response struct {
	Kind         string       `json:"kind,omitempty"`
	Success      bool         `json:"success"`
	Error        string       `json:"error,omitempty"`
	Fatal        bool         `json:"fatal,omitempty"`
	Rows         []nacho.Row  `json:"rows,omitempty"`
	RowsAffected int          `json:"rows_affected,omitempty"`
	Message      string       `json:"message,omitempty"`
	Stats        *nacho.Stats `json:"stats,omitempty"`
}
