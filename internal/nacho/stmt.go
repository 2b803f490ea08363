package nacho

import (
	"context"
)

type StatementKind int

const (
	Insert StatementKind = iota + 1
	Select
)

func (k StatementKind) String() string {
	switch k {
	case Insert:
		return "INSERT"
	case Select:
		return "SELECT"
	default:
		return "UNKNOWN"
	}
}

// Statement is a request for the engine. For Insert the row must already
// be validated (field lengths within limits).
type Statement struct {
	Kind StatementKind
	Row  Row
}

type Iterator interface {
	Next(context.Context) bool
	Row() Row
	Err() error
}

type StatementResult struct {
	Kind         StatementKind
	RowsAffected int
	Rows         Iterator
}
