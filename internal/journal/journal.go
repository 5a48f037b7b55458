// Package journal records every processed sidecar command in SQLite.
package journal

import (
	"time"

	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

// Entry is one processed command line.
type Entry struct {
	ID        string
	CommandID string
	Func      sidecar.Func
	// Decoded is false when the line was not a valid command; CommandID is
	// then the synthesized response id.
	Decoded       bool
	Success       bool
	Error         string
	RequestBytes  int
	ResponseBytes int
	Duration      time.Duration
	CreatedAt     time.Time
}

// FromExchange converts a processed exchange to an Entry.
func FromExchange(ex sidecar.Exchange) Entry {
	e := Entry{
		CommandID:     ex.Response.ID,
		Decoded:       ex.Command != nil,
		Success:       ex.Response.Success,
		Error:         ex.Response.Error,
		RequestBytes:  len(ex.Line),
		ResponseBytes: len(ex.Response.Data),
		Duration:      ex.Duration,
	}
	if ex.Command != nil {
		e.Func = ex.Command.Func
	}
	return e
}
