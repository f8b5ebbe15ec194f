// Package store persists visor log events to a JSONL session journal and
// provides indexed read-back per trigger keyword. Each visor run writes one
// journal; `visor log` reopens the newest one with OpenJSONL.
package store

import (
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
)

// Writer persists log events to durable storage.
type Writer interface {
	Append(entry loop.LogEntry) error
	Close() error
}

// Reader retrieves journaled data for the current session.
type Reader interface {
	Keywords() ([]KeywordSummary, error)
	KeywordLog(keyword string) ([]loop.LogEntry, error)
	SessionSummary() (SessionSummary, error)
}

// Store combines Writer and Reader into a single session-scoped handle.
type Store interface {
	Writer
	Reader
}

// KeywordSummary aggregates the journal entries for one trigger keyword.
type KeywordSummary struct {
	Keyword   string
	Triggers  int // keyword events received
	Plays     int // animations played for the keyword
	Misses    int // keyword events with no asset
	LastAsset string
	FirstAt   time.Time
	LastAt    time.Time
}

// SessionSummary summarises the current session.
type SessionSummary struct {
	SessionID   string
	StartedAt   time.Time
	Entries     int
	Counts      map[loop.LogKind]int
	LastAsset   string
	LastKeyword string
}
