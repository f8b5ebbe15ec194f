package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
)

// JSONL is a Store backed by an append-only JSONL file. Each line is a
// JSON-serialized loop.LogEntry. The file is synced after every Append so a
// killed visor leaves a readable journal behind.
//
// File name: "<unix-timestamp>-<session-uuid>.jsonl". The timestamp prefix
// keeps names in chronological order for EnforceRetention.
type JSONL struct {
	file      *os.File
	path      string
	mu        sync.Mutex
	idx       *fileIndex
	sessionID string
	startedAt time.Time
	pos       int64 // current write position in the file
}

// NewJSONL creates a new session journal in dir. dir is created with
// os.MkdirAll if it does not exist.
func NewJSONL(dir string) (*JSONL, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: mkdir %q: %w", dir, err)
	}
	now := time.Now()
	sessionID := uuid.NewString()
	path := filepath.Join(dir, fmt.Sprintf("%d-%s.jsonl", now.Unix(), sessionID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	pos, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("store: seek: %w", err)
	}
	return &JSONL{
		file:      f,
		path:      path,
		idx:       newFileIndex(),
		sessionID: sessionID,
		startedAt: now,
		pos:       pos,
	}, nil
}

// OpenJSONL opens an existing journal read-only and rebuilds its index, so a
// finished session can be summarised and queried by keyword. Malformed lines
// are logged and skipped. Append on the returned store fails.
func OpenJSONL(path string) (*JSONL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}

	j := &JSONL{file: f, path: path, idx: newFileIndex()}
	j.sessionID, j.startedAt = parseJournalName(path)

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			data := bytes.TrimSuffix(line, []byte("\n"))
			var entry loop.LogEntry
			if uerr := json.Unmarshal(data, &entry); uerr != nil {
				log.Printf("store: skipping malformed line at offset %d in %s: %v", j.pos, path, uerr)
			} else {
				j.idx.onAppend(entry, j.pos, int64(len(data)))
			}
			j.pos += int64(len(line))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("store: read %q: %w", path, err)
		}
	}
	return j, nil
}

// LatestJournal returns the path of the newest journal in dir.
func LatestJournal(dir string) (string, error) {
	files, err := journalFiles(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("store: no journals in %q", dir)
	}
	return filepath.Join(dir, files[len(files)-1]), nil
}

// parseJournalName splits "<unix>-<session>.jsonl" into its session id and
// start time. Names that do not follow the pattern yield the bare name.
func parseJournalName(path string) (string, time.Time) {
	base := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	ts, id, ok := strings.Cut(base, "-")
	if !ok {
		return base, time.Time{}
	}
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return base, time.Time{}
	}
	return id, time.Unix(sec, 0)
}

// Path returns the journal file path.
func (j *JSONL) Path() string { return j.path }

// Append serializes entry as a JSON line, writes it to the file, and syncs.
// It is safe to call from multiple goroutines.
func (j *JSONL) Append(entry loop.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}
	lineLen := int64(len(data))
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	lineOffset := j.pos
	if _, err := j.file.Write(data); err != nil {
		return fmt.Errorf("store: write: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("store: sync: %w", err)
	}
	j.pos += int64(len(data))
	j.idx.onAppend(entry, lineOffset, lineLen)
	return nil
}

// Close closes the underlying file.
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// Keywords returns one summary per keyword seen this session, in the order
// the keywords first appeared. The returned slice is a copy.
func (j *JSONL) Keywords() ([]KeywordSummary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	result := make([]KeywordSummary, 0, len(j.idx.order))
	for _, kw := range j.idx.order {
		result = append(result, *j.idx.keywords[kw])
	}
	return result, nil
}

// KeywordLog returns every journaled entry carrying keyword, reading the
// lines back from the file through the in-memory offset index. Malformed
// lines are logged and skipped.
func (j *JSONL) KeywordLog(keyword string) ([]loop.LogEntry, error) {
	j.mu.Lock()
	refs := append([]lineRef(nil), j.idx.lines[keyword]...)
	j.mu.Unlock()
	if len(refs) == 0 {
		return nil, fmt.Errorf("store: keyword %q not found", keyword)
	}

	entries := make([]loop.LogEntry, 0, len(refs))
	for _, ref := range refs {
		buf := make([]byte, ref.length)
		if _, err := j.file.ReadAt(buf, ref.offset); err != nil {
			return nil, fmt.Errorf("store: read keyword %q: %w", keyword, err)
		}
		var e loop.LogEntry
		if err := json.Unmarshal(buf, &e); err != nil {
			log.Printf("store: skipping malformed line for keyword %q: %v", keyword, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// SessionSummary returns metadata about the current session derived from
// the in-memory index.
func (j *JSONL) SessionSummary() (SessionSummary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	counts := make(map[loop.LogKind]int, len(j.idx.counts))
	for k, n := range j.idx.counts {
		counts[k] = n
	}
	return SessionSummary{
		SessionID:   j.sessionID,
		StartedAt:   j.startedAt,
		Entries:     j.idx.entries,
		Counts:      counts,
		LastAsset:   j.idx.lastAsset,
		LastKeyword: j.idx.lastKeyword,
	}, nil
}

// EnforceRetention removes the oldest journal files in dir, keeping at most
// maxKeep files. If maxKeep is 0, no files are removed. Returns nil if dir
// does not exist or is empty.
func EnforceRetention(dir string, maxKeep int) error {
	if maxKeep <= 0 {
		return nil
	}
	files, err := journalFiles(dir)
	if err != nil {
		return err
	}
	for i := 0; i < len(files)-maxKeep; i++ {
		path := filepath.Join(dir, files[i])
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("store: remove %q: %w", path, err)
		}
	}
	return nil
}

// journalFiles lists the journal names in dir, oldest first. A missing dir
// has no journals.
func journalFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files) // timestamp-prefixed names sort chronologically
	return files, nil
}
