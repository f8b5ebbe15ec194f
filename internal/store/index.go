package store

import "github.com/LISSConsulting/LISSTech.Visor/internal/loop"

// lineRef is the byte range of one journal line, excluding the newline.
type lineRef struct {
	offset int64
	length int64
}

// fileIndex keeps in-memory counters and per-keyword byte-offset bookmarks.
// It is updated by onAppend as each LogEntry is written and lets KeywordLog
// read back only the lines it needs via file.ReadAt.
type fileIndex struct {
	entries     int
	counts      map[loop.LogKind]int
	order       []string // keywords in first-seen order
	keywords    map[string]*KeywordSummary
	lines       map[string][]lineRef
	lastAsset   string
	lastKeyword string
}

func newFileIndex() *fileIndex {
	return &fileIndex{
		counts:   make(map[loop.LogKind]int),
		keywords: make(map[string]*KeywordSummary),
		lines:    make(map[string][]lineRef),
	}
}

// onAppend updates the index when a LogEntry line has been appended.
// lineOffset is the byte offset of the first byte of the written line;
// lineLen excludes the trailing newline.
func (idx *fileIndex) onAppend(entry loop.LogEntry, lineOffset, lineLen int64) {
	idx.entries++
	idx.counts[entry.Kind]++

	switch entry.Kind {
	case loop.LogPlay, loop.LogIdle:
		if entry.Asset != "" {
			idx.lastAsset = entry.Asset
		}
	}

	if entry.Keyword == "" {
		return
	}

	ks, ok := idx.keywords[entry.Keyword]
	if !ok {
		ks = &KeywordSummary{Keyword: entry.Keyword, FirstAt: entry.Timestamp}
		idx.keywords[entry.Keyword] = ks
		idx.order = append(idx.order, entry.Keyword)
	}
	ks.LastAt = entry.Timestamp
	switch entry.Kind {
	case loop.LogKeyword:
		ks.Triggers++
		idx.lastKeyword = entry.Keyword
	case loop.LogPlay:
		ks.Plays++
		ks.LastAsset = entry.Asset
	case loop.LogNoAsset:
		ks.Misses++
	}
	idx.lines[entry.Keyword] = append(idx.lines[entry.Keyword], lineRef{offset: lineOffset, length: lineLen})
}
