package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
	"github.com/LISSConsulting/LISSTech.Visor/internal/notify"
	"github.com/LISSConsulting/LISSTech.Visor/internal/store"
	"github.com/LISSConsulting/LISSTech.Visor/internal/tui"
)

// runConsole runs the visor without the dashboard. Events are drained to out
// as styled log lines and recorded by the tracker.
func runConsole(ctx context.Context, events chan loop.LogEntry, st *sessionTracker, out io.Writer, theme tui.Theme, run func(context.Context) error) error {
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for entry := range events {
			st.trackEntry(entry)
			fmt.Fprintln(out, theme.RenderLogLine(entry, 0))
		}
	}()

	err := run(ctx)
	close(events)
	<-drainDone

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runTUI runs the visor with the dashboard. Events pass through the tracker
// before reaching the model; quitting the dashboard cancels the run and waits
// for the recognizer to be reaped.
func runTUI(ctx context.Context, cancel context.CancelFunc, events chan loop.LogEntry, st *sessionTracker, newModel func(<-chan loop.LogEntry) tui.Model, run func(context.Context) error) error {
	tuiEvents := make(chan loop.LogEntry, 256)
	program := tea.NewProgram(newModel(tuiEvents), tea.WithAltScreen())

	forwardDone := make(chan struct{})
	go func() {
		defer close(forwardDone)
		forwardEvents(events, tuiEvents, st)
	}()

	errCh := make(chan error, 1)
	go func() {
		defer close(tuiEvents)
		runErr := run(ctx)
		close(events)
		<-forwardDone
		errCh <- runErr
	}()

	tuiErr := finishTUI(program)
	cancel()
	runErr := <-errCh

	if tuiErr != nil {
		return tuiErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// forwardEvents records every entry from in and hands it to out without
// blocking; the dashboard may fall behind but never stalls the loop.
func forwardEvents(in <-chan loop.LogEntry, out chan<- loop.LogEntry, st *sessionTracker) {
	for entry := range in {
		st.trackEntry(entry)
		select {
		case out <- entry:
		default:
		}
	}
}

// finishTUI runs the bubbletea program and returns any loop error.
// Context cancellation errors are suppressed since they indicate normal
// shutdown (user quit, signal).
func finishTUI(program *tea.Program) error {
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	if m, ok := finalModel.(tui.Model); ok && m.Err() != nil {
		if errors.Is(m.Err(), context.Canceled) {
			return nil
		}
		return m.Err()
	}

	return nil
}

// sessionTracker journals every entry of a run and passes the notable ones
// to the notifier. Both are optional.
type sessionTracker struct {
	journal    store.Store
	journalDir string
	retention  int
	notifier   *notify.Notifier

	stopped   bool
	appendErr error
	closed    bool
}

// trackEntry must only be called from one goroutine.
func (s *sessionTracker) trackEntry(entry loop.LogEntry) {
	if s.journal != nil && s.appendErr == nil {
		if err := s.journal.Append(entry); err != nil {
			s.appendErr = err
			log.Printf("visor: journal disabled: %v", err)
		}
	}

	if entry.Kind == loop.LogStopped {
		s.stopped = true
	}
	// Once stopped, the recognizer exit is the shutdown we asked for.
	if s.notifier != nil && !(s.stopped && entry.Kind == loop.LogRecognizerExit) {
		s.notifier.Hook(entry)
	}
}

// finish waits for pending notifications, closes the journal and trims old
// journals down to the retention limit. It is safe to call more than once.
func (s *sessionTracker) finish(runErr error) {
	if s.closed {
		return
	}
	s.closed = true

	if s.notifier != nil {
		s.notifier.Wait()
	}
	if s.journal == nil {
		return
	}
	if runErr != nil {
		_ = s.journal.Append(loop.LogEntry{Kind: loop.LogError, Message: runErr.Error()})
	}
	if err := s.journal.Close(); err != nil {
		log.Printf("visor: close journal: %v", err)
	}
	if err := store.EnforceRetention(s.journalDir, s.retention); err != nil {
		log.Printf("visor: journal retention: %v", err)
	}
}

// summary renders the per-keyword totals read back from the journal. It is
// empty when journaling is off or nothing was recorded.
func (s *sessionTracker) summary() string {
	if s.journal == nil {
		return ""
	}
	session, err := s.journal.SessionSummary()
	if err != nil || session.Entries == 0 {
		return ""
	}
	keywords, err := s.journal.Keywords()
	if err != nil {
		return ""
	}
	return formatSessionSummary(session, keywords)
}

// formatSessionSummary renders the end-of-run report printed in console mode.
func formatSessionSummary(session store.SessionSummary, keywords []store.KeywordSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nSession %s\n", session.SessionID)
	b.WriteString(strings.Repeat("─", 30) + "\n")
	fmt.Fprintf(&b, "  entries   %d\n", session.Entries)
	fmt.Fprintf(&b, "  plays     %d\n", session.Counts[loop.LogPlay])
	fmt.Fprintf(&b, "  idle      %d\n", session.Counts[loop.LogIdle])
	fmt.Fprintf(&b, "  misses    %d\n", session.Counts[loop.LogNoAsset])
	fmt.Fprintf(&b, "  quirky    %d\n", session.Counts[loop.LogQuirky])
	fmt.Fprintf(&b, "  glitches  %d\n", session.Counts[loop.LogGlitch])

	if len(keywords) == 0 {
		return b.String()
	}
	b.WriteString("\nKeywords\n")
	width := 0
	for _, k := range keywords {
		width = max(width, len(k.Keyword))
	}
	for _, k := range keywords {
		fmt.Fprintf(&b, "  %-*s  %d triggers, %d plays, %d misses", width, k.Keyword, k.Triggers, k.Plays, k.Misses)
		if k.LastAsset != "" {
			fmt.Fprintf(&b, "  last %s", k.LastAsset)
		}
		b.WriteString("\n")
	}
	return b.String()
}
