package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LISSConsulting/LISSTech.Visor/internal/config"
	"github.com/LISSConsulting/LISSTech.Visor/internal/deck"
	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
	"github.com/LISSConsulting/LISSTech.Visor/internal/store"
	"github.com/LISSConsulting/LISSTech.Visor/internal/tui"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Launch the recognizer and drive the visor until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			noTUI, _ := cmd.Flags().GetBool("no-tui")
			return executeRun(path, noTUI)
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold visor.toml and the animations directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			created, err := config.Scaffold(dir)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatScaffoldResult(created))
			return nil
		},
	}
}

func deckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deck",
		Short: "List the animation keywords and how many assets each has",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			dir := cfg.Resolve(cfg.Animations.Dir)
			d, err := deck.Load(dir, cfg.Animations.Extensions, deck.NewRand(cfg.Scheduler.Seed))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatDeck(dir, d, cfg.Animations.IdleKeyword, cfg.Animations.LoadingKeyword))
			return nil
		},
	}
}

func logCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [keyword]",
		Short: "Summarise the latest session journal, or list one keyword's entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			latest, err := store.LatestJournal(cfg.Resolve(cfg.Journal.Dir))
			if err != nil {
				return err
			}
			j, err := store.OpenJSONL(latest)
			if err != nil {
				return err
			}
			defer j.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Journal %s\n", j.Path())
			if len(args) == 0 {
				session, err := j.SessionSummary()
				if err != nil {
					return err
				}
				keywords, err := j.Keywords()
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatSessionSummary(session, keywords))
				return nil
			}

			entries, err := j.KeywordLog(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatKeywordLog(entries, tui.NewTheme(cfg.TUI.AccentColor)))
			return nil
		},
	}
}

// formatKeywordLog renders journaled entries one styled line each.
func formatKeywordLog(entries []loop.LogEntry, theme tui.Theme) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(theme.RenderLogLine(e, 0))
		b.WriteString("\n")
	}
	return b.String()
}

// formatScaffoldResult lists the files init created.
func formatScaffoldResult(created []string) string {
	if len(created) == 0 {
		return "All files already exist, nothing to create.\n"
	}
	var b strings.Builder
	for _, path := range created {
		fmt.Fprintf(&b, "Created %s\n", path)
	}
	return b.String()
}

// formatDeck renders the loaded deck as an aligned table and warns about
// missing idle or loading piles.
func formatDeck(dir string, d *deck.Deck, idle, loading string) string {
	var b strings.Builder
	keywords := d.Keywords()
	if len(keywords) == 0 {
		fmt.Fprintf(&b, "No animations found in %s\n", dir)
		return b.String()
	}

	width := 0
	total := 0
	for _, kw := range keywords {
		width = max(width, len(kw))
		total += d.Size(kw)
	}

	fmt.Fprintf(&b, "Animations in %s\n", dir)
	b.WriteString(strings.Repeat("─", 30) + "\n")
	for _, kw := range keywords {
		fmt.Fprintf(&b, "  %-*s  %d\n", width, kw, d.Size(kw))
	}
	fmt.Fprintf(&b, "%d keywords, %d assets\n", len(keywords), total)

	for _, special := range []string{idle, loading} {
		if special != "" && d.Size(special) == 0 {
			fmt.Fprintf(&b, "warning: no %q animations\n", special)
		}
	}
	return b.String()
}
