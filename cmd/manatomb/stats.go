package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/charts"
	"github.com/ramonehamilton/mana-tomb/internal/composition"
)

var (
	statsHTML  string
	statsWatch bool
)

// statsCmd aggregates a deck file without a server
var statsCmd = &cobra.Command{
	Use:   "stats <deck.json>",
	Short: "Print the mana curve and color distribution of a deck file",
	Long: `Reads a JSON array of card entries:

  [{"quantity": 4, "cmc": 1, "colors": ["R"]}, ...]

and prints the mana curve and color distribution as JSON. With --html the
charts are also written to a file. With --watch the command keeps running and
prints the result again whenever the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsHTML, "html", "", "Write an HTML chart page to this file")
	statsCmd.Flags().BoolVar(&statsWatch, "watch", false, "Print again whenever the deck file changes")
}

func runStats(cmd *cobra.Command, args []string) error {
	path := args[0]

	if statsWatch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchStats(ctx, path, cmd.OutOrStdout())
	}

	entries, err := readEntries(path)
	if err != nil {
		return err
	}

	comp := composition.Aggregate(entries)
	if err := writeComposition(cmd.OutOrStdout(), comp); err != nil {
		return err
	}

	if statsHTML != "" {
		if err := writeChartPage(statsHTML, deckName(path), comp); err != nil {
			return err
		}
		logger.Info("Wrote charts", zap.String("path", statsHTML))
	}
	return nil
}

// watchStats prints the composition of path and again each time the file
// changes. The directory is watched rather than the file so saves that replace
// the file through a rename are still seen. Entries are only replaced when the
// content differs, so events that leave the file unchanged are served from
// the memo and print nothing.
func watchStats(ctx context.Context, path string, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch deck directory: %w", err)
	}

	var (
		memo    composition.Memo
		entries []composition.CardEntry
		raw     []byte
	)

	refresh := func() error {
		data, err := os.ReadFile(target)
		if err != nil {
			logger.Warn("Skipping unreadable deck file", zap.String("path", target), zap.Error(err))
			return nil
		}
		if entries == nil || !bytes.Equal(data, raw) {
			next, err := parseEntries(data)
			if err != nil {
				logger.Warn("Skipping invalid deck file", zap.String("path", target), zap.Error(err))
				return nil
			}
			entries, raw = next, data
		}

		before := memo.Recomputes()
		comp := memo.Compute(entries)
		if memo.Recomputes() != before {
			return writeComposition(out, comp)
		}
		return nil
	}

	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("failed to stat deck file: %w", err)
	}
	if err := refresh(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Deck file changed", zap.String("path", target), zap.String("op", event.Op.String()))
			if err := refresh(); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

// readEntries decodes a deck file. An empty array is a valid empty deck.
func readEntries(path string) ([]composition.CardEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck file: %w", err)
	}

	return parseEntries(data)
}

func parseEntries(data []byte) ([]composition.CardEntry, error) {
	entries := []composition.CardEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse deck file: %w", err)
	}
	return entries, nil
}

func writeComposition(w io.Writer, comp composition.Composition) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(comp)
}

func writeChartPage(path, name string, comp composition.Composition) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := charts.RenderDeckStats(f, name, comp, charts.DefaultChartConfig()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// deckName derives a display name from the deck file name.
func deckName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
