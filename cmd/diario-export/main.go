// Command diario-export writes the full rating history to a local CSV
// file for offline analysis. It reads the same backend the server uses
// and never touches the network.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"sort"

	"diario/internal/backend"
	"diario/internal/cli"
	"diario/internal/core"
	"diario/internal/services"
)

func main() {
	output := flag.String("o", "diario-export.csv", "output CSV path")
	includeTrash := flag.Bool("trash", false, "also export deleted-point snapshots")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	factory := backend.NewFactory(logger)
	result, err := factory.CreateStore(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	}()

	journal := services.NewJournalService(result.Store)

	if err := export(ctx, journal, *output, *includeTrash); err != nil {
		logger.Error("Export failed", "error", err, "output", *output)
		os.Exit(1)
	}
	logger.Info("Export complete", "output", *output)
}

func export(ctx context.Context, journal *services.JournalService, path string, includeTrash bool) error {
	points, err := journal.Points(ctx)
	if err != nil {
		return fmt.Errorf("load points: %w", err)
	}
	ratings, err := journal.ListRatings(ctx)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}

	names := make(map[string]string, len(points))
	for _, p := range points {
		names[p.ID] = p.Name
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	writeErr := func() error {
		if err := w.Write([]string{"date", "timestamp", "point", "score"}); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		for _, rating := range ratings {
			for _, id := range sortedScoreIDs(rating) {
				name := names[id]
				if name == "" {
					name = id
				}
				row := []string{rating.Date, rating.Timestamp, name, fmt.Sprintf("%d", rating.Scores[id])}
				if err := w.Write(row); err != nil {
					return fmt.Errorf("write row: %w", err)
				}
			}
		}

		if includeTrash {
			trash, err := journal.Trash(ctx)
			if err != nil {
				return fmt.Errorf("load trash: %w", err)
			}
			for _, entry := range trash {
				for _, snap := range entry.Ratings {
					row := []string{snap.Date, snap.Timestamp, entry.Name, fmt.Sprintf("%d", snap.Value)}
					if err := w.Write(row); err != nil {
						return fmt.Errorf("write trash row: %w", err)
					}
				}
			}
		}

		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flush csv: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = f.Close()
		return writeErr
	}
	return f.Close()
}

// sortedScoreIDs returns the point ids of a record in a stable order so
// exports are reproducible.
func sortedScoreIDs(rating core.Rating) []string {
	ids := make([]string, 0, len(rating.Scores))
	for id := range rating.Scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
