package cli

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quantisuite/internal/config"
	"quantisuite/internal/history"
	"quantisuite/internal/storage"
	"quantisuite/internal/storage/redis"
	"quantisuite/internal/storage/sqlite"
)

// openHistory opens the configured history backend. The returned func
// releases the backend.
func (e *env) openHistory(ctx context.Context) (*history.Log, func() error, error) {
	hc := e.cfg.History
	var (
		store   history.Store
		release = func() error { return nil }
	)

	switch hc.Backend {
	case config.BackendMemory:
		store = storage.NewMemoryStore()
	case config.BackendFile:
		store = storage.NewFileStore(hc.Path)
	case config.BackendRedis:
		rs := redis.New(hc.Redis.Addr, hc.Redis.Password, hc.Redis.DB,
			redis.WithKey(hc.Redis.Key),
			redis.WithLimit(hc.Limit),
		)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, nil, fmt.Errorf("redis history at %s: %w", hc.Redis.Addr, err)
		}
		store, release = rs, rs.Close
	case config.BackendSQLite:
		path := hc.Path
		if filepath.Ext(path) == ".json" {
			path = strings.TrimSuffix(path, ".json") + ".db"
		}
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		store, release = db, db.Close
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", hc.Backend)
	}

	log, err := history.Open(ctx, store, history.WithLimit(hc.Limit), history.WithLogger(e.logger))
	if err != nil {
		release()
		return nil, nil, err
	}
	e.logger.Debug("history opened", "backend", hc.Backend, "entries", log.Len())
	return log, release, nil
}

func newHistoryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, export, import or clear the calculation history",
	}

	var filter, search string
	list := &cobra.Command{
		Use:   "list",
		Short: "Print history entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := history.ParseFilter(filter)
			if err != nil {
				return err
			}
			log, closeFn, err := e.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			w := out(cmd)
			s := newStyler(w)
			entries := log.Filter(history.Query{Filter: f, Search: search})
			if len(entries) == 0 {
				fmt.Fprintln(w, "No matching history")
				return nil
			}
			for _, en := range entries {
				fmt.Fprintf(w, "%s  %-10s  %s = %s\n",
					s.faint(en.Timestamp.Local().Format(time.DateTime)),
					s.label(string(en.Type)),
					en.Expression,
					s.result(en.Result))
			}
			stats := log.Stats()
			fmt.Fprintf(w, "%d total, %d today\n", stats.Total, stats.Today)

			counts, err := log.CountByType(cmd.Context())
			if err != nil {
				return err
			}
			kinds := slices.Sorted(maps.Keys(counts))
			parts := make([]string, len(kinds))
			for i, k := range kinds {
				parts[i] = fmt.Sprintf("%s %d", k, counts[k])
			}
			fmt.Fprintf(w, "by type: %s\n", strings.Join(parts, ", "))
			return nil
		},
	}
	list.Flags().StringVar(&filter, "filter", history.FilterAll, "all, today, week, simple, scientific or programmer")
	list.Flags().StringVarP(&search, "search", "s", "", "match expression, result or date")

	export := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the history as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeFn, err := e.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			entries := log.Entries()
			if len(entries) == 0 {
				return fmt.Errorf("history is empty, nothing to export")
			}
			if err := storage.ExportCSV(entries, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Exported %d entries to %s\n", len(entries), args[0])
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the history with a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := storage.ImportCSV(args[0])
			if err != nil {
				return err
			}
			log, closeFn, err := e.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := log.Replace(cmd.Context(), entries); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Imported %d entries\n", log.Len())
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeFn, err := e.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := log.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "History cleared")
			return nil
		},
	}

	cmd.AddCommand(list, export, importCmd, clearCmd)
	return cmd
}
