package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"quantisuite/internal/calc"
)

// DefaultLimit is how many entries the log keeps.
const DefaultLimit = 200

var ErrUnknownFilter = errors.New("unknown history filter")

// Entry is one recorded calculation.
type Entry struct {
	Expression string    `json:"expression"`
	Result     string    `json:"result"`
	Type       calc.Kind `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store persists the whole history, newest first.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// TypeCounter is implemented by stores that can count entries per
// calculator without loading them.
type TypeCounter interface {
	CountByType(ctx context.Context) (map[calc.Kind]int, error)
}

// Log is the in-memory history, written through to a Store on every change.
// It is safe for concurrent use; the HTTP API and the TUI share one.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
	store   Store
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Log)

func WithLimit(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.limit = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// Open loads the existing history from store.
func Open(ctx context.Context, store Store, opts ...Option) (*Log, error) {
	l := &Log{
		limit:  DefaultLimit,
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) > l.limit {
		entries = entries[:l.limit]
	}
	l.entries = entries
	return l, nil
}

// Add prepends e and drops the oldest entries past the limit.
func (l *Log) Add(ctx context.Context, e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = slices.Insert(l.entries, 0, e)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}
	return l.store.Save(ctx, slices.Clone(l.entries))
}

// Record implements calc.Recorder. Persistence failures are logged; the
// calculation itself already succeeded.
func (l *Log) Record(kind calc.Kind, expression, result string) {
	err := l.Add(context.Background(), Entry{
		Expression: expression,
		Result:     result,
		Type:       kind,
	})
	if err != nil {
		l.logger.Warn("failed to save history", "error", err)
	}
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries)
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return l.store.Save(ctx, nil)
}

// Replace swaps the whole history, for imports.
func (l *Log) Replace(ctx context.Context, entries []Entry) error {
	if len(entries) > l.limit {
		entries = entries[:l.limit]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = slices.Clone(entries)
	return l.store.Save(ctx, slices.Clone(l.entries))
}

// Filter values besides a calc.Kind.
const (
	FilterAll   = "all"
	FilterToday = "today"
	FilterWeek  = "week"
)

// Query selects entries. Filter is all, today, week or a calculation kind;
// Search matches expression, result or date, case-insensitively.
type Query struct {
	Filter string
	Search string
}

// ParseFilter validates a filter name. Empty means all.
func ParseFilter(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterToday, FilterWeek,
		string(calc.KindSimple), string(calc.KindScientific), string(calc.KindProgrammer):
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Filter returns the matching entries, newest first.
func (l *Log) Filter(q Query) []Entry {
	return Filter(l.Entries(), q, l.now())
}

// Filter applies q to entries as of now.
func Filter(entries []Entry, q Query, now time.Time) []Entry {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	weekAgo := now.AddDate(0, 0, -7)

	var out []Entry
	for _, e := range entries {
		switch q.Filter {
		case "", FilterAll:
		case FilterToday:
			if !sameDay(e.Timestamp, now) {
				continue
			}
		case FilterWeek:
			if e.Timestamp.Before(weekAgo) {
				continue
			}
		default:
			if string(e.Type) != q.Filter {
				continue
			}
		}
		if search != "" && !matches(e, search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matches(e Entry, search string) bool {
	return strings.Contains(strings.ToLower(e.Expression), search) ||
		strings.Contains(strings.ToLower(e.Result), search) ||
		strings.Contains(e.Timestamp.Local().Format(time.DateOnly), search)
}

func sameDay(a, b time.Time) bool {
	a, b = a.Local(), b.Local()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// Stats summarises the log.
type Stats struct {
	Total int `json:"total"`
	Today int `json:"today"`
}

func (l *Log) Stats() Stats {
	entries := l.Entries()
	now := l.now()
	s := Stats{Total: len(entries)}
	for _, e := range entries {
		if sameDay(e.Timestamp, now) {
			s.Today++
		}
	}
	return s
}

// CountByType reports how many entries each calculator produced. Stores
// that implement TypeCounter answer directly.
func (l *Log) CountByType(ctx context.Context) (map[calc.Kind]int, error) {
	if tc, ok := l.store.(TypeCounter); ok {
		return tc.CountByType(ctx)
	}
	out := map[calc.Kind]int{}
	for _, e := range l.Entries() {
		out[e.Type]++
	}
	return out, nil
}
