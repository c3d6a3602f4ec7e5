// Package stats computes student engagement statistics over the platform's
// question and gameboard tables.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/swamp-dev/boardstats/internal/store"
)

// ErrQuery reports a failed statement, typically bad SQL or a schema mismatch.
var ErrQuery = errors.New("query failed")

// Querier is the subset of *sqlx.DB the engine needs.
type Querier interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Rebind(query string) string
	DriverName() string
}

// Engine runs the reporting queries against an injected database handle.
type Engine struct {
	db      Querier
	dialect dialect
	logger  *slog.Logger
}

// NewEngine creates an engine for db. The SQL dialect follows db's driver.
func NewEngine(db Querier, logger *slog.Logger) (*Engine, error) {
	d, err := dialectFor(db.DriverName())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{db: db, dialect: d, logger: logger}, nil
}

// CountActiveStudents counts students with at least one question attempt in r.
func (e *Engine) CountActiveStudents(ctx context.Context, r DateRange) (Count, error) {
	return e.count(ctx, "active students", queryActiveStudents, bounds(r, 1)...)
}

// CountStudentsWithGameboards counts active students owning at least one
// gameboard created in r.
func (e *Engine) CountStudentsWithGameboards(ctx context.Context, r DateRange) (Count, error) {
	return e.count(ctx, "students with gameboards", queryStudentsWithGameboards, bounds(r, 2)...)
}

// CountStudentsCompletingAllParts counts active students who answered every
// scored part of at least one of their gameboards correctly.
func (e *Engine) CountStudentsCompletingAllParts(ctx context.Context, r DateRange) (Count, error) {
	return e.count(ctx, "students completing all parts", queryStudentsCompletingAllParts, bounds(r, 2)...)
}

// AverageCompletionDistribution maps each student's average gameboard
// completion percentage to the number of students with that average.
func (e *Engine) AverageCompletionDistribution(ctx context.Context, r DateRange) (Distribution, error) {
	return e.distribution(ctx, "average completion", queryAverageCompletionDistribution, bounds(r, 2)...)
}

// CompletedGameboardDistribution maps a number of fully completed gameboards
// to the number of students who completed exactly that many.
func (e *Engine) CompletedGameboardDistribution(ctx context.Context, r DateRange) (Distribution, error) {
	return e.distribution(ctx, "completed gameboards", queryCompletedGameboardDistribution, bounds(r, 2)...)
}

// OwnedGameboardDistribution maps a number of owned gameboards to the number
// of active students owning exactly that many.
func (e *Engine) OwnedGameboardDistribution(ctx context.Context, r DateRange) (Distribution, error) {
	return e.distribution(ctx, "owned gameboards", queryOwnedGameboardDistribution, bounds(r, 2)...)
}

// Run computes every statistic for r. The first failing query aborts the run.
func (e *Engine) Run(ctx context.Context, r DateRange) (*Report, error) {
	start := time.Now()
	if r.Empty() {
		e.logger.Warn("date range is empty", "range", r.String())
	}

	rep := &Report{Range: r}
	var err error

	if rep.ActiveStudents, err = e.CountActiveStudents(ctx, r); err != nil {
		return nil, err
	}
	if rep.StudentsWithGameboards, err = e.CountStudentsWithGameboards(ctx, r); err != nil {
		return nil, err
	}
	if rep.StudentsCompletingAll, err = e.CountStudentsCompletingAllParts(ctx, r); err != nil {
		return nil, err
	}
	if rep.AverageCompletion, err = e.AverageCompletionDistribution(ctx, r); err != nil {
		return nil, err
	}
	if rep.CompletedGameboards, err = e.CompletedGameboardDistribution(ctx, r); err != nil {
		return nil, err
	}
	if rep.OwnedGameboards, err = e.OwnedGameboardDistribution(ctx, r); err != nil {
		return nil, err
	}

	e.logger.Info("report computed",
		"range", r.Name,
		"active", rep.ActiveStudents.String(),
		"with_gameboards", rep.StudentsWithGameboards.String(),
		"completing", rep.StudentsCompletingAll.String(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return rep, nil
}

func (e *Engine) count(ctx context.Context, name, query string, args ...any) (Count, error) {
	var n sql.NullInt64
	err := e.db.GetContext(ctx, &n, e.prepare(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		e.logger.Debug("no rows", "query", name)
		return Count{}, nil
	}
	if err != nil {
		return Count{}, fmt.Errorf("%w: %s: %v", ErrQuery, name, err)
	}
	if !n.Valid {
		return Count{}, nil
	}
	return Some(n.Int64), nil
}

type bucketRow struct {
	Metric   float64 `db:"metric"`
	Students int64   `db:"students"`
}

func (e *Engine) distribution(ctx context.Context, name, query string, args ...any) (Distribution, error) {
	var rows []bucketRow
	if err := e.db.SelectContext(ctx, &rows, e.prepare(query), args...); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrQuery, name, err)
	}

	dist := make(Distribution, len(rows))
	for _, row := range rows {
		dist[row.Metric] += row.Students
	}
	e.logger.Debug("distribution loaded", "query", name, "buckets", len(dist))
	return dist, nil
}

func (e *Engine) prepare(query string) string {
	return e.db.Rebind(e.dialect.render(query))
}

// bounds repeats the range bounds once per windowed CTE in a query. Both
// drivers accept the text form and compare it against stored timestamps.
func bounds(r DateRange, windows int) []any {
	start, end := store.FormatTime(r.Start), store.FormatTime(r.End)
	args := make([]any, 0, 2*windows)
	for i := 0; i < windows; i++ {
		args = append(args, start, end)
	}
	return args
}
