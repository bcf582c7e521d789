package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/pathreq"
)

// RouteRecord is one journaled path request.
type RouteRecord struct {
	RequestID   uint64
	RequestedAt time.Time
	Start, End  geo.Vec2
	Success     bool
	Reason      string
	Waypoints   int
	Cost        int
	Expanded    int
	Queued      time.Duration
	Duration    time.Duration
}

// RecordFromOutcome flattens a delivered request into a journal row.
func RecordFromOutcome(o pathreq.Outcome) RouteRecord {
	return RouteRecord{
		RequestID:   o.ID,
		RequestedAt: o.SubmittedAt,
		Start:       o.Start,
		End:         o.End,
		Success:     o.Result.Success,
		Reason:      o.Result.Reason.String(),
		Waypoints:   len(o.Result.Waypoints),
		Cost:        o.Result.Cost,
		Expanded:    o.Result.Expanded,
		Queued:      o.Queued,
		Duration:    o.Result.Duration,
	}
}

// RouteStats aggregates the journal.
type RouteStats struct {
	Total       int64
	Succeeded   int64
	AvgExpanded float64
}

// SuccessRate returns Succeeded/Total, or 0 for an empty journal.
func (s RouteStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}

// RouteRepository persists route journal rows in PostgreSQL.
type RouteRepository struct {
	pool *pgxpool.Pool
}

// NewRouteRepository creates a repository on pool.
func NewRouteRepository(pool *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{pool: pool}
}

var routeColumns = []string{
	"request_id", "requested_at",
	"start_x", "start_y", "end_x", "end_y",
	"success", "reason", "waypoints", "cost", "expanded",
	"queued_us", "duration_us",
}

// InsertBatch writes records with COPY.
func (r *RouteRepository) InsertBatch(ctx context.Context, records []RouteRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			int64(rec.RequestID), rec.RequestedAt,
			rec.Start.X, rec.Start.Y, rec.End.X, rec.End.Y,
			rec.Success, rec.Reason, int32(rec.Waypoints), int32(rec.Cost), int32(rec.Expanded),
			rec.Queued.Microseconds(), rec.Duration.Microseconds(),
		})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"route_journal"},
		routeColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting %d route records: %w", len(records), err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (r *RouteRepository) Recent(ctx context.Context, limit int) ([]RouteRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT request_id, requested_at, start_x, start_y, end_x, end_y,
		        success, reason, waypoints, cost, expanded, queued_us, duration_us
		 FROM route_journal
		 ORDER BY requested_at DESC, id DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent routes: %w", err)
	}
	defer rows.Close()

	var out []RouteRecord
	for rows.Next() {
		var (
			rec                  RouteRecord
			requestID            int64
			waypoints, cost, exp int32
			queuedUS, durationUS int64
		)
		if err := rows.Scan(
			&requestID, &rec.RequestedAt,
			&rec.Start.X, &rec.Start.Y, &rec.End.X, &rec.End.Y,
			&rec.Success, &rec.Reason, &waypoints, &cost, &exp,
			&queuedUS, &durationUS,
		); err != nil {
			return nil, fmt.Errorf("scanning route record: %w", err)
		}
		rec.RequestID = uint64(requestID)
		rec.Waypoints = int(waypoints)
		rec.Cost = int(cost)
		rec.Expanded = int(exp)
		rec.Queued = time.Duration(queuedUS) * time.Microsecond
		rec.Duration = time.Duration(durationUS) * time.Microsecond
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating route records: %w", err)
	}
	return out, nil
}

// Stats aggregates the whole journal.
func (r *RouteRepository) Stats(ctx context.Context) (RouteStats, error) {
	var s RouteStats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE success),
		        COALESCE(AVG(expanded), 0)::float8
		 FROM route_journal`,
	).Scan(&s.Total, &s.Succeeded, &s.AvgExpanded)
	if err != nil {
		return RouteStats{}, fmt.Errorf("aggregating route journal: %w", err)
	}
	return s, nil
}
