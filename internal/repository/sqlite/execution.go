package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/code-translator/internal/model"
	"github.com/sakif/code-translator/internal/repository"
)

var _ repository.ExecutionRepository = (*DB)(nil)

// RecordExecution appends rec to the audit log, filling in ID and CreatedAt.
func (db *DB) RecordExecution(ctx context.Context, rec *model.ExecutionRecord) error {
	rec.ID = xid.New().String()
	rec.CreatedAt = time.Now()

	var userID sql.NullString
	if rec.UserID != "" {
		userID = sql.NullString{String: rec.UserID, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO executions (id, user_id, code, outcome, exit_code, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, userID, rec.Code, rec.Outcome, rec.ExitCode, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: recording execution: %w", err)
	}
	return nil
}

// ListExecutions returns userID's runs, newest first.
func (db *DB) ListExecutions(ctx context.Context, userID string, opts repository.ListOptions) ([]model.ExecutionRecord, error) {
	limit, offset := clampList(opts)

	// xid sorts by creation time, which breaks ties within the same instant.
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, code, outcome, exit_code, duration_ms, created_at
		 FROM executions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing executions: %w", err)
	}
	defer rows.Close()

	records := make([]model.ExecutionRecord, 0, limit)
	for rows.Next() {
		var (
			rec model.ExecutionRecord
			uid sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &uid, &rec.Code, &rec.Outcome,
			&rec.ExitCode, &rec.DurationMS, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning execution row: %w", err)
		}
		rec.UserID = uid.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating executions: %w", err)
	}

	return records, nil
}
