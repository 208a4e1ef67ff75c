package db

import (
	"context"
	"database/sql"
)

const transcriptionColumns = `id, user_id, caller_number, caller_name, duration_seconds, transcript, status, received_at, created_at`

func scanTranscription(sc interface {
	Scan(...interface{}) error
}) (Transcription, error) {
	var t Transcription
	err := sc.Scan(&t.ID, &t.UserID, &t.CallerNumber, &t.CallerName, &t.DurationSeconds, &t.Transcript, &t.Status, &t.ReceivedAt, &t.CreatedAt)
	return t, err
}

type CreateTranscriptionParams struct {
	ID              string
	UserID          string
	CallerNumber    sql.NullString
	CallerName      sql.NullString
	DurationSeconds int64
	Transcript      string
	Status          string
}

func (q *Queries) CreateTranscription(ctx context.Context, arg CreateTranscriptionParams) (Transcription, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO transcriptions (id, user_id, caller_number, caller_name, duration_seconds, transcript, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+transcriptionColumns,
		arg.ID, arg.UserID, arg.CallerNumber, arg.CallerName, arg.DurationSeconds, arg.Transcript, arg.Status)
	return scanTranscription(row)
}

func (q *Queries) GetTranscription(ctx context.Context, id string) (Transcription, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+transcriptionColumns+` FROM transcriptions WHERE id = ?`, id)
	return scanTranscription(row)
}

func (q *Queries) ListTranscriptionsByUser(ctx context.Context, userID string) ([]Transcription, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+transcriptionColumns+` FROM transcriptions
		WHERE user_id = ? ORDER BY received_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Transcription
	for rows.Next() {
		t, err := scanTranscription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (q *Queries) DeleteTranscription(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM transcriptions WHERE id = ?`, id)
	return err
}
