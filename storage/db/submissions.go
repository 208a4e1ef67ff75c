package db

import (
	"context"
	"database/sql"
)

const submissionColumns = `id, name, email, phone, message, created_at`

type CreateSubmissionParams struct {
	ID      string
	Name    string
	Email   string
	Phone   sql.NullString
	Message string
}

func (q *Queries) CreateSubmission(ctx context.Context, arg CreateSubmissionParams) (Submission, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO submissions (id, name, email, phone, message)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+submissionColumns,
		arg.ID, arg.Name, arg.Email, arg.Phone, arg.Message)
	var s Submission
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Message, &s.CreatedAt)
	return s, err
}

func (q *Queries) ListSubmissions(ctx context.Context) ([]Submission, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+submissionColumns+` FROM submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Message, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
