package db

import (
	"context"
	"time"
)

const notificationColumns = `id, user_id, kind, title, body, read, created_at`

func scanNotification(sc interface {
	Scan(...interface{}) error
}) (Notification, error) {
	var n Notification
	err := sc.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.Read, &n.CreatedAt)
	return n, err
}

type CreateNotificationParams struct {
	ID     string
	UserID string
	Kind   string
	Title  string
	Body   string
}

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO notifications (id, user_id, kind, title, body)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+notificationColumns,
		arg.ID, arg.UserID, arg.Kind, arg.Title, arg.Body)
	return scanNotification(row)
}

func (q *Queries) ListNotificationsByUser(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (q *Queries) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	return err
}

// DeleteReadNotificationsBefore removes read notifications older than the cutoff.
// Used by the retention job.
func (q *Queries) DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM notifications WHERE read = 1 AND created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
