package db

import (
	"context"
	"database/sql"
)

const userColumns = `id, clerk_id, email, name, company, phone, notes, created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.ClerkID, &u.Email, &u.Name, &u.Company, &u.Phone, &u.Notes, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

type CreateUserParams struct {
	ID      string
	ClerkID sql.NullString
	Email   string
	Name    sql.NullString
	Company sql.NullString
	Phone   sql.NullString
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (id, clerk_id, email, name, company, phone)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.ID, arg.ClerkID, arg.Email, arg.Name, arg.Company, arg.Phone)
	return scanUser(row)
}

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (q *Queries) GetUserByClerkID(ctx context.Context, clerkID sql.NullString) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE clerk_id = ?`, clerkID)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

type UpsertUserByClerkIDParams struct {
	ID      string
	ClerkID sql.NullString
	Email   string
	Name    sql.NullString
	Company sql.NullString
	Phone   sql.NullString
}

func (q *Queries) UpsertUserByClerkID(ctx context.Context, arg UpsertUserByClerkIDParams) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (id, clerk_id, email, name, company, phone)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (clerk_id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			company = excluded.company,
			phone = excluded.phone,
			updated_at = CURRENT_TIMESTAMP
		RETURNING `+userColumns,
		arg.ID, arg.ClerkID, arg.Email, arg.Name, arg.Company, arg.Phone)
	return scanUser(row)
}

type UpdateUserProfileParams struct {
	ID      string
	Name    sql.NullString
	Company sql.NullString
	Phone   sql.NullString
	Notes   sql.NullString
}

func (q *Queries) UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE users SET name = ?, company = ?, phone = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING `+userColumns,
		arg.Name, arg.Company, arg.Phone, arg.Notes, arg.ID)
	return scanUser(row)
}
