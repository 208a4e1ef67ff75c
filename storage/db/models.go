package db

import (
	"database/sql"
	"time"
)

type User struct {
	ID        string
	ClerkID   sql.NullString
	Email     string
	Name      sql.NullString
	Company   sql.NullString
	Phone     sql.NullString
	Notes     sql.NullString
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Submission struct {
	ID        string
	Name      string
	Email     string
	Phone     sql.NullString
	Message   string
	CreatedAt time.Time
}

type Subscription struct {
	ID                   string
	UserID               string
	StripeCustomerID     sql.NullString
	StripeSubscriptionID sql.NullString
	Plan                 string
	Status               string
	CurrentPeriodEnd     sql.NullTime
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Transcription struct {
	ID              string
	UserID          string
	CallerNumber    sql.NullString
	CallerName      sql.NullString
	DurationSeconds int64
	Transcript      string
	Status          string
	ReceivedAt      time.Time
	CreatedAt       time.Time
}

type Notification struct {
	ID        string
	UserID    string
	Kind      string
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}
