package main

import (
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

const (
	// Configuration
	numUsers                 = 15
	numTranscriptionsPerUser = 8
	numSubmissions           = 12
	subscribedUserShare      = 0.6
	readNotificationShare    = 0.5
	anonymousCallerShare     = 0.2
)

var (
	db      *sql.DB
	userIDs []string
)

func main() {
	gofakeit.Seed(time.Now().UnixNano())

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./db/mobmail.db"
	}

	var err error
	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("🌱 Starting demo data seeding...")
	fmt.Println()

	clearDemoData()

	seedUsers()
	seedTranscriptions()
	seedSubscriptions()
	seedSubmissions()

	fmt.Println()
	fmt.Println("✅ Demo data seeding completed!")
	fmt.Println()
	printSummary()
}

func clearDemoData() {
	fmt.Println("🧹 Clearing previous demo data...")

	// Demo users are recognizable by the demo clerk_id prefix; everything
	// they own cascades manually since SQLite FKs here are plain references.
	tables := []string{
		"DELETE FROM notifications WHERE user_id IN (SELECT id FROM users WHERE clerk_id LIKE 'demo_%')",
		"DELETE FROM transcriptions WHERE user_id IN (SELECT id FROM users WHERE clerk_id LIKE 'demo_%')",
		"DELETE FROM subscriptions WHERE user_id IN (SELECT id FROM users WHERE clerk_id LIKE 'demo_%')",
		"DELETE FROM users WHERE clerk_id LIKE 'demo_%'",
		"DELETE FROM submissions WHERE email LIKE '%@demo.invalid'",
	}
	for _, stmt := range tables {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("Failed to clear demo data: %v", err)
		}
	}
}

func seedUsers() {
	fmt.Println("👥 Creating users...")

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO users (id, clerk_id, email, name, company, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		log.Fatalf("Failed to prepare statement: %v", err)
	}
	defer stmt.Close()

	now := time.Now()

	for i := 0; i < numUsers; i++ {
		id := ulid.Make().String()
		userIDs = append(userIDs, id)

		createdAt := now.Add(-time.Duration(rand.Intn(90*24)) * time.Hour)
		_, err = stmt.Exec(
			id,
			"demo_"+uuid.NewString(),
			gofakeit.Email(),
			gofakeit.Name(),
			gofakeit.Company(),
			gofakeit.Phone(),
			formatSQLiteTime(createdAt),
			formatSQLiteTime(createdAt),
		)
		if err != nil {
			log.Printf("Failed to insert user: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit users: %v", err)
	}

	fmt.Printf("✓ Created %d users\n", numUsers)
}

func seedTranscriptions() {
	fmt.Println("📞 Creating voicemail transcriptions...")

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	tStmt, err := tx.Prepare(`
		INSERT INTO transcriptions (id, user_id, caller_number, caller_name, duration_seconds, transcript, status, received_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		log.Fatalf("Failed to prepare statement: %v", err)
	}
	defer tStmt.Close()

	nStmt, err := tx.Prepare(`
		INSERT INTO notifications (id, user_id, kind, title, body, read, created_at)
		VALUES (?, ?, 'voicemail', 'New voicemail', ?, ?, ?)
	`)
	if err != nil {
		log.Fatalf("Failed to prepare statement: %v", err)
	}
	defer nStmt.Close()

	now := time.Now()
	total := 0

	for _, userID := range userIDs {
		for i := 0; i < numTranscriptionsPerUser; i++ {
			receivedAt := now.Add(-time.Duration(rand.Intn(30*24*60)) * time.Minute)

			callerName := gofakeit.Name()
			if rand.Float64() < anonymousCallerShare {
				callerName = ""
			}
			callerNumber := gofakeit.Phone()

			status := "completed"
			if rand.Intn(20) == 0 {
				status = "failed"
			}

			transcript := ""
			if status == "completed" {
				transcript = gofakeit.Paragraph(1, 3, 12, " ")
			}

			_, err = tStmt.Exec(
				ulid.Make().String(),
				userID,
				callerNumber,
				nullable(callerName),
				15+rand.Intn(160),
				transcript,
				status,
				formatSQLiteTime(receivedAt),
				formatSQLiteTime(receivedAt),
			)
			if err != nil {
				log.Printf("Failed to insert transcription: %v", err)
				continue
			}
			total++

			body := "New voicemail from " + callerNumber
			if callerName != "" {
				body = "New voicemail from " + callerName
			}
			read := 0
			if rand.Float64() < readNotificationShare {
				read = 1
			}
			if _, err := nStmt.Exec(ulid.Make().String(), userID, body, read, formatSQLiteTime(receivedAt)); err != nil {
				log.Printf("Failed to insert notification: %v", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transcriptions: %v", err)
	}

	fmt.Printf("✓ Created %d transcriptions\n", total)
}

func seedSubscriptions() {
	fmt.Println("💳 Creating subscriptions...")

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO subscriptions (id, user_id, stripe_customer_id, stripe_subscription_id, plan, status, current_period_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, 'unlimited', ?, ?, ?, ?)
	`)
	if err != nil {
		log.Fatalf("Failed to prepare statement: %v", err)
	}
	defer stmt.Close()

	now := time.Now()
	total := 0

	for _, userID := range userIDs {
		if rand.Float64() > subscribedUserShare {
			continue
		}

		status := "active"
		if rand.Intn(8) == 0 {
			status = "canceled"
		}

		// Fake Stripe identifiers shaped like the real ones.
		_, err = stmt.Exec(
			ulid.Make().String(),
			userID,
			"cus_demo"+uuid.NewString()[:8],
			"sub_demo"+uuid.NewString()[:8],
			status,
			formatSQLiteTime(now.AddDate(0, 1, 0)),
			formatSQLiteTime(now),
			formatSQLiteTime(now),
		)
		if err != nil {
			log.Printf("Failed to insert subscription: %v", err)
			continue
		}
		total++
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit subscriptions: %v", err)
	}

	fmt.Printf("✓ Created %d subscriptions\n", total)
}

func seedSubmissions() {
	fmt.Println("✉️  Creating contact submissions...")

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO submissions (id, name, email, phone, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		log.Fatalf("Failed to prepare statement: %v", err)
	}
	defer stmt.Close()

	now := time.Now()

	for i := 0; i < numSubmissions; i++ {
		createdAt := now.Add(-time.Duration(rand.Intn(60*24)) * time.Hour)
		_, err = stmt.Exec(
			ulid.Make().String(),
			gofakeit.Name(),
			gofakeit.Username()+"@demo.invalid",
			nullable(gofakeit.Phone()),
			gofakeit.Sentence(15),
			formatSQLiteTime(createdAt),
		)
		if err != nil {
			log.Printf("Failed to insert submission: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit submissions: %v", err)
	}

	fmt.Printf("✓ Created %d submissions\n", numSubmissions)
}

func printSummary() {
	fmt.Println("📊 Table counts:")
	for _, table := range []string{"users", "transcriptions", "notifications", "subscriptions", "submissions"} {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			log.Printf("Failed to count %s: %v", table, err)
			continue
		}
		fmt.Printf("   %-15s %d\n", table, n)
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
