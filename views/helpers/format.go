package helpers

import (
	"database/sql"
	"fmt"
	"time"
)

// FormatDuration renders a voicemail length as "m:ss".
func FormatDuration(seconds int64) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatDate formats a time.Time as "Jan 2, 2006"
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatDateTime formats a time.Time as "Jan 2, 2006 3:04 PM"
func FormatDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}

// FormatNullTime formats a sql.NullTime, returning default value if null
func FormatNullTime(t sql.NullTime, layout string, defaultVal string) string {
	if t.Valid {
		return t.Time.Format(layout)
	}
	return defaultVal
}

// FormatNullString returns the string value or a default when null
func FormatNullString(s sql.NullString, defaultVal string) string {
	if s.Valid && s.String != "" {
		return s.String
	}
	return defaultVal
}

// FormatCaller renders the caller line for a transcription row.
func FormatCaller(name, number sql.NullString) string {
	switch {
	case name.Valid && name.String != "" && number.Valid && number.String != "":
		return fmt.Sprintf("%s (%s)", name.String, number.String)
	case name.Valid && name.String != "":
		return name.String
	case number.Valid && number.String != "":
		return number.String
	}
	return "Unknown caller"
}

// FormatPrice formats cents as euros (e.g., 1599 -> "€15.99")
func FormatPrice(cents int64) string {
	return fmt.Sprintf("€%.2f", float64(cents)/100)
}
