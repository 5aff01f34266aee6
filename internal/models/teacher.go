package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID            string    `db:"id" json:"id"`
	FullName      string    `db:"full_name" json:"full_name"`
	Branch        string    `db:"branch" json:"branch"`
	MaxDailyHours int       `db:"max_daily_hours" json:"max_daily_hours"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherUnavailability marks a single blocked (day, slot) cell for a teacher.
type TeacherUnavailability struct {
	ID        string `db:"id" json:"id"`
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	Day       int    `db:"day" json:"day"`
	TimeSlot  int    `db:"time_slot" json:"time_slot"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Branch    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
