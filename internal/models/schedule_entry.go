package models

import "time"

// ScheduleEntry is one generated timetable cell: a class meeting a teacher for
// a lesson in a room at (day, time_slot). Days run 0=Monday..4=Friday; slots
// run 0..slotsPerDay-1. No two entries may share (class_id, day, time_slot)
// and no two may share (teacher_id, day, time_slot).
type ScheduleEntry struct {
	ID          string    `db:"id" json:"id"`
	TermID      string    `db:"term_id" json:"term_id"`
	ClassID     string    `db:"class_id" json:"class_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	LessonID    string    `db:"lesson_id" json:"lesson_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	Day         int       `db:"day" json:"day"`
	TimeSlot    int       `db:"time_slot" json:"time_slot"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ScheduleEntryFilter describes query params for listing entries.
type ScheduleEntryFilter struct {
	TermID    string
	ClassID   string
	TeacherID string
	Day       *int
	TimeSlot  *int
	Page      int
	PageSize  int
}
