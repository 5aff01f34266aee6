package models

import "time"

// LessonAssignment is the pre-existing binding of a teacher to a (class, lesson)
// pair for a term. Assignments are input to placement and are never touched by
// a generation run.
type LessonAssignment struct {
	ID        string    `db:"id" json:"id"`
	TermID    string    `db:"term_id" json:"term_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	LessonID  string    `db:"lesson_id" json:"lesson_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LessonAssignmentDetail enriches assignments with descriptive fields.
type LessonAssignmentDetail struct {
	LessonAssignment
	ClassName   string `db:"class_name" json:"class_name"`
	LessonName  string `db:"lesson_name" json:"lesson_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}
