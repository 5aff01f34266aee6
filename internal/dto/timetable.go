package dto

// TimetableCell is one occupied period of a weekly view.
type TimetableCell struct {
	Day         int    `json:"day"`
	TimeSlot    int    `json:"timeSlot"`
	LessonID    string `json:"lessonId"`
	LessonName  string `json:"lessonName,omitempty"`
	ClassID     string `json:"classId"`
	ClassName   string `json:"className,omitempty"`
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName,omitempty"`
	ClassroomID string `json:"classroomId,omitempty"`
}

// ClassTimetableResponse is the weekly view of a class.
type ClassTimetableResponse struct {
	TermID  string          `json:"termId"`
	ClassID string          `json:"classId"`
	Cells   []TimetableCell `json:"cells"`
}

// TeacherTimetableResponse is the weekly view of a teacher.
type TeacherTimetableResponse struct {
	TermID    string          `json:"termId"`
	TeacherID string          `json:"teacherId"`
	Cells     []TimetableCell `json:"cells"`
}
