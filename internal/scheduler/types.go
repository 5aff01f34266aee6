package scheduler

import "github.com/okulplan/timetable-engine/internal/models"

// Day indexes a school weekday, 0=Monday..4=Friday.
type Day int

// Slot indexes a period within a school day, 0..SlotsPerDay-1.
type Slot int

// Typed identifiers keep the tracker maps from mixing key spaces.
type (
	TeacherID   string
	ClassID     string
	LessonID    string
	ClassroomID string
)

// DaysPerWeek is fixed: schedules cover Monday through Friday.
const DaysPerWeek = 5

// Grid describes the day/slot layout placements happen on.
type Grid struct {
	SlotsPerDay int
}

// Valid reports whether the pair addresses a cell inside the grid.
func (g Grid) Valid(day Day, slot Slot) bool {
	return day >= 0 && day < DaysPerWeek && slot >= 0 && int(slot) < g.SlotsPerDay
}

// SlotsForSchoolType maps a school profile to its daily period count.
func SlotsForSchoolType(t models.SchoolType) int {
	switch t {
	case models.SchoolTypePrimary:
		return 6
	case models.SchoolTypeMiddle:
		return 7
	default:
		return 8
	}
}

type gridKey struct {
	Day  Day
	Slot Slot
}

// Entry is one placed timetable cell. Entries are owned by the engine during
// a run and handed off in the Result; they never outlive a generation cycle.
type Entry struct {
	Class     ClassID
	Teacher   TeacherID
	Lesson    LessonID
	Classroom ClassroomID
	Day       Day
	Slot      Slot
}

// Requirement is one (class, lesson, teacher) weekly-hour demand to place.
type Requirement struct {
	Class       ClassID
	Lesson      LessonID
	Teacher     TeacherID
	Grade       string
	WeeklyHours int
}
