package scheduler

import (
	"go.uber.org/zap"

	"github.com/okulplan/timetable-engine/internal/models"
)

// TeacherProfile is the slice of teacher state the engine needs: a capacity
// bound and the set of blocked cells.
type TeacherProfile struct {
	MaxDailyHours int
	blocked       map[gridKey]struct{}
}

// Snapshot is the immutable per-run view of every entity the search touches.
// It is built once before the search begins so the backtracking loop never
// calls back into the persistence layer, and it replaces the process-wide
// database handle the engine would otherwise depend on.
type Snapshot struct {
	Grid             Grid
	TermID           string
	DefaultClassroom ClassroomID
	Requirements     []Requirement
	teachers         map[TeacherID]*TeacherProfile
}

// SnapshotInput carries the raw rows a snapshot is assembled from.
type SnapshotInput struct {
	TermID         string
	SchoolType     models.SchoolType
	Classes        []models.Class
	Teachers       []models.Teacher
	Lessons        []models.Lesson
	Classrooms     []models.Classroom
	Curriculum     []models.CurriculumRequirement
	Assignments    []models.LessonAssignment
	Unavailability []models.TeacherUnavailability
}

// BuildSnapshot assembles the per-run snapshot. Malformed rows (negative
// hours, assignments pointing at unknown teachers or classes, curriculum
// entries for unknown lessons) are skipped with a warning; a bad row never
// aborts the run.
func BuildSnapshot(in SnapshotInput, logger *zap.Logger) *Snapshot {
	if logger == nil {
		logger = zap.NewNop()
	}

	snap := &Snapshot{
		Grid:     Grid{SlotsPerDay: SlotsForSchoolType(in.SchoolType)},
		TermID:   in.TermID,
		teachers: make(map[TeacherID]*TeacherProfile, len(in.Teachers)),
	}

	if len(in.Classrooms) > 0 {
		snap.DefaultClassroom = ClassroomID(in.Classrooms[0].ID)
	}

	classGrades := make(map[ClassID]string, len(in.Classes))
	for _, class := range in.Classes {
		classGrades[ClassID(class.ID)] = class.Grade
	}

	lessonIDs := make(map[LessonID]struct{}, len(in.Lessons))
	for _, lesson := range in.Lessons {
		lessonIDs[LessonID(lesson.ID)] = struct{}{}
	}

	for _, teacher := range in.Teachers {
		snap.teachers[TeacherID(teacher.ID)] = &TeacherProfile{
			MaxDailyHours: teacher.MaxDailyHours,
			blocked:       make(map[gridKey]struct{}),
		}
	}
	for _, block := range in.Unavailability {
		profile, ok := snap.teachers[TeacherID(block.TeacherID)]
		if !ok {
			logger.Warn("unavailability row for unknown teacher, skipping",
				zap.String("teacher_id", block.TeacherID))
			continue
		}
		day, slot := Day(block.Day), Slot(block.TimeSlot)
		if !snap.Grid.Valid(day, slot) {
			logger.Warn("unavailability cell outside grid, skipping",
				zap.String("teacher_id", block.TeacherID),
				zap.Int("day", block.Day), zap.Int("slot", block.TimeSlot))
			continue
		}
		profile.blocked[gridKey{Day: day, Slot: slot}] = struct{}{}
	}

	// curriculum: one weekly_hours per (lesson, grade)
	hours := make(map[LessonID]map[string]int, len(in.Curriculum))
	for _, req := range in.Curriculum {
		if req.WeeklyHours < 0 {
			logger.Warn("curriculum row with negative weekly hours, skipping",
				zap.String("lesson_id", req.LessonID), zap.String("grade", req.Grade))
			continue
		}
		if _, ok := lessonIDs[LessonID(req.LessonID)]; !ok {
			logger.Warn("curriculum row for unknown lesson, skipping",
				zap.String("lesson_id", req.LessonID))
			continue
		}
		if hours[LessonID(req.LessonID)] == nil {
			hours[LessonID(req.LessonID)] = make(map[string]int)
		}
		hours[LessonID(req.LessonID)][req.Grade] = req.WeeklyHours
	}

	for _, assignment := range in.Assignments {
		class := ClassID(assignment.ClassID)
		teacher := TeacherID(assignment.TeacherID)
		lesson := LessonID(assignment.LessonID)

		grade, ok := classGrades[class]
		if !ok {
			logger.Warn("assignment for unknown class, skipping",
				zap.String("class_id", assignment.ClassID))
			continue
		}
		if _, ok := snap.teachers[teacher]; !ok {
			logger.Warn("assignment missing teacher, skipping",
				zap.String("class_id", assignment.ClassID),
				zap.String("teacher_id", assignment.TeacherID))
			continue
		}
		weekly, ok := hours[lesson][grade]
		if !ok {
			logger.Warn("no curriculum hours for assignment, skipping",
				zap.String("lesson_id", assignment.LessonID), zap.String("grade", grade))
			continue
		}
		if weekly == 0 {
			continue
		}
		snap.Requirements = append(snap.Requirements, Requirement{
			Class:       class,
			Lesson:      lesson,
			Teacher:     teacher,
			Grade:       grade,
			WeeklyHours: weekly,
		})
	}

	return snap
}

// TeacherAvailable reports whether the teacher may be scheduled on the cell.
func (s *Snapshot) TeacherAvailable(teacher TeacherID, day Day, slot Slot) bool {
	profile, ok := s.teachers[teacher]
	if !ok {
		return false
	}
	_, blocked := profile.blocked[gridKey{Day: day, Slot: slot}]
	return !blocked
}

// MaxDailyHours returns the teacher's daily cap; zero means unbounded.
func (s *Snapshot) MaxDailyHours(teacher TeacherID) int {
	if profile, ok := s.teachers[teacher]; ok {
		return profile.MaxDailyHours
	}
	return 0
}

// TeacherIDs lists every teacher in the snapshot.
func (s *Snapshot) TeacherIDs() []TeacherID {
	ids := make([]TeacherID, 0, len(s.teachers))
	for id := range s.teachers {
		ids = append(ids, id)
	}
	return ids
}
