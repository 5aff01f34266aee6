package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okulplan/timetable-engine/internal/models"
)

func TestBuildSnapshotAssemblesRequirements(t *testing.T) {
	snap := BuildSnapshot(SnapshotInput{
		TermID:     "term-1",
		SchoolType: models.SchoolTypeHigh,
		Classes:    []models.Class{{ID: "class-1", Name: "9-A", Grade: "9"}},
		Teachers:   []models.Teacher{{ID: "teacher-1", FullName: "Teacher A", MaxDailyHours: 6}},
		Lessons:    []models.Lesson{{ID: "math", Code: "MAT", Name: "Mathematics"}},
		Classrooms: []models.Classroom{{ID: "room-1", Name: "101"}},
		Curriculum: []models.CurriculumRequirement{
			{LessonID: "math", Grade: "9", WeeklyHours: 5},
		},
		Assignments: []models.LessonAssignment{
			{TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-1", LessonID: "math"},
		},
	}, zap.NewNop())

	assert.Equal(t, 8, snap.Grid.SlotsPerDay)
	assert.Equal(t, ClassroomID("room-1"), snap.DefaultClassroom)
	require.Len(t, snap.Requirements, 1)
	assert.Equal(t, 5, snap.Requirements[0].WeeklyHours)
	assert.Equal(t, 6, snap.MaxDailyHours("teacher-1"))
}

func TestBuildSnapshotSkipsMalformedRows(t *testing.T) {
	snap := BuildSnapshot(SnapshotInput{
		TermID:     "term-1",
		SchoolType: models.SchoolTypeMiddle,
		Classes:    []models.Class{{ID: "class-1", Grade: "7"}},
		Teachers:   []models.Teacher{{ID: "teacher-1"}},
		Lessons:    []models.Lesson{{ID: "math"}},
		Curriculum: []models.CurriculumRequirement{
			{LessonID: "math", Grade: "7", WeeklyHours: -3},
			{LessonID: "ghost-lesson", Grade: "7", WeeklyHours: 2},
		},
		Assignments: []models.LessonAssignment{
			{ClassID: "class-1", TeacherID: "ghost-teacher", LessonID: "math"},
			{ClassID: "ghost-class", TeacherID: "teacher-1", LessonID: "math"},
			{ClassID: "class-1", TeacherID: "teacher-1", LessonID: "math"},
		},
		Unavailability: []models.TeacherUnavailability{
			{TeacherID: "teacher-1", Day: 9, TimeSlot: 0},
			{TeacherID: "ghost-teacher", Day: 0, TimeSlot: 0},
		},
	}, zap.NewNop())

	// the only surviving assignment has no usable curriculum hours
	assert.Empty(t, snap.Requirements)
	assert.Equal(t, 7, snap.Grid.SlotsPerDay)
}

func TestSnapshotTeacherAvailability(t *testing.T) {
	snap := BuildSnapshot(SnapshotInput{
		SchoolType: models.SchoolTypePrimary,
		Teachers:   []models.Teacher{{ID: "teacher-1"}},
		Unavailability: []models.TeacherUnavailability{
			{TeacherID: "teacher-1", Day: 0, TimeSlot: 3},
		},
	}, zap.NewNop())

	assert.Equal(t, 6, snap.Grid.SlotsPerDay)
	assert.False(t, snap.TeacherAvailable("teacher-1", 0, 3))
	assert.True(t, snap.TeacherAvailable("teacher-1", 0, 4))
	assert.False(t, snap.TeacherAvailable("unknown", 0, 0))
}

func TestSlotsForSchoolType(t *testing.T) {
	assert.Equal(t, 6, SlotsForSchoolType(models.SchoolTypePrimary))
	assert.Equal(t, 7, SlotsForSchoolType(models.SchoolTypeMiddle))
	assert.Equal(t, 8, SlotsForSchoolType(models.SchoolTypeHigh))
	assert.Equal(t, 8, SlotsForSchoolType(models.SchoolTypeAnatolian))
}
