package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okulplan/timetable-engine/internal/models"
)

type testLoad struct {
	class   string
	teacher string
	lesson  string
	hours   int
}

func buildTestSnapshot(t *testing.T, loads []testLoad, blocked []models.TeacherUnavailability, maxDaily int) *Snapshot {
	t.Helper()

	classes := map[string]models.Class{}
	teachers := map[string]models.Teacher{}
	lessons := map[string]models.Lesson{}
	var curriculum []models.CurriculumRequirement
	var assignments []models.LessonAssignment

	for _, load := range loads {
		classes[load.class] = models.Class{ID: load.class, Grade: "9"}
		teachers[load.teacher] = models.Teacher{ID: load.teacher, MaxDailyHours: maxDaily}
		lessons[load.lesson] = models.Lesson{ID: load.lesson}
		curriculum = append(curriculum, models.CurriculumRequirement{
			LessonID: load.lesson, Grade: "9", WeeklyHours: load.hours,
		})
		assignments = append(assignments, models.LessonAssignment{
			TermID: "term-1", ClassID: load.class, TeacherID: load.teacher, LessonID: load.lesson,
		})
	}

	input := SnapshotInput{
		TermID:         "term-1",
		SchoolType:     models.SchoolTypeHigh,
		Classrooms:     []models.Classroom{{ID: "room-1"}},
		Curriculum:     curriculum,
		Assignments:    assignments,
		Unavailability: blocked,
	}
	for _, c := range classes {
		input.Classes = append(input.Classes, c)
	}
	for _, teacher := range teachers {
		input.Teachers = append(input.Teachers, teacher)
	}
	for _, lesson := range lessons {
		input.Lessons = append(input.Lessons, lesson)
	}
	return BuildSnapshot(input, zap.NewNop())
}

// blockWeek marks every cell of the listed days unavailable for the teacher.
func blockWeek(teacher string, slotsPerDay int, days ...int) []models.TeacherUnavailability {
	var blocked []models.TeacherUnavailability
	for _, day := range days {
		for slot := 0; slot < slotsPerDay; slot++ {
			blocked = append(blocked, models.TeacherUnavailability{TeacherID: teacher, Day: day, TimeSlot: slot})
		}
	}
	return blocked
}

func assertNoDoubleBookings(t *testing.T, entries []Entry) {
	t.Helper()
	teacherCells := map[string]struct{}{}
	classCells := map[string]struct{}{}
	for _, entry := range entries {
		tk := fmt.Sprintf("%s|%d|%d", entry.Teacher, entry.Day, entry.Slot)
		ck := fmt.Sprintf("%s|%d|%d", entry.Class, entry.Day, entry.Slot)
		_, teacherDup := teacherCells[tk]
		_, classDup := classCells[ck]
		assert.False(t, teacherDup, "teacher %s double-booked on day %d slot %d", entry.Teacher, entry.Day, entry.Slot)
		assert.False(t, classDup, "class %s double-booked on day %d slot %d", entry.Class, entry.Day, entry.Slot)
		teacherCells[tk] = struct{}{}
		classCells[ck] = struct{}{}
	}
}

// lessonDaySlots collects, per day, the sorted slots one (class, lesson) holds.
func lessonDaySlots(entries []Entry, class ClassID, lesson LessonID) map[Day][]Slot {
	perDay := map[Day][]Slot{}
	for _, entry := range entries {
		if entry.Class == class && entry.Lesson == lesson {
			perDay[entry.Day] = insertSorted(perDay[entry.Day], entry.Slot)
		}
	}
	return perDay
}

func insertSorted(slots []Slot, slot Slot) []Slot {
	slots = append(slots, slot)
	for i := len(slots) - 1; i > 0 && slots[i] < slots[i-1]; i-- {
		slots[i], slots[i-1] = slots[i-1], slots[i]
	}
	return slots
}

func assertContiguous(t *testing.T, slots []Slot) {
	t.Helper()
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, slots[i-1]+1, slots[i], "same-day hours must be consecutive: %v", slots)
	}
}

func TestEnginePlacesFiveHourRequirement(t *testing.T) {
	snap := buildTestSnapshot(t, []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 5},
	}, nil, 0)

	result := New(snap, DefaultOptions(), zap.NewNop()).Run(context.Background())

	require.Empty(t, result.UnmetRequirements)
	require.Len(t, result.Entries, 5)
	assertNoDoubleBookings(t, result.Entries)

	perDay := lessonDaySlots(result.Entries, "class-1", "math")
	for _, slots := range perDay {
		assert.LessOrEqual(t, len(slots), 2)
		assertContiguous(t, slots)
	}
	// the balancer spreads five hours over four days
	assert.Len(t, perDay, 4)
	assert.Empty(t, result.WorkloadShortfalls)
}

func TestEngineSharedTeacherAcrossClasses(t *testing.T) {
	snap := buildTestSnapshot(t, []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 6},
		{class: "class-2", teacher: "teacher-1", lesson: "math", hours: 6},
	}, nil, 0)

	result := New(snap, DefaultOptions(), zap.NewNop()).Run(context.Background())

	require.Empty(t, result.UnmetRequirements)
	require.Len(t, result.Entries, 12)
	assertNoDoubleBookings(t, result.Entries)
	assert.Empty(t, result.UnresolvedConflicts)
	assert.Empty(t, result.WorkloadShortfalls)
}

func TestEngineHonoursUnavailability(t *testing.T) {
	blocked := blockWeek("teacher-1", 8, 0)
	snap := buildTestSnapshot(t, []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 2},
	}, blocked, 0)

	result := New(snap, DefaultOptions(), zap.NewNop()).Run(context.Background())

	require.Empty(t, result.UnmetRequirements)
	for _, entry := range result.Entries {
		assert.NotEqual(t, Day(0), entry.Day, "blocked day must stay empty")
	}
	// two hours can never reach the four-day floor
	require.Len(t, result.WorkloadShortfalls, 1)
	assert.Equal(t, TeacherID("teacher-1"), result.WorkloadShortfalls[0].Teacher)
}

func TestEngineRespectsMaxDailyHours(t *testing.T) {
	snap := buildTestSnapshot(t, []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 6},
	}, nil, 2)

	result := New(snap, DefaultOptions(), zap.NewNop()).Run(context.Background())

	require.Empty(t, result.UnmetRequirements)
	require.Len(t, result.Entries, 6)

	perDay := map[Day]int{}
	for _, entry := range result.Entries {
		perDay[entry.Day]++
	}
	for day, count := range perDay {
		assert.LessOrEqual(t, count, 2, "day %d exceeds the daily cap", day)
	}
}

func TestEngineGapFallbackOnSingleAvailableDay(t *testing.T) {
	blocked := blockWeek("teacher-1", 8, 1, 2, 3, 4)
	snap := buildTestSnapshot(t, []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 4},
	}, blocked, 0)

	result := New(snap, DefaultOptions(), zap.NewNop()).Run(context.Background())

	require.Empty(t, result.UnmetRequirements)
	require.Len(t, result.Entries, 4)
	for _, entry := range result.Entries {
		assert.Equal(t, Day(0), entry.Day)
	}

	slots := lessonDaySlots(result.Entries, "class-1", "math")[0]
	assert.Equal(t, []Slot{0, 1, 3, 4}, slots, "two blocks separated by one free slot")

	placedViaGap := false
	for _, attempt := range result.Attempts {
		if attempt.Strategy == "gap-tolerant" && attempt.Outcome == AttemptPlaced {
			placedViaGap = true
		}
	}
	assert.True(t, placedViaGap)
}

func TestEngineReportsPartialPlacement(t *testing.T) {
	// teacher is free only on Monday slots 0-3
	blocked := blockWeek("teacher-1", 8, 1, 2, 3, 4)
	for slot := 4; slot < 8; slot++ {
		blocked = append(blocked, models.TeacherUnavailability{TeacherID: "teacher-1", Day: 0, TimeSlot: slot})
	}
	snap := buildTestSnapshot(t, []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 6},
	}, blocked, 0)

	result := New(snap, DefaultOptions(), zap.NewNop()).Run(context.Background())

	require.Len(t, result.UnmetRequirements, 1)
	assert.Equal(t, 6, result.UnmetRequirements[0].RequiredHours)
	assert.Equal(t, 4, result.UnmetRequirements[0].ScheduledHours)
	require.Len(t, result.Entries, 4)

	slots := lessonDaySlots(result.Entries, "class-1", "math")[0]
	assertContiguous(t, slots)
}

func TestEngineCancelledContext(t *testing.T) {
	snap := buildTestSnapshot(t, []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 4},
	}, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(snap, DefaultOptions(), zap.NewNop()).Run(ctx)

	assert.Empty(t, result.Entries)
	require.Len(t, result.UnmetRequirements, 1)
	assert.Equal(t, 0, result.UnmetRequirements[0].ScheduledHours)
}

func TestEngineDeterministic(t *testing.T) {
	loads := []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 5},
		{class: "class-1", teacher: "teacher-2", lesson: "science", hours: 4},
		{class: "class-2", teacher: "teacher-1", lesson: "math", hours: 3},
	}

	first := New(buildTestSnapshot(t, loads, nil, 0), DefaultOptions(), zap.NewNop()).Run(context.Background())
	second := New(buildTestSnapshot(t, loads, nil, 0), DefaultOptions(), zap.NewNop()).Run(context.Background())

	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Stats, second.Stats)
}
