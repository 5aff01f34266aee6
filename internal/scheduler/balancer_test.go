package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okulplan/timetable-engine/internal/models"
)

func TestBalancerSpreadsBlocksAcrossDays(t *testing.T) {
	snap := buildTestSnapshot(t, []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 6},
	}, nil, 0)

	result := New(snap, DefaultOptions(), zap.NewNop()).Run(context.Background())

	require.Empty(t, result.UnmetRequirements)
	days := map[Day]struct{}{}
	for _, entry := range result.Entries {
		days[entry.Day] = struct{}{}
	}
	assert.GreaterOrEqual(t, len(days), 4, "six hours must reach the working-day floor")
	assert.Empty(t, result.WorkloadShortfalls)
}

func TestBalancerReportsShortfallWhenDaysBlocked(t *testing.T) {
	blocked := blockWeek("teacher-1", 8, 3, 4)
	snap := buildTestSnapshot(t, []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 6},
	}, blocked, 0)

	result := New(snap, DefaultOptions(), zap.NewNop()).Run(context.Background())

	require.Empty(t, result.UnmetRequirements)
	require.Len(t, result.WorkloadShortfalls, 1)
	shortfall := result.WorkloadShortfalls[0]
	assert.Equal(t, TeacherID("teacher-1"), shortfall.Teacher)
	assert.Equal(t, 3, shortfall.WorkingDays)
	assert.Equal(t, []Day{3, 4}, shortfall.EmptyDays)
	assert.Zero(t, result.Stats.DegradedRelocations)
}

func TestBalancerDegradedFillRelaxesAvailability(t *testing.T) {
	blocked := blockWeek("teacher-1", 8, 3, 4)
	snap := buildTestSnapshot(t, []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 6},
	}, blocked, 0)

	opts := DefaultOptions()
	opts.AllowDegradedFill = true
	result := New(snap, opts, zap.NewNop()).Run(context.Background())

	require.Empty(t, result.UnmetRequirements)
	assert.Empty(t, result.WorkloadShortfalls)
	assert.GreaterOrEqual(t, result.Stats.DegradedRelocations, 1)

	days := map[Day]struct{}{}
	for _, entry := range result.Entries {
		days[entry.Day] = struct{}{}
	}
	assert.GreaterOrEqual(t, len(days), 4)
	assertNoDoubleBookings(t, result.Entries)
}

func TestBalancerDeterministicAcrossRuns(t *testing.T) {
	// two requirements on one teacher leave an empty day after placement, so
	// every run exercises the relocation pass
	loads := []testLoad{
		{class: "class-1", teacher: "teacher-1", lesson: "math", hours: 5},
		{class: "class-1", teacher: "teacher-1", lesson: "science", hours: 3},
	}

	baseline := New(buildTestSnapshot(t, loads, nil, 0), DefaultOptions(), zap.NewNop()).Run(context.Background())
	require.NotEmpty(t, baseline.Entries)

	for i := 0; i < 30; i++ {
		result := New(buildTestSnapshot(t, loads, nil, 0), DefaultOptions(), zap.NewNop()).Run(context.Background())
		require.Equal(t, baseline.Entries, result.Entries, "run %d produced a different schedule", i)
		require.Equal(t, baseline.Stats, result.Stats, "run %d produced different stats", i)
	}
}

func TestBalancerSkipsTeachersWithoutEntries(t *testing.T) {
	// teacher-2 exists in the snapshot but has nothing scheduled
	snap := BuildSnapshot(SnapshotInput{
		SchoolType: models.SchoolTypeHigh,
		Classes:    []models.Class{{ID: "class-1", Grade: "9"}},
		Teachers:   []models.Teacher{{ID: "teacher-1"}, {ID: "teacher-2"}},
		Lessons:    []models.Lesson{{ID: "math"}},
		Curriculum: []models.CurriculumRequirement{{LessonID: "math", Grade: "9", WeeklyHours: 4}},
		Assignments: []models.LessonAssignment{
			{ClassID: "class-1", TeacherID: "teacher-1", LessonID: "math"},
		},
	}, zap.NewNop())

	result := New(snap, DefaultOptions(), zap.NewNop()).Run(context.Background())

	for _, shortfall := range result.WorkloadShortfalls {
		assert.NotEqual(t, TeacherID("teacher-2"), shortfall.Teacher)
	}
}
