package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerOccupyBlocksBothDimensions(t *testing.T) {
	tracker := NewTracker()
	tracker.Occupy("class-1", "teacher-1", 0, 2)

	assert.False(t, tracker.IsFree("class-1", "teacher-2", 0, 2), "class side should block")
	assert.False(t, tracker.IsFree("class-2", "teacher-1", 0, 2), "teacher side should block")
	assert.True(t, tracker.IsFree("class-2", "teacher-2", 0, 2))
	assert.True(t, tracker.IsFree("class-1", "teacher-1", 0, 3))
}

func TestTrackerOccupyReleaseIdempotent(t *testing.T) {
	tracker := NewTracker()
	tracker.Occupy("class-1", "teacher-1", 1, 0)
	tracker.Occupy("class-1", "teacher-1", 1, 0)

	tracker.Release("class-1", "teacher-1", 1, 0)
	assert.True(t, tracker.IsFree("class-1", "teacher-1", 1, 0))

	// releasing a free cell is a no-op
	tracker.Release("class-1", "teacher-1", 1, 0)
	assert.True(t, tracker.IsFree("class-1", "teacher-1", 1, 0))
}

func TestTrackerTeacherDayLoad(t *testing.T) {
	tracker := NewTracker()
	tracker.Occupy("class-1", "teacher-1", 0, 0)
	tracker.Occupy("class-1", "teacher-1", 0, 1)
	tracker.Occupy("class-2", "teacher-1", 2, 4)

	assert.Equal(t, 2, tracker.TeacherDayLoad("teacher-1", 0))
	assert.Equal(t, 1, tracker.TeacherDayLoad("teacher-1", 2))
	assert.Equal(t, 0, tracker.TeacherDayLoad("teacher-1", 1))
	assert.True(t, tracker.TeacherWorksOn("teacher-1", 0))
	assert.False(t, tracker.TeacherWorksOn("teacher-1", 3))
	assert.Equal(t, 2, tracker.TeacherWorkingDays("teacher-1"))
}
