package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okulplan/timetable-engine/internal/models"
	appErrors "github.com/okulplan/timetable-engine/pkg/errors"
)

func newTimetableFixture(t *testing.T) (*TimetableService, *memoryCacheStub) {
	t.Helper()

	entries := timetableEntryStub{
		byClass: map[string][]models.ScheduleEntry{
			"class-1": {
				{ID: "e1", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-1", LessonID: "math", Day: 0, TimeSlot: 0},
				{ID: "e2", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-1", LessonID: "math", Day: 0, TimeSlot: 1},
			},
		},
		byTeacher: map[string][]models.ScheduleEntry{
			"teacher-1": {
				{ID: "e1", TermID: "term-1", ClassID: "class-1", TeacherID: "teacher-1", LessonID: "math", Day: 0, TimeSlot: 0},
			},
		},
	}
	classes := classFinderStub{classes: map[string]models.Class{
		"class-1": {ID: "class-1", Name: "9-A", Grade: "9"},
	}}
	teachers := teacherFinderStub{teachers: map[string]models.Teacher{
		"teacher-1": {ID: "teacher-1", FullName: "Teacher A"},
	}}
	lessons := lessonReaderStub{lessons: []models.Lesson{{ID: "math", Name: "Mathematics"}}}
	settings := settingsStub{settings: models.SchoolSettings{ActiveTermID: "term-1", SchoolType: models.SchoolTypeHigh}}
	cache := &memoryCacheStub{items: map[string][]byte{}}

	svc := NewTimetableService(entries, classes, teachers, lessons, settings, cache, time.Minute, zap.NewNop())
	return svc, cache
}

func TestTimetableServiceClassWeek(t *testing.T) {
	svc, cache := newTimetableFixture(t)

	resp, err := svc.ClassWeek(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Equal(t, "term-1", resp.TermID)
	require.Len(t, resp.Cells, 2)
	assert.Equal(t, "Mathematics", resp.Cells[0].LessonName)
	assert.Equal(t, "Teacher A", resp.Cells[0].TeacherName)

	_, ok := cache.items["timetable:class:term-1:class-1"]
	assert.True(t, ok, "view should be cached after the first read")
}

func TestTimetableServiceClassWeekServedFromCache(t *testing.T) {
	svc, cache := newTimetableFixture(t)

	first, err := svc.ClassWeek(context.Background(), "class-1")
	require.NoError(t, err)

	cache.hits = 0
	second, err := svc.ClassWeek(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)
}

func TestTimetableServiceTeacherWeek(t *testing.T) {
	svc, _ := newTimetableFixture(t)

	resp, err := svc.TeacherWeek(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", resp.TeacherID)
	require.Len(t, resp.Cells, 1)
	assert.Equal(t, "9-A", resp.Cells[0].ClassName)
}

func TestTimetableServiceUnknownClass(t *testing.T) {
	svc, _ := newTimetableFixture(t)

	_, err := svc.ClassWeek(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceUnknownTeacher(t *testing.T) {
	svc, _ := newTimetableFixture(t)

	_, err := svc.TeacherWeek(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type timetableEntryStub struct {
	byClass   map[string][]models.ScheduleEntry
	byTeacher map[string][]models.ScheduleEntry
}

func (s timetableEntryStub) ListByClass(ctx context.Context, termID, classID string) ([]models.ScheduleEntry, error) {
	return s.byClass[classID], nil
}

func (s timetableEntryStub) ListByTeacher(ctx context.Context, termID, teacherID string) ([]models.ScheduleEntry, error) {
	return s.byTeacher[teacherID], nil
}

type classFinderStub struct {
	classes map[string]models.Class
}

func (s classFinderStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := s.classes[id]; ok {
		return &class, nil
	}
	return nil, sql.ErrNoRows
}

func (s classFinderStub) ListAll(ctx context.Context) ([]models.Class, error) {
	all := make([]models.Class, 0, len(s.classes))
	for _, class := range s.classes {
		all = append(all, class)
	}
	return all, nil
}

type teacherFinderStub struct {
	teachers map[string]models.Teacher
}

func (s teacherFinderStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := s.teachers[id]; ok {
		return &teacher, nil
	}
	return nil, sql.ErrNoRows
}

func (s teacherFinderStub) ListActive(ctx context.Context) ([]models.Teacher, error) {
	all := make([]models.Teacher, 0, len(s.teachers))
	for _, teacher := range s.teachers {
		all = append(all, teacher)
	}
	return all, nil
}

type memoryCacheStub struct {
	items map[string][]byte
	hits  int
}

func (s *memoryCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	s.hits++
	return json.Unmarshal(raw, dest)
}

func (s *memoryCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.items[key] = raw
	return nil
}
