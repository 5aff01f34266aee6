package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/okulplan/timetable-engine/internal/dto"
	"github.com/okulplan/timetable-engine/internal/models"
	appErrors "github.com/okulplan/timetable-engine/pkg/errors"
)

type scheduleEntryReader interface {
	ListByClass(ctx context.Context, termID, classID string) ([]models.ScheduleEntry, error)
	ListByTeacher(ctx context.Context, termID, teacherID string) ([]models.ScheduleEntry, error)
}

type classFinder interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ListAll(ctx context.Context) ([]models.Class, error)
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type lessonLister interface {
	ListAll(ctx context.Context) ([]models.Lesson, error)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type activeTermReader interface {
	Get(ctx context.Context) (*models.SchoolSettings, error)
}

// TimetableService serves the persisted weekly views, cached per subject.
type TimetableService struct {
	entries  scheduleEntryReader
	classes  classFinder
	teachers teacherFinder
	lessons  lessonLister
	settings activeTermReader
	cache    timetableCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTimetableService wires timetable read dependencies.
func NewTimetableService(
	entries scheduleEntryReader,
	classes classFinder,
	teachers teacherFinder,
	lessons lessonLister,
	settings activeTermReader,
	cache timetableCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *TimetableService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		entries:  entries,
		classes:  classes,
		teachers: teachers,
		lessons:  lessons,
		settings: settings,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ClassWeek returns the weekly timetable of a class for the active term.
func (s *TimetableService) ClassWeek(ctx context.Context, classID string) (*dto.ClassTimetableResponse, error) {
	termID, err := s.activeTermID(ctx)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("timetable:class:%s:%s", termID, classID)
	if s.cache != nil {
		var cached dto.ClassTimetableResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("timetable cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	rows, err := s.entries.ListByClass(ctx, termID, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class timetable")
	}

	names, err := s.nameIndex(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClassTimetableResponse{
		TermID:  termID,
		ClassID: classID,
		Cells:   s.toCells(rows, names),
	}
	s.writeCache(ctx, cacheKey, resp)
	return resp, nil
}

// TeacherWeek returns the weekly timetable of a teacher for the active term.
func (s *TimetableService) TeacherWeek(ctx context.Context, teacherID string) (*dto.TeacherTimetableResponse, error) {
	termID, err := s.activeTermID(ctx)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("timetable:teacher:%s:%s", termID, teacherID)
	if s.cache != nil {
		var cached dto.TeacherTimetableResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("timetable cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	rows, err := s.entries.ListByTeacher(ctx, termID, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher timetable")
	}

	names, err := s.nameIndex(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.TeacherTimetableResponse{
		TermID:    termID,
		TeacherID: teacherID,
		Cells:     s.toCells(rows, names),
	}
	s.writeCache(ctx, cacheKey, resp)
	return resp, nil
}

func (s *TimetableService) activeTermID(ctx context.Context) (string, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school settings")
	}
	if settings.ActiveTermID == "" {
		return "", appErrors.Clone(appErrors.ErrPreconditionFailed, "no active term configured")
	}
	return settings.ActiveTermID, nil
}

type nameIndex struct {
	lessons  map[string]string
	classes  map[string]string
	teachers map[string]string
}

func (s *TimetableService) nameIndex(ctx context.Context) (*nameIndex, error) {
	lessons, err := s.lessons.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}
	classes, err := s.classes.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}

	idx := &nameIndex{
		lessons:  make(map[string]string, len(lessons)),
		classes:  make(map[string]string, len(classes)),
		teachers: make(map[string]string, len(teachers)),
	}
	for _, lesson := range lessons {
		idx.lessons[lesson.ID] = lesson.Name
	}
	for _, class := range classes {
		idx.classes[class.ID] = class.Name
	}
	for _, teacher := range teachers {
		idx.teachers[teacher.ID] = teacher.FullName
	}
	return idx, nil
}

func (s *TimetableService) toCells(rows []models.ScheduleEntry, names *nameIndex) []dto.TimetableCell {
	cells := make([]dto.TimetableCell, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, dto.TimetableCell{
			Day:         row.Day,
			TimeSlot:    row.TimeSlot,
			LessonID:    row.LessonID,
			LessonName:  names.lessons[row.LessonID],
			ClassID:     row.ClassID,
			ClassName:   names.classes[row.ClassID],
			TeacherID:   row.TeacherID,
			TeacherName: names.teachers[row.TeacherID],
			ClassroomID: row.ClassroomID,
		})
	}
	return cells
}

func (s *TimetableService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("timetable cache write failed", zap.String("key", key), zap.Error(err))
	}
}
