package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulplan/timetable-engine/internal/models"
)

// LessonRepository provides persistence for lessons and classrooms.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// ListAll returns every lesson.
func (r *LessonRepository) ListAll(ctx context.Context) ([]models.Lesson, error) {
	const query = `SELECT id, code, name, created_at, updated_at FROM lessons ORDER BY code`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// FindByID loads a lesson by id.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	const query = `SELECT id, code, name, created_at, updated_at FROM lessons WHERE id = $1`
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListClassrooms returns every classroom.
func (r *LessonRepository) ListClassrooms(ctx context.Context) ([]models.Classroom, error) {
	const query = `SELECT id, name, capacity, created_at FROM classrooms ORDER BY name`
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return rooms, nil
}
