package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulplan/timetable-engine/internal/models"
)

// CurriculumRepository reads the (lesson, grade) → weekly hours table.
type CurriculumRepository struct {
	db *sqlx.DB
}

// NewCurriculumRepository creates a new curriculum repository.
func NewCurriculumRepository(db *sqlx.DB) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

// ListAll returns every curriculum requirement for snapshot assembly.
func (r *CurriculumRepository) ListAll(ctx context.Context) ([]models.CurriculumRequirement, error) {
	const query = `SELECT id, lesson_id, grade, weekly_hours, created_at FROM curriculum_requirements ORDER BY lesson_id, grade`
	var requirements []models.CurriculumRequirement
	if err := r.db.SelectContext(ctx, &requirements, query); err != nil {
		return nil, fmt.Errorf("list curriculum requirements: %w", err)
	}
	return requirements, nil
}

// WeeklyHours returns the mandated hours for a (lesson, grade) pair.
func (r *CurriculumRepository) WeeklyHours(ctx context.Context, lessonID, grade string) (int, error) {
	const query = `SELECT weekly_hours FROM curriculum_requirements WHERE lesson_id = $1 AND grade = $2`
	var hours int
	if err := r.db.GetContext(ctx, &hours, query, lessonID, grade); err != nil {
		return 0, err
	}
	return hours, nil
}
