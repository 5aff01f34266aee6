package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulplan/timetable-engine/internal/models"
)

// AssignmentRepository reads the pre-existing teacher ↔ (class, lesson)
// bindings the engine schedules.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByTerm returns every assignment for the term.
func (r *AssignmentRepository) ListByTerm(ctx context.Context, termID string) ([]models.LessonAssignment, error) {
	const query = `SELECT id, term_id, class_id, teacher_id, lesson_id, created_at FROM lesson_assignments WHERE term_id = $1 ORDER BY class_id, lesson_id`
	var assignments []models.LessonAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, termID); err != nil {
		return nil, fmt.Errorf("list assignments for term %s: %w", termID, err)
	}
	return assignments, nil
}

// ListDetailedByClass returns enriched assignments for a class.
func (r *AssignmentRepository) ListDetailedByClass(ctx context.Context, classID string) ([]models.LessonAssignmentDetail, error) {
	const query = `
		SELECT a.id, a.term_id, a.class_id, a.teacher_id, a.lesson_id, a.created_at,
		       c.name AS class_name, l.name AS lesson_name, t.full_name AS teacher_name
		FROM lesson_assignments a
		JOIN classes c ON c.id = a.class_id
		JOIN lessons l ON l.id = a.lesson_id
		JOIN teachers t ON t.id = a.teacher_id
		WHERE a.class_id = $1
		ORDER BY l.name`
	var details []models.LessonAssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, classID); err != nil {
		return nil, fmt.Errorf("list assignment details for class %s: %w", classID, err)
	}
	return details, nil
}
