package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/okulplan/timetable-engine/internal/models"
)

// ScheduleEntryRepository persists generated timetable entries. Generated
// rows for a term are replaced wholesale; lesson assignments live in their
// own table and are never touched here.
type ScheduleEntryRepository struct {
	db *sqlx.DB
}

// NewScheduleEntryRepository creates a new schedule entry repository.
func NewScheduleEntryRepository(db *sqlx.DB) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{db: db}
}

const scheduleEntryColumns = "id, term_id, class_id, teacher_id, lesson_id, classroom_id, day, time_slot, created_at"

// ListByTerm returns every entry of the term ordered by class, day, slot.
func (r *ScheduleEntryRepository) ListByTerm(ctx context.Context, termID string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE term_id = $1 ORDER BY class_id, day, time_slot", scheduleEntryColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, termID); err != nil {
		return nil, fmt.Errorf("list schedule entries for term %s: %w", termID, err)
	}
	return entries, nil
}

// ListByClass returns the class's week.
func (r *ScheduleEntryRepository) ListByClass(ctx context.Context, termID, classID string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE term_id = $1 AND class_id = $2 ORDER BY day, time_slot", scheduleEntryColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, termID, classID); err != nil {
		return nil, fmt.Errorf("list schedule entries for class %s: %w", classID, err)
	}
	return entries, nil
}

// ListByTeacher returns the teacher's week.
func (r *ScheduleEntryRepository) ListByTeacher(ctx context.Context, termID, teacherID string) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_entries WHERE term_id = $1 AND teacher_id = $2 ORDER BY day, time_slot", scheduleEntryColumns)
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, termID, teacherID); err != nil {
		return nil, fmt.Errorf("list schedule entries for teacher %s: %w", teacherID, err)
	}
	return entries, nil
}

// ReplaceForTermWithTx deletes the term's prior generated entries and bulk
// inserts the new ones inside the caller's transaction.
func (r *ScheduleEntryRepository) ReplaceForTermWithTx(ctx context.Context, tx *sqlx.Tx, termID string, entries []models.ScheduleEntry) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM schedule_entries WHERE term_id = $1", termID); err != nil {
		return fmt.Errorf("delete schedule entries for term %s: %w", termID, err)
	}
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().UTC()
	placeholders := make([]string, 0, len(entries))
	args := make([]interface{}, 0, len(entries)*9)
	for i, entry := range entries {
		id := entry.ID
		if id == "" {
			id = uuid.NewString()
		}
		base := i * 9
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		args = append(args, id, termID, entry.ClassID, entry.TeacherID, entry.LessonID, entry.ClassroomID, entry.Day, entry.TimeSlot, now)
	}

	query := fmt.Sprintf("INSERT INTO schedule_entries (%s) VALUES %s", scheduleEntryColumns, strings.Join(placeholders, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk insert schedule entries: %w", err)
	}
	return nil
}
