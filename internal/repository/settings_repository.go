package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/okulplan/timetable-engine/internal/models"
)

// SettingsRepository reads the per-deployment school profile.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the school settings row.
func (r *SettingsRepository) Get(ctx context.Context) (*models.SchoolSettings, error) {
	const query = `SELECT id, name, school_type, active_term_id, updated_at FROM school_settings LIMIT 1`
	var settings models.SchoolSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return &settings, nil
}
