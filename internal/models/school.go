package models

import "time"

// SchoolType determines how many periods a school day has.
type SchoolType string

const (
	SchoolTypePrimary   SchoolType = "PRIMARY"
	SchoolTypeMiddle    SchoolType = "MIDDLE"
	SchoolTypeHigh      SchoolType = "HIGH"
	SchoolTypeAnatolian SchoolType = "ANATOLIAN_HIGH"
)

// SchoolSettings holds the per-deployment school profile.
type SchoolSettings struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	SchoolType   SchoolType `db:"school_type" json:"school_type"`
	ActiveTermID string     `db:"active_term_id" json:"active_term_id"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
