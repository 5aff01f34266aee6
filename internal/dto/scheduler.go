package dto

// GenerateScheduleRequest instructs the generator to build a proposal for the term.
type GenerateScheduleRequest struct {
	TermID            string `json:"termId" validate:"required"`
	AllowDegradedFill *bool  `json:"allowDegradedFill"`
	MaxAttempts       int    `json:"maxAttempts" validate:"omitempty,min=1,max=100000"`
}

// ScheduleEntryProposal represents one generated hour.
type ScheduleEntryProposal struct {
	ClassID     string `json:"classId"`
	TeacherID   string `json:"teacherId"`
	LessonID    string `json:"lessonId"`
	ClassroomID string `json:"classroomId,omitempty"`
	Day         int    `json:"day"`
	TimeSlot    int    `json:"timeSlot"`
}

// UnmetRequirementInfo reports demand the generator could not place in full.
type UnmetRequirementInfo struct {
	ClassID        string `json:"classId"`
	LessonID       string `json:"lessonId"`
	TeacherID      string `json:"teacherId"`
	RequiredHours  int    `json:"requiredHours"`
	ScheduledHours int    `json:"scheduledHours"`
	Reason         string `json:"reason,omitempty"`
}

// ConflictInfo describes a double booking found after placement.
type ConflictInfo struct {
	Dimension string `json:"dimension"`
	TeacherID string `json:"teacherId,omitempty"`
	ClassID   string `json:"classId,omitempty"`
	Day       int    `json:"day"`
	TimeSlot  int    `json:"timeSlot"`
	Resolved  bool   `json:"resolved"`
}

// WorkloadShortfallInfo reports a teacher left under the working-day target.
type WorkloadShortfallInfo struct {
	TeacherID   string `json:"teacherId"`
	WorkingDays int    `json:"workingDays"`
	TargetDays  int    `json:"targetDays"`
}

// GenerationStats summarises the generation run.
type GenerationStats struct {
	PlacedHours         int `json:"placedHours"`
	UnmetHours          int `json:"unmetHours"`
	Backtracks          int `json:"backtracks"`
	AlternativesUsed    int `json:"alternativesUsed"`
	GapPlacements       int `json:"gapPlacements"`
	DegradedRelocations int `json:"degradedRelocations"`
	ResolvedConflicts   int `json:"resolvedConflicts"`
}

// GenerateScheduleResponse returns the built timetable proposal.
type GenerateScheduleResponse struct {
	ProposalID string                  `json:"proposalId"`
	TermID     string                  `json:"termId"`
	Score      float64                 `json:"score"`
	Entries    []ScheduleEntryProposal `json:"entries"`
	Unmet      []UnmetRequirementInfo  `json:"unmet"`
	Conflicts  []ConflictInfo          `json:"conflicts"`
	Shortfalls []WorkloadShortfallInfo `json:"shortfalls"`
	Stats      GenerationStats         `json:"stats"`
}

// GenerateScheduleAsyncResponse acknowledges a queued generation job.
type GenerateScheduleAsyncResponse struct {
	JobID  string `json:"jobId"`
	TermID string `json:"termId"`
	Status string `json:"status"`
}

// SaveScheduleRequest persists a proposal into the term's schedule entries.
type SaveScheduleRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
}

// SaveScheduleResponse reports the persisted entry count.
type SaveScheduleResponse struct {
	TermID       string `json:"termId"`
	SavedEntries int    `json:"savedEntries"`
}
