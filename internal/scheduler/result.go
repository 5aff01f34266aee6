package scheduler

// UnmetRequirement records a (class, lesson) demand the engine could not fully
// place even after exhausting every alternative configuration and strategy.
type UnmetRequirement struct {
	Class          ClassID   `json:"class_id"`
	Lesson         LessonID  `json:"lesson_id"`
	Teacher        TeacherID `json:"teacher_id"`
	ScheduledHours int       `json:"scheduled_hours"`
	RequiredHours  int       `json:"required_hours"`
}

// ConflictDimension tells which party a double-booking collides on.
type ConflictDimension string

const (
	ConflictTeacher ConflictDimension = "TEACHER"
	ConflictClass   ConflictDimension = "CLASS"
)

// Conflict describes a double-booked cell found by the defensive scan.
type Conflict struct {
	Dimension ConflictDimension `json:"dimension"`
	Teacher   TeacherID         `json:"teacher_id,omitempty"`
	Class     ClassID           `json:"class_id,omitempty"`
	Day       Day               `json:"day"`
	Slot      Slot              `json:"slot"`
	Entries   int               `json:"entries"`
	Resolved  bool              `json:"resolved"`
}

// WorkloadShortfall reports a teacher left under four working days after the
// balancer exhausted every relocation strategy.
type WorkloadShortfall struct {
	Teacher     TeacherID `json:"teacher_id"`
	WorkingDays int       `json:"working_days"`
	EmptyDays   []Day     `json:"empty_days"`
}

// AttemptOutcome classifies one placement attempt in the diagnostics log.
type AttemptOutcome string

const (
	AttemptPlaced   AttemptOutcome = "PLACED"
	AttemptFailed   AttemptOutcome = "FAILED"
	AttemptRejected AttemptOutcome = "CONFIG_REJECTED"
	AttemptBudget   AttemptOutcome = "BUDGET_EXHAUSTED"
)

// Attempt is one line of the per-run placement diagnostics.
type Attempt struct {
	Class    ClassID        `json:"class_id"`
	Lesson   LessonID       `json:"lesson_id"`
	Config   string         `json:"config"`
	Strategy string         `json:"strategy"`
	Probes   int            `json:"probes"`
	Outcome  AttemptOutcome `json:"outcome"`
	Reason   string         `json:"reason,omitempty"`
}

// Stats aggregates counters across one generation run.
type Stats struct {
	Requirements        int `json:"requirements"`
	PlacedBlocks        int `json:"placed_blocks"`
	Backtracks          int `json:"backtracks"`
	FlexibleFallbacks   int `json:"flexible_fallbacks"`
	DegradedRelocations int `json:"degraded_relocations"`
	TotalProbes         int `json:"total_probes"`
}

// Result is the complete outcome of one generation run. The engine always
// terminates and always returns a Result; unmet demand and unresolved
// conflicts are data, not errors.
type Result struct {
	Entries             []Entry             `json:"entries"`
	UnmetRequirements   []UnmetRequirement  `json:"unmet_requirements"`
	UnresolvedConflicts []Conflict          `json:"unresolved_conflicts"`
	WorkloadShortfalls  []WorkloadShortfall `json:"workload_shortfalls"`
	Attempts            []Attempt           `json:"attempts"`
	Stats               Stats               `json:"stats"`
}
