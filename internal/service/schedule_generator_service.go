package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/okulplan/timetable-engine/internal/dto"
	"github.com/okulplan/timetable-engine/internal/models"
	"github.com/okulplan/timetable-engine/internal/scheduler"
	appErrors "github.com/okulplan/timetable-engine/pkg/errors"
	"github.com/okulplan/timetable-engine/pkg/jobs"
)

type settingsReader interface {
	Get(ctx context.Context) (*models.SchoolSettings, error)
}

type schedulerTeacherReader interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
	ListUnavailability(ctx context.Context) ([]models.TeacherUnavailability, error)
}

type schedulerClassReader interface {
	ListAll(ctx context.Context) ([]models.Class, error)
}

type schedulerLessonReader interface {
	ListAll(ctx context.Context) ([]models.Lesson, error)
	ListClassrooms(ctx context.Context) ([]models.Classroom, error)
}

type curriculumReader interface {
	ListAll(ctx context.Context) ([]models.CurriculumRequirement, error)
}

type assignmentReader interface {
	ListByTerm(ctx context.Context, termID string) ([]models.LessonAssignment, error)
}

type scheduleEntryWriter interface {
	ReplaceForTermWithTx(ctx context.Context, tx *sqlx.Tx, termID string, entries []models.ScheduleEntry) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type generationObserver interface {
	ObserveGeneration(duration time.Duration, placedHours, unmetHours int)
}

// ScheduleGeneratorService builds timetable proposals and persists accepted
// ones as the term's schedule.
type ScheduleGeneratorService struct {
	settings    settingsReader
	teachers    schedulerTeacherReader
	classes     schedulerClassReader
	lessons     schedulerLessonReader
	curriculum  curriculumReader
	assignments assignmentReader
	entries     scheduleEntryWriter
	tx          txProvider
	cache       cacheInvalidator
	metrics     generationObserver
	validator   *validator.Validate
	logger      *zap.Logger
	store       *proposalStore
	cfg         ScheduleGeneratorConfig

	queue *jobs.Queue
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	ProposalTTL         time.Duration
	MaxAttempts         int
	MinEducationalScore float64
	AllowDegradedFill   bool
	WorkerConcurrency   int
}

// NewScheduleGeneratorService wires generator dependencies.
func NewScheduleGeneratorService(
	settings settingsReader,
	teachers schedulerTeacherReader,
	classes schedulerClassReader,
	lessons schedulerLessonReader,
	curriculum curriculumReader,
	assignments assignmentReader,
	entries scheduleEntryWriter,
	tx txProvider,
	cache cacheInvalidator,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 1
	}

	s := &ScheduleGeneratorService{
		settings:    settings,
		teachers:    teachers,
		classes:     classes,
		lessons:     lessons,
		curriculum:  curriculum,
		assignments: assignments,
		entries:     entries,
		tx:          tx,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		store:       newProposalStore(cfg.ProposalTTL),
		cfg:         cfg,
	}
	s.queue = jobs.NewQueue("schedule-generation", s.handleGenerationJob, jobs.QueueConfig{
		Workers: cfg.WorkerConcurrency,
		Logger:  logger,
	})
	return s
}

// StartWorkers launches the background generation queue.
func (s *ScheduleGeneratorService) StartWorkers(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopWorkers drains the background generation queue.
func (s *ScheduleGeneratorService) StopWorkers() {
	s.queue.Stop()
}

// Generate runs the full pipeline synchronously and stores the proposal.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}

	started := time.Now()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school settings")
	}

	assignments, err := s.assignments.ListByTerm(ctx, req.TermID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson assignments")
	}
	if len(assignments) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no lesson assignments defined for this term")
	}

	snapInput, err := s.loadSnapshotInput(ctx, req.TermID, settings.SchoolType, assignments)
	if err != nil {
		return nil, err
	}
	snap := scheduler.BuildSnapshot(*snapInput, s.logger)
	if len(snap.Requirements) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no schedulable requirements for this term")
	}

	opts := scheduler.Options{
		MaxAttemptsPerRequirement: s.cfg.MaxAttempts,
		MinEducationalScore:       s.cfg.MinEducationalScore,
		AllowDegradedFill:         s.cfg.AllowDegradedFill,
	}
	if req.MaxAttempts > 0 {
		opts.MaxAttemptsPerRequirement = req.MaxAttempts
	}
	if req.AllowDegradedFill != nil {
		opts.AllowDegradedFill = *req.AllowDegradedFill
	}

	result := scheduler.New(snap, opts, s.logger).Run(ctx)
	score := scoreResult(result)

	proposal := scheduleProposal{
		ProposalID:  uuid.NewString(),
		TermID:      req.TermID,
		Score:       score,
		Result:      result,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	elapsed := time.Since(started)
	unmetHours := 0
	for _, unmet := range result.UnmetRequirements {
		unmetHours += unmet.RequiredHours - unmet.ScheduledHours
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(elapsed, len(result.Entries), unmetHours)
	}
	s.logger.Info("schedule generated",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("term_id", req.TermID),
		zap.Float64("score", score),
		zap.Int("entries", len(result.Entries)),
		zap.Int("unmet_hours", unmetHours),
		zap.Duration("elapsed", elapsed))

	return proposalToResponse(proposal), nil
}

// GenerateAsync queues a generation run and returns the job handle. The
// finished proposal is retrievable via GetProposal using the job id.
func (s *ScheduleGeneratorService) GenerateAsync(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleAsyncResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}

	jobID := uuid.NewString()
	s.store.Save(scheduleProposal{
		ProposalID:  jobID,
		TermID:      req.TermID,
		Status:      proposalStatusPending,
		RequestedAt: time.Now().UTC(),
	})

	err := s.queue.Enqueue(jobs.Job{
		ID:      jobID,
		Type:    "generate_schedule",
		Payload: req,
	})
	if err != nil {
		s.store.Delete(jobID)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue generation job")
	}

	return &dto.GenerateScheduleAsyncResponse{
		JobID:  jobID,
		TermID: req.TermID,
		Status: string(proposalStatusPending),
	}, nil
}

func (s *ScheduleGeneratorService) handleGenerationJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateScheduleRequest)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
	}

	resp, err := s.Generate(ctx, req)
	if err != nil {
		s.store.Save(scheduleProposal{
			ProposalID:  job.ID,
			TermID:      req.TermID,
			Status:      proposalStatusFailed,
			FailReason:  err.Error(),
			RequestedAt: time.Now().UTC(),
		})
		return err
	}

	// re-home the finished proposal under the job id so clients poll one handle
	proposal, ok := s.store.Get(resp.ProposalID)
	if !ok {
		return fmt.Errorf("generated proposal %s expired before adoption", resp.ProposalID)
	}
	s.store.Delete(resp.ProposalID)
	proposal.ProposalID = job.ID
	proposal.Status = proposalStatusReady
	s.store.Save(proposal)
	return nil
}

// GetProposal returns a stored proposal by id.
func (s *ScheduleGeneratorService) GetProposal(ctx context.Context, proposalID string) (*dto.GenerateScheduleResponse, error) {
	proposal, ok := s.store.Get(proposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	switch proposal.Status {
	case proposalStatusPending:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "proposal generation still in progress")
	case proposalStatusFailed:
		return nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("proposal generation failed: %s", proposal.FailReason))
	}
	return proposalToResponse(proposal), nil
}

// Save persists a proposal as the term's schedule, replacing prior entries.
func (s *ScheduleGeneratorService) Save(ctx context.Context, req dto.SaveScheduleRequest) (*dto.SaveScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save schedule payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if proposal.Status != proposalStatusReady && proposal.Status != "" {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "proposal is not ready to save")
	}
	if unresolved := unresolvedConflicts(proposal.Result); unresolved > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("proposal contains %d unresolved conflicts", unresolved))
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows := make([]models.ScheduleEntry, 0, len(proposal.Result.Entries))
	for _, entry := range proposal.Result.Entries {
		rows = append(rows, models.ScheduleEntry{
			TermID:      proposal.TermID,
			ClassID:     string(entry.Class),
			TeacherID:   string(entry.Teacher),
			LessonID:    string(entry.Lesson),
			ClassroomID: string(entry.Classroom),
			Day:         int(entry.Day),
			TimeSlot:    int(entry.Slot),
		})
	}

	if err = s.entries.ReplaceForTermWithTx(ctx, tx, proposal.TermID, rows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule entries")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule transaction")
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.DeleteByPattern(ctx, "timetable:*"); cacheErr != nil {
			s.logger.Warn("failed to invalidate timetable cache", zap.Error(cacheErr))
		}
	}

	s.store.Delete(req.ProposalID)
	s.logger.Info("schedule saved",
		zap.String("term_id", proposal.TermID),
		zap.Int("entries", len(rows)))

	return &dto.SaveScheduleResponse{TermID: proposal.TermID, SavedEntries: len(rows)}, nil
}

func (s *ScheduleGeneratorService) loadSnapshotInput(ctx context.Context, termID string, schoolType models.SchoolType, assignments []models.LessonAssignment) (*scheduler.SnapshotInput, error) {
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	unavailability, err := s.teachers.ListUnavailability(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher unavailability")
	}
	classes, err := s.classes.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	lessons, err := s.lessons.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}
	classrooms, err := s.lessons.ListClassrooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classrooms")
	}
	curriculum, err := s.curriculum.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load curriculum requirements")
	}

	return &scheduler.SnapshotInput{
		TermID:         termID,
		SchoolType:     schoolType,
		Classes:        classes,
		Teachers:       teachers,
		Lessons:        lessons,
		Classrooms:     classrooms,
		Curriculum:     curriculum,
		Assignments:    assignments,
		Unavailability: unavailability,
	}, nil
}

// scoreResult condenses a run into one penalty-based quality number on 0..100.
func scoreResult(result *scheduler.Result) float64 {
	unmetHours := 0
	for _, unmet := range result.UnmetRequirements {
		unmetHours += unmet.RequiredHours - unmet.ScheduledHours
	}
	penalty := float64(unmetHours)*5 +
		float64(unresolvedConflicts(result))*10 +
		float64(len(result.WorkloadShortfalls))*3 +
		float64(result.Stats.DegradedRelocations)*2 +
		float64(result.Stats.FlexibleFallbacks)*0.5
	return math.Max(0, 100-penalty)
}

func unresolvedConflicts(result *scheduler.Result) int {
	if result == nil {
		return 0
	}
	count := 0
	for _, conflict := range result.UnresolvedConflicts {
		if !conflict.Resolved {
			count++
		}
	}
	return count
}

func proposalToResponse(proposal scheduleProposal) *dto.GenerateScheduleResponse {
	result := proposal.Result

	entries := make([]dto.ScheduleEntryProposal, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, dto.ScheduleEntryProposal{
			ClassID:     string(entry.Class),
			TeacherID:   string(entry.Teacher),
			LessonID:    string(entry.Lesson),
			ClassroomID: string(entry.Classroom),
			Day:         int(entry.Day),
			TimeSlot:    int(entry.Slot),
		})
	}

	unmet := make([]dto.UnmetRequirementInfo, 0, len(result.UnmetRequirements))
	unmetHours := 0
	for _, item := range result.UnmetRequirements {
		unmetHours += item.RequiredHours - item.ScheduledHours
		unmet = append(unmet, dto.UnmetRequirementInfo{
			ClassID:        string(item.Class),
			LessonID:       string(item.Lesson),
			TeacherID:      string(item.Teacher),
			RequiredHours:  item.RequiredHours,
			ScheduledHours: item.ScheduledHours,
		})
	}

	conflicts := make([]dto.ConflictInfo, 0, len(result.UnresolvedConflicts))
	resolved := 0
	for _, conflict := range result.UnresolvedConflicts {
		if conflict.Resolved {
			resolved++
		}
		conflicts = append(conflicts, dto.ConflictInfo{
			Dimension: string(conflict.Dimension),
			TeacherID: string(conflict.Teacher),
			ClassID:   string(conflict.Class),
			Day:       int(conflict.Day),
			TimeSlot:  int(conflict.Slot),
			Resolved:  conflict.Resolved,
		})
	}

	gapPlacements := 0
	for _, attempt := range result.Attempts {
		if attempt.Strategy == "gap-tolerant" && attempt.Outcome == scheduler.AttemptPlaced {
			gapPlacements++
		}
	}

	shortfalls := make([]dto.WorkloadShortfallInfo, 0, len(result.WorkloadShortfalls))
	for _, shortfall := range result.WorkloadShortfalls {
		shortfalls = append(shortfalls, dto.WorkloadShortfallInfo{
			TeacherID:   string(shortfall.Teacher),
			WorkingDays: shortfall.WorkingDays,
			TargetDays:  shortfall.WorkingDays + len(shortfall.EmptyDays),
		})
	}

	return &dto.GenerateScheduleResponse{
		ProposalID: proposal.ProposalID,
		TermID:     proposal.TermID,
		Score:      proposal.Score,
		Entries:    entries,
		Unmet:      unmet,
		Conflicts:  conflicts,
		Shortfalls: shortfalls,
		Stats: dto.GenerationStats{
			PlacedHours:         len(result.Entries),
			UnmetHours:          unmetHours,
			Backtracks:          result.Stats.Backtracks,
			AlternativesUsed:    result.Stats.FlexibleFallbacks,
			GapPlacements:       gapPlacements,
			DegradedRelocations: result.Stats.DegradedRelocations,
			ResolvedConflicts:   resolved,
		},
	}
}

type proposalStatus string

const (
	proposalStatusPending proposalStatus = "PENDING"
	proposalStatusReady   proposalStatus = "READY"
	proposalStatusFailed  proposalStatus = "FAILED"
)

type scheduleProposal struct {
	ProposalID  string
	TermID      string
	Score       float64
	Status      proposalStatus
	FailReason  string
	Result      *scheduler.Result
	RequestedAt time.Time
}

type proposalStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]scheduleProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]scheduleProposal),
	}
}

func (s *proposalStore) Save(proposal scheduleProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (scheduleProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return scheduleProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return scheduleProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}
