package scheduler

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Options tunes one generation run.
type Options struct {
	// MaxAttemptsPerRequirement bounds candidate probes per requirement so a
	// run terminates even when a requirement is unsatisfiable.
	MaxAttemptsPerRequirement int
	// MinEducationalScore is the acceptance threshold for alternative block
	// configurations.
	MinEducationalScore float64
	// AllowDegradedFill enables the last-resort balancer relocation that
	// relaxes teacher availability and the block rules.
	AllowDegradedFill bool
}

// DefaultOptions mirror the configuration defaults.
func DefaultOptions() Options {
	return Options{
		MaxAttemptsPerRequirement: 2000,
		MinEducationalScore:       5.0,
	}
}

// Engine places every requirement of a snapshot onto the week grid via
// depth-first backtracking, falling back to alternative block configurations
// and looser strategies before giving a requirement up. One Engine serves one
// run; it is not safe for concurrent use.
type Engine struct {
	grid    Grid
	snap    *Snapshot
	tracker *Tracker
	entries []Entry
	opts    Options
	logger  *zap.Logger

	stats    Stats
	attempts []Attempt
	// reqSlots tracks, for the requirement currently being placed, the slots
	// it already holds per day. Used for day exclusivity and the gap rule.
	reqSlots map[Day][]slotRange
}

type slotRange struct {
	Start Slot
	Size  int
}

// New prepares an engine for one run over the snapshot.
func New(snap *Snapshot, opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxAttemptsPerRequirement <= 0 {
		opts.MaxAttemptsPerRequirement = DefaultOptions().MaxAttemptsPerRequirement
	}
	if opts.MinEducationalScore <= 0 {
		opts.MinEducationalScore = DefaultOptions().MinEducationalScore
	}
	return &Engine{
		grid:    snap.Grid,
		snap:    snap,
		tracker: NewTracker(),
		opts:    opts,
		logger:  logger,
	}
}

// Run executes the full pipeline: placement, defensive conflict resolution,
// workload balancing. It always returns a Result; a requirement that cannot
// be satisfied is reported, never fatal.
func (e *Engine) Run(ctx context.Context) *Result {
	requirements := make([]Requirement, len(e.snap.Requirements))
	copy(requirements, e.snap.Requirements)
	sort.SliceStable(requirements, func(i, j int) bool {
		if requirements[i].WeeklyHours != requirements[j].WeeklyHours {
			return requirements[i].WeeklyHours > requirements[j].WeeklyHours
		}
		if requirements[i].Class != requirements[j].Class {
			return requirements[i].Class < requirements[j].Class
		}
		return requirements[i].Lesson < requirements[j].Lesson
	})

	result := &Result{}
	e.stats.Requirements = len(requirements)

	for idx, req := range requirements {
		if err := ctx.Err(); err != nil {
			// cancelled between requirements: everything not yet placed is unmet
			for _, rest := range requirements[idx:] {
				result.UnmetRequirements = append(result.UnmetRequirements, UnmetRequirement{
					Class: rest.Class, Lesson: rest.Lesson, Teacher: rest.Teacher,
					ScheduledHours: 0, RequiredHours: rest.WeeklyHours,
				})
			}
			break
		}

		scheduled, full := e.placeRequirement(req)
		if !full {
			result.UnmetRequirements = append(result.UnmetRequirements, UnmetRequirement{
				Class: req.Class, Lesson: req.Lesson, Teacher: req.Teacher,
				ScheduledHours: scheduled, RequiredHours: req.WeeklyHours,
			})
			e.logger.Warn("requirement not fully placed",
				zap.String("class_id", string(req.Class)),
				zap.String("lesson_id", string(req.Lesson)),
				zap.Int("scheduled", scheduled),
				zap.Int("required", req.WeeklyHours))
		}
	}

	result.UnresolvedConflicts = e.resolveConflicts()
	result.WorkloadShortfalls = e.balanceWorkloads()

	result.Entries = make([]Entry, len(e.entries))
	copy(result.Entries, e.entries)
	sortEntries(result.Entries)
	result.Attempts = e.attempts
	result.Stats = e.stats
	return result
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Class != entries[j].Class {
			return entries[i].Class < entries[j].Class
		}
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return entries[i].Slot < entries[j].Slot
	})
}

// --- Backtracking placement ---

type placementStrategy int

const (
	strategyStandard placementStrategy = iota
	// strategyWorkload orders candidate days so days the teacher does not yet
	// work are tried first.
	strategyWorkload
	// strategyGap relaxes day exclusivity: a second block may land on a day
	// the requirement already uses, separated by a gap of one or two slots.
	strategyGap
)

func (s placementStrategy) String() string {
	switch s {
	case strategyWorkload:
		return "workload-aware"
	case strategyGap:
		return "gap-tolerant"
	default:
		return "standard"
	}
}

// budgetExhausted aborts a requirement once its probe budget runs out.
type budgetCounter struct {
	used  int
	limit int
}

func (b *budgetCounter) spend() bool {
	b.used++
	return b.used <= b.limit
}

// placementFrame is one level of the explicit backtracking stack: the block
// being placed, the candidate iterator position, and enough state to undo the
// frame's placement exactly.
type placementFrame struct {
	block      int
	dayIdx     int
	start      int
	placed     bool
	day        Day
	slot       Slot
	entryStart int
}

// placeBlocks attempts to place every block size of the configuration for the
// requirement. Blocks are tried largest first; days in increasing index order
// (strategy permitting); start slots left to right. Returns whether the whole
// configuration was placed and whether the probe budget survived.
func (e *Engine) placeBlocks(req Requirement, sizes []int, strat placementStrategy, budget *budgetCounter) (placed bool, budgetOK bool, probes int) {
	ordered := make([]int, len(sizes))
	copy(ordered, sizes)
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))

	dayOrder := e.dayOrder(req.Teacher, strat)
	e.reqSlots = make(map[Day][]slotRange, DaysPerWeek)

	stack := make([]placementFrame, 1, len(ordered))
	stack[0] = placementFrame{block: 0}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]

		if f.placed {
			// a deeper block failed; undo this frame and advance its iterator
			e.unplaceBlock(req, f.day, f.slot, ordered[f.block], f.entryStart)
			f.placed = false
			f.start++
			e.stats.Backtracks++
		}

		day, slot, ok, inBudget := e.nextCandidate(req, ordered[f.block], f, dayOrder, strat, budget, &probes)
		if !inBudget {
			// unwind everything placed for this configuration
			for len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.placed {
					e.unplaceBlock(req, top.day, top.slot, ordered[top.block], top.entryStart)
				}
				stack = stack[:len(stack)-1]
			}
			return false, false, probes
		}
		if !ok {
			stack = stack[:len(stack)-1]
			continue
		}

		f.day, f.slot, f.entryStart = day, slot, len(e.entries)
		e.placeBlock(req, day, slot, ordered[f.block])
		f.placed = true
		e.stats.PlacedBlocks++

		if f.block == len(ordered)-1 {
			return true, true, probes
		}
		stack = append(stack, placementFrame{block: f.block + 1})
	}
	return false, true, probes
}

// nextCandidate advances the frame's iterator to the next (day, start slot)
// where the block fits, or reports exhaustion.
func (e *Engine) nextCandidate(req Requirement, size int, f *placementFrame, dayOrder []Day, strat placementStrategy, budget *budgetCounter, probes *int) (Day, Slot, bool, bool) {
	for ; f.dayIdx < len(dayOrder); f.dayIdx++ {
		day := dayOrder[f.dayIdx]
		if !e.dayUsable(req, day, strat) {
			f.start = 0
			continue
		}
		for ; f.start <= e.grid.SlotsPerDay-size; f.start++ {
			*probes++
			e.stats.TotalProbes++
			if !budget.spend() {
				return 0, 0, false, false
			}
			start := Slot(f.start)
			if e.canPlaceBlock(req, day, start, size, strat) {
				return day, start, true, true
			}
		}
		f.start = 0
	}
	return 0, 0, false, true
}

func (e *Engine) dayOrder(teacher TeacherID, strat placementStrategy) []Day {
	order := make([]Day, 0, DaysPerWeek)
	for d := Day(0); d < DaysPerWeek; d++ {
		order = append(order, d)
	}
	if strat == strategyWorkload {
		sort.SliceStable(order, func(i, j int) bool {
			wi := e.tracker.TeacherWorksOn(teacher, order[i])
			wj := e.tracker.TeacherWorksOn(teacher, order[j])
			if wi != wj {
				return !wi
			}
			return order[i] < order[j]
		})
	}
	return order
}

// dayUsable enforces day exclusivity: one block per requirement per day,
// except under the gap strategy where a second block is admitted.
func (e *Engine) dayUsable(req Requirement, day Day, strat placementStrategy) bool {
	if len(e.reqSlots[day]) == 0 {
		return true
	}
	return strat == strategyGap
}

func (e *Engine) canPlaceBlock(req Requirement, day Day, start Slot, size int, strat placementStrategy) bool {
	end := int(start) + size
	if end > e.grid.SlotsPerDay {
		return false
	}
	max := e.snap.MaxDailyHours(req.Teacher)
	if max > 0 && e.tracker.TeacherDayLoad(req.Teacher, day)+size > max {
		return false
	}
	for s := int(start); s < end; s++ {
		slot := Slot(s)
		if !e.tracker.IsFree(req.Class, req.Teacher, day, slot) {
			return false
		}
		if !e.snap.TeacherAvailable(req.Teacher, day, slot) {
			return false
		}
	}
	if strat == strategyGap {
		for _, existing := range e.reqSlots[day] {
			if !gapAcceptable(existing, slotRange{Start: start, Size: size}) {
				return false
			}
		}
	}
	return true
}

// gapAcceptable admits a second same-day block only when one or two free
// slots separate it from the existing block; adjacency would silently merge
// the blocks and overlap is already excluded by the tracker.
func gapAcceptable(a, b slotRange) bool {
	aEnd := int(a.Start) + a.Size
	bEnd := int(b.Start) + b.Size
	var gap int
	switch {
	case int(b.Start) >= aEnd:
		gap = int(b.Start) - aEnd
	case int(a.Start) >= bEnd:
		gap = int(a.Start) - bEnd
	default:
		return false
	}
	return gap >= 1 && gap <= 2
}

// placeBlock creates one entry per hour of the block, each paired with a
// tracker Occupy in the same operation.
func (e *Engine) placeBlock(req Requirement, day Day, start Slot, size int) {
	for s := 0; s < size; s++ {
		slot := start + Slot(s)
		e.entries = append(e.entries, Entry{
			Class:     req.Class,
			Teacher:   req.Teacher,
			Lesson:    req.Lesson,
			Classroom: e.snap.DefaultClassroom,
			Day:       day,
			Slot:      slot,
		})
		e.tracker.Occupy(req.Class, req.Teacher, day, slot)
	}
	e.reqSlots[day] = append(e.reqSlots[day], slotRange{Start: start, Size: size})
}

// unplaceBlock is the exact inverse of placeBlock. Frames undo in LIFO order,
// so the block's entries are the tail of the entry list.
func (e *Engine) unplaceBlock(req Requirement, day Day, start Slot, size int, entryStart int) {
	for s := 0; s < size; s++ {
		e.tracker.Release(req.Class, req.Teacher, day, start+Slot(s))
	}
	e.entries = e.entries[:entryStart]
	ranges := e.reqSlots[day]
	for i, r := range ranges {
		if r.Start == start && r.Size == size {
			e.reqSlots[day] = append(ranges[:i], ranges[i+1:]...)
			break
		}
	}
}
