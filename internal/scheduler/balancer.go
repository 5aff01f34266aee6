package scheduler

import (
	"sort"

	"go.uber.org/zap"
)

// minWorkingDays is the workload-balance rule: at most one fully empty
// weekday per teacher.
const minWorkingDays = 4

// balanceWorkloads runs after placement and conflict resolution. For every
// teacher under the working-day floor it tries, in order: moving a placed
// single-hour lesson into an empty day, splitting a 2-hour block and moving
// its second hour, and (when degraded fill is enabled) moving any lesson
// regardless of availability and block rules. Teachers it cannot lift to the
// floor are reported as shortfalls.
func (e *Engine) balanceWorkloads() []WorkloadShortfall {
	teachers := e.snap.TeacherIDs()
	sort.Slice(teachers, func(i, j int) bool { return teachers[i] < teachers[j] })

	var shortfalls []WorkloadShortfall
	for _, teacher := range teachers {
		if len(e.teacherEntryIndices(teacher)) == 0 {
			// nothing scheduled at all; not this pass's concern
			continue
		}
		e.balanceTeacher(teacher)

		if days := e.tracker.TeacherWorkingDays(teacher); days < minWorkingDays {
			shortfall := WorkloadShortfall{
				Teacher:     teacher,
				WorkingDays: days,
				EmptyDays:   e.emptyDays(teacher),
			}
			shortfalls = append(shortfalls, shortfall)
			e.logger.Warn("teacher below working-day floor",
				zap.String("teacher_id", string(teacher)),
				zap.Int("working_days", days))
		}
	}
	return shortfalls
}

func (e *Engine) balanceTeacher(teacher TeacherID) {
	for e.tracker.TeacherWorkingDays(teacher) < minWorkingDays {
		empty := e.emptyDays(teacher)
		if len(empty) == 0 {
			return
		}

		moved := false
		for _, target := range empty {
			if e.moveSingleHourInto(teacher, target) || e.splitBlockInto(teacher, target) {
				moved = true
				break
			}
		}
		if !moved && e.opts.AllowDegradedFill {
			for _, target := range empty {
				if e.degradedMoveInto(teacher, target) {
					moved = true
					break
				}
			}
		}
		if !moved {
			return
		}
	}
}

func (e *Engine) emptyDays(teacher TeacherID) []Day {
	var empty []Day
	for day := Day(0); day < DaysPerWeek; day++ {
		if !e.tracker.TeacherWorksOn(teacher, day) {
			empty = append(empty, day)
		}
	}
	return empty
}

func (e *Engine) teacherEntryIndices(teacher TeacherID) []int {
	var indices []int
	for i, entry := range e.entries {
		if entry.Teacher == teacher {
			indices = append(indices, i)
		}
	}
	return indices
}

// lessonRun groups a teacher's entries for one (class, lesson, day).
type lessonRun struct {
	class   ClassID
	lesson  LessonID
	day     Day
	indices []int
}

// teacherRuns returns the teacher's runs sorted by (class, lesson, day) so
// relocation candidates are scanned in a stable order.
func (e *Engine) teacherRuns(teacher TeacherID) []lessonRun {
	type runKey struct {
		class  ClassID
		lesson LessonID
		day    Day
	}
	byKey := make(map[runKey]*lessonRun)
	for _, idx := range e.teacherEntryIndices(teacher) {
		entry := e.entries[idx]
		key := runKey{class: entry.Class, lesson: entry.Lesson, day: entry.Day}
		run := byKey[key]
		if run == nil {
			run = &lessonRun{class: entry.Class, lesson: entry.Lesson, day: entry.Day}
			byKey[key] = run
		}
		run.indices = append(run.indices, idx)
	}

	runs := make([]lessonRun, 0, len(byKey))
	for _, run := range byKey {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].class != runs[j].class {
			return runs[i].class < runs[j].class
		}
		if runs[i].lesson != runs[j].lesson {
			return runs[i].lesson < runs[j].lesson
		}
		return runs[i].day < runs[j].day
	})
	return runs
}

func lessonHeldOn(runs []lessonRun, class ClassID, lesson LessonID, day Day) bool {
	for _, run := range runs {
		if run.class == class && run.lesson == lesson && run.day == day {
			return true
		}
	}
	return false
}

// moveSingleHourInto relocates one of the teacher's single-hour lessons into
// the empty day. Only source days carrying at least two teacher hours are
// considered, otherwise the move would just trade one empty day for another.
func (e *Engine) moveSingleHourInto(teacher TeacherID, target Day) bool {
	runs := e.teacherRuns(teacher)
	for _, run := range runs {
		if len(run.indices) != 1 {
			continue
		}
		if e.tracker.TeacherDayLoad(teacher, run.day) < 2 {
			continue
		}
		// keep day exclusivity: the class must not already hold this lesson
		// on the target day
		if lessonHeldOn(runs, run.class, run.lesson, target) {
			continue
		}
		if e.relocateToDay(run.indices[0], target, false) {
			return true
		}
	}
	return false
}

// splitBlockInto takes the second hour of one of the teacher's 2-hour blocks
// and moves it into the empty day.
func (e *Engine) splitBlockInto(teacher TeacherID, target Day) bool {
	runs := e.teacherRuns(teacher)
	for _, run := range runs {
		if len(run.indices) != 2 {
			continue
		}
		if e.tracker.TeacherDayLoad(teacher, run.day) < 2 {
			continue
		}
		if lessonHeldOn(runs, run.class, run.lesson, target) {
			continue
		}
		later := run.indices[0]
		if e.entries[run.indices[1]].Slot > e.entries[later].Slot {
			later = run.indices[1]
		}
		if e.relocateToDay(later, target, false) {
			return true
		}
	}
	return false
}

// degradedMoveInto is the explicitly degraded last resort: any lesson of the
// teacher may move into the empty day, relaxing availability and the
// same-day block rule. Slot freedom is still hard; a double-booking is never
// introduced.
func (e *Engine) degradedMoveInto(teacher TeacherID, target Day) bool {
	for _, idx := range e.teacherEntryIndices(teacher) {
		if e.tracker.TeacherDayLoad(teacher, e.entries[idx].Day) < 2 {
			continue
		}
		if e.relocateToDay(idx, target, true) {
			e.stats.DegradedRelocations++
			return true
		}
	}
	return false
}

// relocateToDay finds the first slot on the target day free for both parties
// and moves the entry there, revalidating through the tracker before
// committing. Tracker and entry fields update together via moveEntry.
func (e *Engine) relocateToDay(idx int, target Day, degraded bool) bool {
	entry := e.entries[idx]
	for s := 0; s < e.grid.SlotsPerDay; s++ {
		slot := Slot(s)
		if !e.tracker.IsFree(entry.Class, entry.Teacher, target, slot) {
			continue
		}
		if !degraded && !e.snap.TeacherAvailable(entry.Teacher, target, slot) {
			continue
		}
		max := e.snap.MaxDailyHours(entry.Teacher)
		if max > 0 && e.tracker.TeacherDayLoad(entry.Teacher, target) >= max {
			return false
		}
		e.moveEntry(idx, target, slot)
		return true
	}
	return false
}
