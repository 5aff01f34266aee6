package scheduler

import (
	"sort"

	"go.uber.org/zap"
)

type conflictGroup struct {
	dimension ConflictDimension
	teacher   TeacherID
	class     ClassID
	day       Day
	slot      Slot
	indices   []int
}

// detectConflicts scans the entry list for double-booked cells on either
// dimension. Running it on a conflict-free schedule reports nothing, so
// re-detection after resolution is a cheap invariant check.
func (e *Engine) detectConflicts() []conflictGroup {
	byTeacher := make(map[gridKey]map[TeacherID][]int)
	byClass := make(map[gridKey]map[ClassID][]int)

	for i, entry := range e.entries {
		key := gridKey{Day: entry.Day, Slot: entry.Slot}
		if byTeacher[key] == nil {
			byTeacher[key] = make(map[TeacherID][]int)
		}
		byTeacher[key][entry.Teacher] = append(byTeacher[key][entry.Teacher], i)
		if byClass[key] == nil {
			byClass[key] = make(map[ClassID][]int)
		}
		byClass[key][entry.Class] = append(byClass[key][entry.Class], i)
	}

	var groups []conflictGroup
	for key, teachers := range byTeacher {
		for teacher, indices := range teachers {
			if len(indices) > 1 {
				groups = append(groups, conflictGroup{
					dimension: ConflictTeacher, teacher: teacher,
					day: key.Day, slot: key.Slot, indices: indices,
				})
			}
		}
	}
	for key, classes := range byClass {
		for class, indices := range classes {
			if len(indices) > 1 {
				groups = append(groups, conflictGroup{
					dimension: ConflictClass, class: class,
					day: key.Day, slot: key.Slot, indices: indices,
				})
			}
		}
	}

	// teacher conflicts first, then deterministic cell order; the party id
	// breaks ties between distinct groups on the same cell
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].dimension != groups[j].dimension {
			return groups[i].dimension == ConflictTeacher
		}
		if groups[i].day != groups[j].day {
			return groups[i].day < groups[j].day
		}
		if groups[i].slot != groups[j].slot {
			return groups[i].slot < groups[j].slot
		}
		if groups[i].teacher != groups[j].teacher {
			return groups[i].teacher < groups[j].teacher
		}
		return groups[i].class < groups[j].class
	})
	return groups
}

// resolveConflicts is the defensive post-placement pass: for each
// double-booked cell it tries to relocate the later entry, then the earlier
// one. Conflicts neither entry can escape are reported, never silently
// dropped.
func (e *Engine) resolveConflicts() []Conflict {
	var unresolved []Conflict

	for _, group := range e.detectConflicts() {
		// the group may already be gone if an earlier relocation moved one
		// of its entries
		live := e.liveIndices(group)
		if len(live) < 2 {
			continue
		}

		resolved := false
		// relocate the later-placed entry first, then try the earlier one
		for i := len(live) - 1; i >= 0 && !resolved; i-- {
			resolved = e.relocateEntry(live[i])
		}
		if !resolved {
			conflict := Conflict{
				Dimension: group.dimension,
				Teacher:   group.teacher,
				Class:     group.class,
				Day:       group.day,
				Slot:      group.slot,
				Entries:   len(live),
				Resolved:  false,
			}
			unresolved = append(unresolved, conflict)
			e.logger.Warn("unresolved schedule conflict",
				zap.String("dimension", string(group.dimension)),
				zap.String("teacher_id", string(group.teacher)),
				zap.String("class_id", string(group.class)),
				zap.Int("day", int(group.day)),
				zap.Int("slot", int(group.slot)),
				zap.Int("entries", len(live)))
		}
	}
	return unresolved
}

// liveIndices re-checks which entries of the group still occupy its cell.
func (e *Engine) liveIndices(group conflictGroup) []int {
	var live []int
	for _, idx := range group.indices {
		entry := e.entries[idx]
		if entry.Day != group.day || entry.Slot != group.slot {
			continue
		}
		switch group.dimension {
		case ConflictTeacher:
			if entry.Teacher == group.teacher {
				live = append(live, idx)
			}
		case ConflictClass:
			if entry.Class == group.class {
				live = append(live, idx)
			}
		}
	}
	return live
}

// relocateEntry moves the entry to the first cell, in day/slot index order,
// that is free for both its class and its teacher. Tracker state for the
// vacated cell is recomputed from the remaining entries so a still-conflicted
// co-occupant keeps the cell marked.
func (e *Engine) relocateEntry(idx int) bool {
	entry := e.entries[idx]
	for day := Day(0); day < DaysPerWeek; day++ {
		for s := 0; s < e.grid.SlotsPerDay; s++ {
			slot := Slot(s)
			if day == entry.Day && slot == entry.Slot {
				continue
			}
			if !e.tracker.IsFree(entry.Class, entry.Teacher, day, slot) {
				continue
			}
			if !e.snap.TeacherAvailable(entry.Teacher, day, slot) {
				continue
			}
			e.moveEntry(idx, day, slot)
			return true
		}
	}
	return false
}

// moveEntry updates the entry's cell and the tracker atomically: occupy the
// target, then re-derive occupancy of the vacated cell from whatever entries
// still sit on it.
func (e *Engine) moveEntry(idx int, day Day, slot Slot) {
	old := e.entries[idx]
	e.entries[idx].Day = day
	e.entries[idx].Slot = slot
	e.tracker.Occupy(old.Class, old.Teacher, day, slot)

	e.tracker.Release(old.Class, old.Teacher, old.Day, old.Slot)
	for _, other := range e.entries {
		if other.Day != old.Day || other.Slot != old.Slot {
			continue
		}
		if other.Class == old.Class || other.Teacher == old.Teacher {
			e.tracker.Occupy(other.Class, other.Teacher, other.Day, other.Slot)
		}
	}
}
