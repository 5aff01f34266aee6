package scheduler

// Tracker is the single source of truth for conflict checks during placement:
// per-teacher and per-class sets of occupied (day, slot) cells. Every entry
// insert is paired with Occupy and every removal with Release in the same
// operation, so the two never diverge.
type Tracker struct {
	teachers map[TeacherID]map[gridKey]struct{}
	classes  map[ClassID]map[gridKey]struct{}
}

// NewTracker returns an empty occupancy tracker.
func NewTracker() *Tracker {
	return &Tracker{
		teachers: make(map[TeacherID]map[gridKey]struct{}),
		classes:  make(map[ClassID]map[gridKey]struct{}),
	}
}

// IsFree reports whether neither the class nor the teacher occupies the cell.
func (t *Tracker) IsFree(class ClassID, teacher TeacherID, day Day, slot Slot) bool {
	key := gridKey{Day: day, Slot: slot}
	if _, ok := t.classes[class][key]; ok {
		return false
	}
	if _, ok := t.teachers[teacher][key]; ok {
		return false
	}
	return true
}

// Occupy marks the cell taken for both parties. Idempotent.
func (t *Tracker) Occupy(class ClassID, teacher TeacherID, day Day, slot Slot) {
	key := gridKey{Day: day, Slot: slot}
	if t.classes[class] == nil {
		t.classes[class] = make(map[gridKey]struct{})
	}
	t.classes[class][key] = struct{}{}
	if t.teachers[teacher] == nil {
		t.teachers[teacher] = make(map[gridKey]struct{})
	}
	t.teachers[teacher][key] = struct{}{}
}

// Release frees the cell for both parties. Idempotent.
func (t *Tracker) Release(class ClassID, teacher TeacherID, day Day, slot Slot) {
	key := gridKey{Day: day, Slot: slot}
	delete(t.classes[class], key)
	delete(t.teachers[teacher], key)
}

// TeacherDayLoad counts the hours a teacher already works on the given day.
func (t *Tracker) TeacherDayLoad(teacher TeacherID, day Day) int {
	count := 0
	for key := range t.teachers[teacher] {
		if key.Day == day {
			count++
		}
	}
	return count
}

// TeacherWorksOn reports whether the teacher has at least one hour on the day.
func (t *Tracker) TeacherWorksOn(teacher TeacherID, day Day) bool {
	for key := range t.teachers[teacher] {
		if key.Day == day {
			return true
		}
	}
	return false
}

// TeacherWorkingDays counts distinct days the teacher has hours on.
func (t *Tracker) TeacherWorkingDays(teacher TeacherID) int {
	seen := make(map[Day]struct{}, DaysPerWeek)
	for key := range t.teachers[teacher] {
		seen[key.Day] = struct{}{}
	}
	return len(seen)
}
