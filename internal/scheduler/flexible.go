package scheduler

import "go.uber.org/zap"

// placeRequirement drives the fallback ladder for one requirement:
//
//  1. the standard decomposition,
//  2. ranked alternative configurations that pass validation,
//  3. the workload-aware and gap-tolerant strategies over every accepted
//     configuration, in that priority order,
//  4. a greedy single-hour pass that keeps whatever it can place.
//
// Returns the hours scheduled and whether the requirement was fully met.
// Every attempt is recorded for diagnostics.
func (e *Engine) placeRequirement(req Requirement) (int, bool) {
	budget := &budgetCounter{limit: e.opts.MaxAttemptsPerRequirement}

	standard := StandardConfiguration(req.WeeklyHours)
	if len(standard.Blocks) == 0 {
		return 0, true
	}

	placed, budgetOK := e.tryConfiguration(req, standard, strategyStandard, budget)
	if placed {
		return req.WeeklyHours, true
	}
	if !budgetOK {
		return 0, false
	}

	e.stats.FlexibleFallbacks++
	accepted := e.acceptedAlternatives(req)

	for _, alt := range accepted {
		placed, budgetOK = e.tryConfiguration(req, alt, strategyStandard, budget)
		if placed {
			return req.WeeklyHours, true
		}
		if !budgetOK {
			return 0, false
		}
	}

	ladder := append([]BlockConfiguration{standard}, accepted...)
	for _, strat := range []placementStrategy{strategyWorkload, strategyGap} {
		for _, cfg := range ladder {
			placed, budgetOK = e.tryConfiguration(req, cfg, strat, budget)
			if placed {
				return req.WeeklyHours, true
			}
			if !budgetOK {
				return 0, false
			}
		}
	}

	scheduled := e.placeGreedySingles(req, budget)
	return scheduled, scheduled == req.WeeklyHours
}

// acceptedAlternatives filters the ranked table through validation, logging
// each rejection in the diagnostics.
func (e *Engine) acceptedAlternatives(req Requirement) []BlockConfiguration {
	alternatives := alternativeConfigurations[req.WeeklyHours]
	accepted := make([]BlockConfiguration, 0, len(alternatives))
	for _, alt := range alternatives {
		if err := ValidateConfiguration(alt, e.opts.MinEducationalScore); err != nil {
			reason := err.Error()
			if rejection, ok := err.(*ConfigurationRejection); ok {
				reason = rejection.Reason
			}
			e.attempts = append(e.attempts, Attempt{
				Class: req.Class, Lesson: req.Lesson,
				Config: alt.Name, Strategy: strategyStandard.String(),
				Outcome: AttemptRejected, Reason: reason,
			})
			continue
		}
		accepted = append(accepted, alt)
	}
	return accepted
}

// tryConfiguration runs one backtracking attempt and logs its outcome.
func (e *Engine) tryConfiguration(req Requirement, cfg BlockConfiguration, strat placementStrategy, budget *budgetCounter) (placed bool, budgetOK bool) {
	var probes int
	placed, budgetOK, probes = e.placeBlocks(req, cfg.Blocks, strat, budget)

	attempt := Attempt{
		Class: req.Class, Lesson: req.Lesson,
		Config: cfg.Name, Strategy: strat.String(), Probes: probes,
	}
	switch {
	case placed:
		attempt.Outcome = AttemptPlaced
	case !budgetOK:
		attempt.Outcome = AttemptBudget
		attempt.Reason = "attempt budget exhausted"
	default:
		attempt.Outcome = AttemptFailed
		attempt.Reason = "no conflict-free placement found"
	}
	e.attempts = append(e.attempts, attempt)

	if !budgetOK {
		e.logger.Warn("placement budget exhausted",
			zap.String("class_id", string(req.Class)),
			zap.String("lesson_id", string(req.Lesson)),
			zap.String("config", cfg.Name),
			zap.Int("budget", budget.limit))
	}
	return placed, budgetOK
}

// placeGreedySingles is the terminal fallback: place single hours wherever
// class, teacher and availability admit them, keeping partial progress. A day
// is reused only when the new hour extends the requirement's existing run, so
// same-day hours stay contiguous.
func (e *Engine) placeGreedySingles(req Requirement, budget *budgetCounter) int {
	ownSlots := make(map[Day][]Slot, DaysPerWeek)
	placed := 0

	for hour := 0; hour < req.WeeklyHours; hour++ {
		day, slot, ok := e.nextGreedySlot(req, ownSlots, budget)
		if !ok {
			break
		}
		e.entries = append(e.entries, Entry{
			Class:     req.Class,
			Teacher:   req.Teacher,
			Lesson:    req.Lesson,
			Classroom: e.snap.DefaultClassroom,
			Day:       day,
			Slot:      slot,
		})
		e.tracker.Occupy(req.Class, req.Teacher, day, slot)
		ownSlots[day] = append(ownSlots[day], slot)
		placed++
	}

	outcome := AttemptFailed
	reason := "partial placement"
	if placed == req.WeeklyHours {
		outcome = AttemptPlaced
		reason = ""
	}
	e.attempts = append(e.attempts, Attempt{
		Class: req.Class, Lesson: req.Lesson,
		Config: "greedy-singles", Strategy: "greedy",
		Probes: placed, Outcome: outcome, Reason: reason,
	})
	return placed
}

func (e *Engine) nextGreedySlot(req Requirement, ownSlots map[Day][]Slot, budget *budgetCounter) (Day, Slot, bool) {
	max := e.snap.MaxDailyHours(req.Teacher)

	// fresh days first, then extending an existing same-day run
	for _, extend := range []bool{false, true} {
		for day := Day(0); day < DaysPerWeek; day++ {
			if (len(ownSlots[day]) > 0) != extend {
				continue
			}
			if max > 0 && e.tracker.TeacherDayLoad(req.Teacher, day) >= max {
				continue
			}
			for s := 0; s < e.grid.SlotsPerDay; s++ {
				if !budget.spend() {
					return 0, 0, false
				}
				slot := Slot(s)
				if extend && !adjacentToRun(ownSlots[day], slot) {
					continue
				}
				if !e.tracker.IsFree(req.Class, req.Teacher, day, slot) {
					continue
				}
				if !e.snap.TeacherAvailable(req.Teacher, day, slot) {
					continue
				}
				return day, slot, true
			}
		}
	}
	return 0, 0, false
}

func adjacentToRun(slots []Slot, candidate Slot) bool {
	for _, s := range slots {
		if candidate == s+1 || candidate+1 == s {
			return true
		}
	}
	return false
}
