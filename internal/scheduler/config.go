package scheduler

// BlockConfiguration is a named way of splitting a weekly-hour count into
// block sizes. EducationalScore ranks how pedagogically preferable the split
// is (larger, fewer blocks score higher); PlacementDifficulty estimates the
// relative search cost of fitting it.
type BlockConfiguration struct {
	Name                string
	Blocks              []int
	EducationalScore    float64
	PlacementDifficulty int
}

// Total returns the hour sum of the configuration.
func (c BlockConfiguration) Total() int {
	total := 0
	for _, size := range c.Blocks {
		total += size
	}
	return total
}

func (c BlockConfiguration) singleHourBlocks() int {
	count := 0
	for _, size := range c.Blocks {
		if size == 1 {
			count++
		}
	}
	return count
}

// alternativeConfigurations lists, per weekly-hour count, every known
// alternative to the standard decomposition in decreasing educational score.
// The standard pattern itself comes from Decompose and is always tried first.
var alternativeConfigurations = map[int][]BlockConfiguration{
	2: {
		{Name: "2h-1+1", Blocks: []int{1, 1}, EducationalScore: 6.0, PlacementDifficulty: 2},
	},
	3: {
		{Name: "3h-3", Blocks: []int{3}, EducationalScore: 8.5, PlacementDifficulty: 3},
		{Name: "3h-1+1+1", Blocks: []int{1, 1, 1}, EducationalScore: 4.0, PlacementDifficulty: 3},
	},
	4: {
		{Name: "4h-3+1", Blocks: []int{3, 1}, EducationalScore: 8.0, PlacementDifficulty: 3},
		{Name: "4h-2+1+1", Blocks: []int{2, 1, 1}, EducationalScore: 6.0, PlacementDifficulty: 3},
		{Name: "4h-1+1+1+1", Blocks: []int{1, 1, 1, 1}, EducationalScore: 3.0, PlacementDifficulty: 4},
	},
	5: {
		{Name: "5h-3+2", Blocks: []int{3, 2}, EducationalScore: 8.5, PlacementDifficulty: 3},
		{Name: "5h-3+1+1", Blocks: []int{3, 1, 1}, EducationalScore: 7.0, PlacementDifficulty: 4},
		{Name: "5h-2+1+1+1", Blocks: []int{2, 1, 1, 1}, EducationalScore: 6.0, PlacementDifficulty: 4},
		{Name: "5h-1x5", Blocks: []int{1, 1, 1, 1, 1}, EducationalScore: 4.5, PlacementDifficulty: 5},
	},
	6: {
		{Name: "6h-3+3", Blocks: []int{3, 3}, EducationalScore: 9.0, PlacementDifficulty: 4},
		{Name: "6h-3+2+1", Blocks: []int{3, 2, 1}, EducationalScore: 8.0, PlacementDifficulty: 4},
		{Name: "6h-4+2", Blocks: []int{4, 2}, EducationalScore: 7.5, PlacementDifficulty: 5},
		{Name: "6h-2+2+1+1", Blocks: []int{2, 2, 1, 1}, EducationalScore: 6.0, PlacementDifficulty: 4},
	},
}

// StandardConfiguration wraps the Decompose output for the hour count.
func StandardConfiguration(weeklyHours int) BlockConfiguration {
	return BlockConfiguration{
		Name:                "standard",
		Blocks:              Decompose(weeklyHours),
		EducationalScore:    10.0,
		PlacementDifficulty: 1,
	}
}

// AlternativesFor returns the ranked alternative configurations for the hour
// count that survive validation against the score threshold. The returned
// slice is ordered by decreasing educational score.
func AlternativesFor(weeklyHours int, minScore float64) []BlockConfiguration {
	candidates := alternativeConfigurations[weeklyHours]
	accepted := make([]BlockConfiguration, 0, len(candidates))
	for _, candidate := range candidates {
		if ValidateConfiguration(candidate, minScore) == nil {
			accepted = append(accepted, candidate)
		}
	}
	return accepted
}

// ConfigurationRejection explains why a candidate configuration is unusable.
// Rejections are internal diagnostics, never surfaced as run errors.
type ConfigurationRejection struct {
	Config string
	Reason string
}

func (r *ConfigurationRejection) Error() string {
	return "configuration " + r.Config + " rejected: " + r.Reason
}

// ValidateConfiguration applies the pedagogical acceptance rules: the score
// must reach minScore, a configuration totaling more than three hours may
// carry at most one single-hour block, and for configurations with more than
// two blocks at most half of them may be single-hour.
func ValidateConfiguration(c BlockConfiguration, minScore float64) error {
	if c.EducationalScore < minScore {
		return &ConfigurationRejection{Config: c.Name, Reason: "educational score below threshold"}
	}
	singles := c.singleHourBlocks()
	if c.Total() > 3 && singles > 1 {
		return &ConfigurationRejection{Config: c.Name, Reason: "too many single-hour blocks for total"}
	}
	if len(c.Blocks) > 2 && singles*2 > len(c.Blocks) {
		return &ConfigurationRejection{Config: c.Name, Reason: "single-hour blocks exceed half of blocks"}
	}
	return nil
}
