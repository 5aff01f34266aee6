package scheduler

// Decompose turns a weekly-hour count into the standard ordered list of block
// sizes (MEB pedagogy): 3 → [2,1], 5 → [2,2,1], 6 → [2,2,2]. Counts above six
// repeat 2-blocks with a trailing 1 for an odd remainder. Always returns a
// valid decomposition summing to weeklyHours.
func Decompose(weeklyHours int) []int {
	if weeklyHours <= 0 {
		return nil
	}

	blocks := make([]int, 0, weeklyHours/2+1)
	for remaining := weeklyHours; remaining > 0; {
		if remaining >= 2 {
			blocks = append(blocks, 2)
			remaining -= 2
		} else {
			blocks = append(blocks, 1)
			remaining--
		}
	}
	return blocks
}
