package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardConfiguration(t *testing.T) {
	cfg := StandardConfiguration(5)
	assert.Equal(t, []int{2, 2, 1}, cfg.Blocks)
	assert.Equal(t, 10.0, cfg.EducationalScore)
	assert.Equal(t, 5, cfg.Total())
}

func TestValidateConfigurationScoreThreshold(t *testing.T) {
	low := BlockConfiguration{Name: "5h-1x5", Blocks: []int{1, 1, 1, 1, 1}, EducationalScore: 4.5}
	err := ValidateConfiguration(low, 5.0)
	require.Error(t, err)

	rejection, ok := err.(*ConfigurationRejection)
	require.True(t, ok)
	assert.Equal(t, "5h-1x5", rejection.Config)
}

func TestValidateConfigurationSingleHourLimit(t *testing.T) {
	// more than three total hours admits at most one single-hour block
	cfg := BlockConfiguration{Name: "5h-3+1+1", Blocks: []int{3, 1, 1}, EducationalScore: 7.0}
	assert.Error(t, ValidateConfiguration(cfg, 5.0))

	ok := BlockConfiguration{Name: "4h-3+1", Blocks: []int{3, 1}, EducationalScore: 8.0}
	assert.NoError(t, ValidateConfiguration(ok, 5.0))
}

func TestValidateConfigurationHalfSinglesRule(t *testing.T) {
	cfg := BlockConfiguration{Name: "3h-1+1+1", Blocks: []int{1, 1, 1}, EducationalScore: 6.5}
	assert.Error(t, ValidateConfiguration(cfg, 5.0))
}

func TestAlternativesForFiltersAndRanks(t *testing.T) {
	accepted := AlternativesFor(5, 5.0)
	require.Len(t, accepted, 1)
	assert.Equal(t, "5h-3+2", accepted[0].Name)

	accepted = AlternativesFor(6, 5.0)
	require.Len(t, accepted, 3)
	for i := 1; i < len(accepted); i++ {
		assert.GreaterOrEqual(t, accepted[i-1].EducationalScore, accepted[i].EducationalScore)
	}
}

func TestAlternativesForUnknownHours(t *testing.T) {
	assert.Empty(t, AlternativesFor(9, 5.0))
}
