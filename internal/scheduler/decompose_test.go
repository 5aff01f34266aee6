package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecompose(t *testing.T) {
	cases := []struct {
		hours    int
		expected []int
	}{
		{0, nil},
		{-1, nil},
		{1, []int{1}},
		{2, []int{2}},
		{3, []int{2, 1}},
		{4, []int{2, 2}},
		{5, []int{2, 2, 1}},
		{6, []int{2, 2, 2}},
		{7, []int{2, 2, 2, 1}},
		{10, []int{2, 2, 2, 2, 2}},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, Decompose(tc.hours), "hours=%d", tc.hours)
	}
}

func TestDecomposeSumsToInput(t *testing.T) {
	for hours := 1; hours <= 12; hours++ {
		total := 0
		for _, size := range Decompose(hours) {
			total += size
		}
		assert.Equal(t, hours, total)
	}
}

func TestDecomposeDeterministic(t *testing.T) {
	assert.Equal(t, Decompose(5), Decompose(5))
}
