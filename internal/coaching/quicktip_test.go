package coaching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuickTipBucketBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		want      string
	}{
		{
			name:      "over budget by one",
			remaining: -1,
			want:      "You've gone over your daily target by 1 kcal. Balance it out with lighter choices later and keep hydrated.",
		},
		{
			name:      "zero remaining is low bucket",
			remaining: 0,
			want:      "You have 0 kcal left. Aim for a light, veggie-heavy meal to finish the day strong.",
		},
		{
			name:      "299 still low bucket",
			remaining: 299,
			want:      "You have 299 kcal left. Aim for a light, veggie-heavy meal to finish the day strong.",
		},
		{
			name:      "300 enters moderate bucket",
			remaining: 300,
			want:      "You have 300 kcal remaining. A balanced meal with protein, veggies, and some carbs will fit well.",
		},
		{
			name:      "599 still moderate bucket",
			remaining: 599,
			want:      "You have 599 kcal remaining. A balanced meal with protein, veggies, and some carbs will fit well.",
		},
		{
			name:      "600 enters ample bucket",
			remaining: 600,
			want:      "Nice work! You still have 600 kcal left today. Enjoy a satisfying but balanced meal.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuickTip(tt.remaining, "maintain", "apple"))
		})
	}
}

func TestQuickTipDeepOverBudgetUsesAbsoluteValue(t *testing.T) {
	got := QuickTip(-450, "lose", "")
	assert.Contains(t, got, "over your daily target by 450 kcal")
}
