package coaching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptGolden(t *testing.T) {
	req := &Request{
		UserTDEE:         2500,
		CaloriesConsumed: 1200,
		FoodLabel:        "apple",
		FoodCalories:     95,
		Goal:             "maintain",
		UserName:         "Ada",
	}

	system, user := BuildPrompt(req, req.Derive())

	assert.Equal(t,
		"You are a concise, supportive nutrition coach. "+
			"Give 1 short, practical sentence about this meal vs daily target. "+
			"No judgment, just encouragement and next step.",
		system)
	assert.Equal(t,
		"User: Ada. TDEE: 2500 kcal. Already eaten: 1200 kcal. "+
			"Current meal: apple (~95 kcal). Total now: 1295 kcal. "+
			"Remaining: 1205 kcal. Goal: maintain weight.",
		user)
}

func TestBuildPromptOmitsNamePartWhenEmpty(t *testing.T) {
	req := &Request{UserTDEE: 2000, CaloriesConsumed: 800, FoodLabel: "rice", FoodCalories: 200, Goal: "gain"}

	_, user := BuildPrompt(req, req.Derive())
	assert.Equal(t,
		"TDEE: 2000 kcal. Already eaten: 800 kcal. Current meal: rice (~200 kcal). "+
			"Total now: 1000 kcal. Remaining: 1000 kcal. Goal: gain weight.",
		user)
}

func TestFullPromptIsDeterministic(t *testing.T) {
	req := &Request{UserTDEE: 1800, CaloriesConsumed: 600, FoodLabel: "salad", FoodCalories: 150, Goal: "lose", UserName: "Friend"}
	d := req.Derive()

	first := FullPrompt(req, d)
	assert.Equal(t, first, FullPrompt(req, d))
	assert.Contains(t, first, "\n\n", "system instruction and context are joined by a blank line")
}
