package coaching

import "fmt"

// QuickTip synthesizes a rule-based coaching message without calling the
// provider. Bucket boundaries are exact contract: <0, [0,300), [300,600),
// and >=600 kcal remaining. Used as the last-resort fallback and whenever
// the provider returns an empty string.
func QuickTip(caloriesRemaining int, goal string, foodLabel string) string {
	switch {
	case caloriesRemaining < 0:
		return fmt.Sprintf(
			"You've gone over your daily target by %d kcal. "+
				"Balance it out with lighter choices later and keep hydrated.",
			-caloriesRemaining)
	case caloriesRemaining < 300:
		return fmt.Sprintf(
			"You have %d kcal left. "+
				"Aim for a light, veggie-heavy meal to finish the day strong.",
			caloriesRemaining)
	case caloriesRemaining < 600:
		return fmt.Sprintf(
			"You have %d kcal remaining. "+
				"A balanced meal with protein, veggies, and some carbs will fit well.",
			caloriesRemaining)
	default:
		return fmt.Sprintf(
			"Nice work! You still have %d kcal left today. "+
				"Enjoy a satisfying but balanced meal.",
			caloriesRemaining)
	}
}
