package coaching

import (
	"fmt"
	"strings"
)

// SystemInstruction is the fixed persona constraint sent with every prompt.
const SystemInstruction = "You are a concise, supportive nutrition coach. " +
	"Give 1 short, practical sentence about this meal vs daily target. " +
	"No judgment, just encouragement and next step."

// BuildPrompt turns a validated request and its derived state into the
// system instruction and the interpolated user context. Deterministic and
// side-effect-free: identical inputs always produce identical prompt text.
func BuildPrompt(req *Request, d Derived) (systemInstruction, userContext string) {
	var b strings.Builder

	if req.UserName != "" {
		fmt.Fprintf(&b, "User: %s. ", req.UserName)
	}
	fmt.Fprintf(&b, "TDEE: %d kcal. ", req.UserTDEE)
	fmt.Fprintf(&b, "Already eaten: %d kcal. ", req.CaloriesConsumed)
	fmt.Fprintf(&b, "Current meal: %s (~%d kcal). ", req.FoodLabel, req.FoodCalories)
	fmt.Fprintf(&b, "Total now: %d kcal. ", d.CurrentTotal)
	fmt.Fprintf(&b, "Remaining: %d kcal. ", d.CaloriesRemaining)
	fmt.Fprintf(&b, "Goal: %s weight.", req.Goal)

	return SystemInstruction, b.String()
}

// FullPrompt joins the two prompt halves with a blank line, the form the
// upstream caller expects.
func FullPrompt(req *Request, d Derived) string {
	system, user := BuildPrompt(req, d)
	return system + "\n\n" + user
}
