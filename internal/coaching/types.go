/*
Package coaching implements the tip-generation pipeline: request validation,
prompt assembly, the deterministic quick-tip fallback, and the single-item and
batch orchestration around the Gemini client.
*/
package coaching

// Tip statuses. Exactly one is set on every response; the status fully
// determines whether the tip text came from the provider or from the
// rule-based fallback.
const (
	// StatusSuccess: the provider produced the tip (or succeeded with empty
	// content and the quick tip was substituted).
	StatusSuccess = "success"

	// StatusQuotaFallback: provider stayed rate limited through the whole
	// retry budget; tip is the deterministic quick tip.
	StatusQuotaFallback = "quota_fallback"

	// StatusFallback: any other provider failure; tip is the quick tip.
	StatusFallback = "fallback"

	// StatusError: validation or configuration failure.
	StatusError = "error"
)

// DefaultUserName is used when the optional user_name field is absent.
const DefaultUserName = "Friend"

// Request is one validated coaching request. Built per inbound call,
// immutable, discarded after the response is produced.
type Request struct {
	// UserTDEE is the user's daily calorie target in kcal.
	UserTDEE int

	// CaloriesConsumed is what the user already ate today, excluding the
	// current meal.
	CaloriesConsumed int

	// FoodLabel is the detected label of the just-logged food, lowercased.
	FoodLabel string

	// FoodCalories is the calorie estimate for the just-logged food.
	FoodCalories int

	// Goal is the user's weight goal (lose/maintain/gain), lowercased.
	// Unknown values pass through as opaque strings.
	Goal string

	// UserName is optional; empty means the prompt omits the name part.
	UserName string
}

// Derived is the calorie state computed fresh from a Request. Never cached
// across requests.
type Derived struct {
	CurrentTotal       int
	CaloriesRemaining  int
	PercentageConsumed float64
}

// Derive computes the running total, the remaining budget (which may go
// negative, no clamping) and the percentage of the daily target consumed.
func (r *Request) Derive() Derived {
	total := r.CaloriesConsumed + r.FoodCalories

	var pct float64
	if r.UserTDEE > 0 {
		pct = float64(total) / float64(r.UserTDEE) * 100
	}

	return Derived{
		CurrentTotal:       total,
		CaloriesRemaining:  r.UserTDEE - total,
		PercentageConsumed: pct,
	}
}

// Result is the outcome of the single-item pipeline.
type Result struct {
	Tip     string
	Status  string
	Derived Derived
}

// BatchTip is one entry of a batch response, annotated with the food label it
// belongs to. Either CoachingTip or Error is set, depending on Status.
type BatchTip struct {
	FoodLabel   string `json:"food_label"`
	CoachingTip string `json:"coaching_tip,omitempty"`
	Error       string `json:"error,omitempty"`
	Status      string `json:"status"`
}
