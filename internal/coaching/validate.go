package coaching

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// requiredFields in check order; the first missing one names the error.
var requiredFields = []string{
	"user_tdee",
	"calories_consumed_so_far",
	"detected_food_label",
	"detected_food_calories",
	"user_goal",
}

// ValidationError reports the first malformed part of an inbound payload.
// Surfaced to the client as a 400 with the offending field name.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("Missing required field: %s", e.Field)
	}
	return fmt.Sprintf("Invalid data types: %s", e.Reason)
}

// ParseRequest normalizes and type-checks a raw JSON payload into a Request.
// All required keys must be present; numeric fields must coerce to integers
// and string fields are lowercased. UserName is left empty here; callers that
// accept user_name apply it separately. No side effects.
func ParseRequest(raw map[string]any) (*Request, error) {
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			return nil, &ValidationError{Field: field}
		}
	}

	tdee, err := intField(raw, "user_tdee")
	if err != nil {
		return nil, err
	}
	consumed, err := intField(raw, "calories_consumed_so_far")
	if err != nil {
		return nil, err
	}
	label := stringField(raw, "detected_food_label")
	foodCalories, err := intField(raw, "detected_food_calories")
	if err != nil {
		return nil, err
	}
	goal := stringField(raw, "user_goal")

	return &Request{
		UserTDEE:         tdee,
		CaloriesConsumed: consumed,
		FoodLabel:        label,
		FoodCalories:     foodCalories,
		Goal:             goal,
	}, nil
}

// OptionalUserName extracts user_name, defaulting when absent. Never fails;
// the name is reproduced as-is (no lowercasing).
func OptionalUserName(raw map[string]any) string {
	v, ok := raw["user_name"]
	if !ok || v == nil {
		return DefaultUserName
	}
	return anyToString(v)
}

// FoodLabelOrUnknown best-effort resolves the food label from a raw payload
// for error annotations, before validation has run.
func FoodLabelOrUnknown(raw map[string]any) string {
	if v, ok := raw["detected_food_label"]; ok && v != nil {
		if s := strings.ToLower(anyToString(v)); s != "" {
			return s
		}
	}
	return "Unknown"
}

// intField coerces a JSON value to an integer. Accepts numbers and numeric
// strings; anything else is a type error naming the field.
func intField(raw map[string]any, field string) (int, error) {
	switch v := raw[field].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("%s is not an integer", field)}
		}
		return int(f), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("%s is not an integer", field)}
		}
		return n, nil
	default:
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("%s is not an integer", field)}
	}
}

// stringField coerces a JSON value to a lowercased string.
func stringField(raw map[string]any, field string) string {
	return strings.ToLower(anyToString(raw[field]))
}

func anyToString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
