package coaching

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Generic encouragement strings for responses that carry no real tip.
const (
	// GenericEncouragement is attached to unhandled-fault responses so the
	// client always has something to show.
	GenericEncouragement = "You're doing great—focus on balanced meals and hydration."

	unconfiguredTip   = "Keep up the great work on your nutrition journey!"
	unconfiguredError = "Gemini API not initialized"
)

// Handler exposes the coaching endpoints as echo handlers.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// tipResponse is the /coaching success body.
type tipResponse struct {
	CoachingTip string      `json:"coaching_tip"`
	Status      string      `json:"status"`
	Metadata    tipMetadata `json:"metadata"`
}

type tipMetadata struct {
	CaloriesRemaining  int     `json:"calories_remaining"`
	PercentageConsumed float64 `json:"percentage_consumed"`
}

// batchResponse is the /coaching/batch success body.
type batchResponse struct {
	Tips   []BatchTip `json:"tips"`
	Count  int        `json:"count"`
	Status string     `json:"status"`
}

// TipHandler serves POST /coaching: one meal in, one coaching tip out.
// Provider instability never produces an error response here; it degrades to
// a quick tip with a fallback status.
func (h *Handler) TipHandler(c echo.Context) error {
	if !h.svc.Ready() {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error":        unconfiguredError,
			"status":       StatusError,
			"coaching_tip": unconfiguredTip,
		})
	}

	raw := decodeBody(c)

	req, err := ParseRequest(raw)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error":  verr.Error(),
				"status": StatusError,
			})
		}
		return err
	}
	req.UserName = OptionalUserName(raw)

	res, err := h.svc.GenerateTip(c.Request().Context(), req)
	if err != nil {
		// Configuration fault slipped past the readiness check.
		log.Error().Err(err).Msg("Coaching tip generation failed")
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error":        err.Error(),
			"status":       StatusError,
			"coaching_tip": unconfiguredTip,
		})
	}

	return c.JSON(http.StatusOK, tipResponse{
		CoachingTip: res.Tip,
		Status:      res.Status,
		Metadata: tipMetadata{
			CaloriesRemaining:  res.Derived.CaloriesRemaining,
			PercentageConsumed: round1(res.Derived.PercentageConsumed),
		},
	})
}

// BatchHandler serves POST /coaching/batch: an ordered list of meals mapped
// one-to-one to tip entries. One item's failure never aborts or reorders the
// batch.
func (h *Handler) BatchHandler(c echo.Context) error {
	if !h.svc.Ready() {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error":  unconfiguredError,
			"status": StatusError,
		})
	}

	var body struct {
		Meals []map[string]any `json:"meals"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil || len(body.Meals) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "No meals provided"})
	}

	tips := h.svc.GenerateBatch(c.Request().Context(), body.Meals)

	return c.JSON(http.StatusOK, batchResponse{
		Tips:   tips,
		Count:  len(tips),
		Status: StatusSuccess,
	})
}

// QuickTipHandler serves POST /coaching/quick: the deterministic rule-based
// tip with no upstream call. Useful when the provider is unavailable.
func (h *Handler) QuickTipHandler(c echo.Context) error {
	raw := decodeBody(c)

	remaining := 500
	if _, ok := raw["calories_remaining"]; ok {
		n, err := intField(raw, "calories_remaining")
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error":  err.Error(),
				"status": StatusError,
			})
		}
		remaining = n
	}

	goal := "maintain"
	if _, ok := raw["user_goal"]; ok {
		goal = stringField(raw, "user_goal")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"coaching_tip": QuickTip(remaining, goal, ""),
		"status":       StatusSuccess,
		"source":       "quick_tip",
	})
}

// decodeBody reads the request body as a loose JSON object. A missing or
// malformed body is treated as empty; required-field validation reports the
// real problem.
func decodeBody(c echo.Context) map[string]any {
	raw := map[string]any{}
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return map[string]any{}
	}
	return raw
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
