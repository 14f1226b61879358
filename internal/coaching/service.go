package coaching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"nutrivision/internal/gemini"
	"nutrivision/internal/metrics"
)

// Generator is the upstream text-generation contract the pipeline depends
// on. *gemini.Client satisfies it; tests substitute fakes.
type Generator interface {
	// GenerateContent returns generated text for the prompt, or a classified
	// failure (gemini.ErrQuotaExceeded after the retry budget,
	// gemini.ErrNotConfigured, or a generic upstream error).
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// Configured reports whether the upstream handle is usable at all.
	Configured() bool
}

// Service composes validation, prompt building, the retrying upstream call
// and the quick-tip fallback into one request's outcome. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	gen Generator
}

func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

// Ready reports whether the upstream provider handle is configured.
func (s *Service) Ready() bool {
	return s.gen != nil && s.gen.Configured()
}

// GenerateTip runs the single-item pipeline for a validated request. Every
// provider failure degrades to a usable quick tip; the returned error is
// non-nil only for configuration faults (handle never initialized), which the
// transport layer surfaces as a 500.
func (s *Service) GenerateTip(ctx context.Context, req *Request) (Result, error) {
	d := req.Derive()
	prompt := FullPrompt(req, d)

	text, err := s.gen.GenerateContent(ctx, prompt)
	switch {
	case err == nil:
		tip := strings.TrimSpace(text)
		if tip == "" {
			// Provider succeeded with no content; substitute the quick tip
			// but keep the success status.
			tip = QuickTip(d.CaloriesRemaining, req.Goal, req.FoodLabel)
		}
		metrics.TipTotal.WithLabelValues(StatusSuccess).Inc()
		return Result{Tip: tip, Status: StatusSuccess, Derived: d}, nil

	case errors.Is(err, gemini.ErrNotConfigured):
		metrics.TipTotal.WithLabelValues(StatusError).Inc()
		return Result{Status: StatusError, Derived: d}, err

	case errors.Is(err, gemini.ErrQuotaExceeded):
		log.Warn().Err(err).Str("food", req.FoodLabel).Msg("Quota exhausted, using quick tip")
		metrics.TipTotal.WithLabelValues(StatusQuotaFallback).Inc()
		return Result{
			Tip:     QuickTip(d.CaloriesRemaining, req.Goal, req.FoodLabel),
			Status:  StatusQuotaFallback,
			Derived: d,
		}, nil

	default:
		log.Warn().Err(err).Str("food", req.FoodLabel).Msg("Upstream call failed, using quick tip")
		metrics.TipTotal.WithLabelValues(StatusFallback).Inc()
		return Result{
			Tip:     QuickTip(d.CaloriesRemaining, req.Goal, req.FoodLabel),
			Status:  StatusFallback,
			Derived: d,
		}, nil
	}
}

// GenerateBatch runs the pipeline over an ordered sequence of raw meal
// payloads. Output preserves input order and cardinality exactly: one item's
// failure, including an unexpected panic, becomes a status=error entry and
// never affects its siblings. Items are processed sequentially within the
// caller's request; individual items are not rate limited.
func (s *Service) GenerateBatch(ctx context.Context, meals []map[string]any) []BatchTip {
	results := make([]BatchTip, 0, len(meals))
	for _, meal := range meals {
		results = append(results, s.batchItem(ctx, meal))
	}
	return results
}

// batchItem shields the batch from any failure escaping the single-item
// pipeline.
func (s *Service) batchItem(ctx context.Context, meal map[string]any) (out BatchTip) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Unexpected failure generating batch tip")
			metrics.TipTotal.WithLabelValues(StatusError).Inc()
			out = BatchTip{
				FoodLabel: FoodLabelOrUnknown(meal),
				Error:     fmt.Sprintf("%v", r),
				Status:    StatusError,
			}
		}
	}()

	req, err := ParseRequest(meal)
	if err != nil {
		metrics.TipTotal.WithLabelValues(StatusError).Inc()
		return BatchTip{
			FoodLabel: FoodLabelOrUnknown(meal),
			Error:     err.Error(),
			Status:    StatusError,
		}
	}

	res, err := s.GenerateTip(ctx, req)
	if err != nil {
		return BatchTip{
			FoodLabel: req.FoodLabel,
			Error:     err.Error(),
			Status:    StatusError,
		}
	}

	return BatchTip{
		FoodLabel:   req.FoodLabel,
		CoachingTip: res.Tip,
		Status:      res.Status,
	}
}
