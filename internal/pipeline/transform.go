package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gustmaps/windshear-service/internal/domain"
)

// AssessmentTransformer implements Transformer by fetching reanalysis wind
// speed for the request's locations, estimating roughness per location, and
// projecting the series to the requested target height.
type AssessmentTransformer struct {
	weather   domain.WeatherSource
	roughness domain.RoughnessEstimator
	projector domain.Projector
	logger    *slog.Logger
}

// NewTransformer creates an AssessmentTransformer.
func NewTransformer(weather domain.WeatherSource, roughness domain.RoughnessEstimator, projector domain.Projector, logger *slog.Logger) *AssessmentTransformer {
	return &AssessmentTransformer{
		weather:   weather,
		roughness: roughness,
		projector: projector,
		logger:    logger,
	}
}

func (t *AssessmentTransformer) Transform(ctx context.Context, raw domain.RawRequest) (domain.AssessmentResult, error) {
	req, err := domain.ParseRequest(raw)
	if err != nil {
		return domain.AssessmentResult{}, err
	}

	measured, err := t.weather.FetchWindSpeed(ctx, req.Locations, req.From, req.To)
	if err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("site %s: fetch wind speed: %w", req.SiteID, err)
	}

	roughness, err := t.roughness.EstimateRoughnessBatch(ctx, req.Locations)
	if err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("site %s: estimate roughness: %w", req.SiteID, err)
	}

	measuredHeight := t.weather.ReferenceHeight()
	projected, err := t.projector.ProjectBatch(measured, measuredHeight, req.TargetHeight, roughness)
	if err != nil {
		return domain.AssessmentResult{}, fmt.Errorf("site %s: project to %gm: %w", req.SiteID, req.TargetHeight, err)
	}

	t.logger.Debug("assessment complete",
		"site_id", req.SiteID,
		"locations", len(req.Locations),
		"samples", len(projected.Series[0].Points),
		"target_height", req.TargetHeight,
	)

	return domain.NewResult(req, measuredHeight, roughness, projected), nil
}
