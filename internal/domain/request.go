package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// RawRequest represents an unprocessed message from the request topic.
type RawRequest struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// AssessmentRequest asks for hub-height wind speed estimates at one or more
// site locations over a time range. TargetHeight is meters above ground.
type AssessmentRequest struct {
	SiteID       string     `json:"site_id"`
	Locations    []Location `json:"locations"`
	TargetHeight float64    `json:"target_height"`
	From         time.Time  `json:"from"`
	To           time.Time  `json:"to"`
}

// ParseRequest deserializes a RawRequest's value into an AssessmentRequest
// and validates it. Heights and roughness are validated again, against the
// actual weather data, at projection time.
func ParseRequest(raw RawRequest) (AssessmentRequest, error) {
	var req AssessmentRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return AssessmentRequest{}, fmt.Errorf("parse assessment request: %w", err)
	}

	if req.SiteID == "" {
		return AssessmentRequest{}, fmt.Errorf("%w: site_id is required", ErrInvalidParameter)
	}
	if len(req.Locations) == 0 {
		return AssessmentRequest{}, fmt.Errorf("%w: at least one location is required", ErrInvalidParameter)
	}
	if req.TargetHeight <= 0 {
		return AssessmentRequest{}, fmt.Errorf("%w: target height %g must be positive", ErrInvalidParameter, req.TargetHeight)
	}
	if req.From.IsZero() || req.To.IsZero() || !req.To.After(req.From) {
		return AssessmentRequest{}, fmt.Errorf("%w: time range [%s, %s) is empty", ErrInvalidParameter, req.From, req.To)
	}

	return req, nil
}

// AssessmentResult is the projected batch together with the inputs that
// produced it.
type AssessmentResult struct {
	ID             string    `json:"id"`
	SiteID         string    `json:"site_id"`
	MeasuredHeight float64   `json:"measured_height"`
	TargetHeight   float64   `json:"target_height"`
	Roughness      []float64 `json:"roughness"`
	Projected      Batch     `json:"projected"`
	ProcessedAt    time.Time `json:"processed_at"`
}

// NewResult assembles an AssessmentResult and stamps it with the domain clock.
// Roughness values are listed in the projected batch's series order.
func NewResult(req AssessmentRequest, measuredHeight float64, roughness []float64, projected Batch) AssessmentResult {
	return AssessmentResult{
		ID:             generateResultID(req, measuredHeight),
		SiteID:         req.SiteID,
		MeasuredHeight: measuredHeight,
		TargetHeight:   req.TargetHeight,
		Roughness:      roughness,
		Projected:      projected,
		ProcessedAt:    clock.Now(),
	}
}

// generateResultID produces a deterministic ID from the request's key fields,
// so reprocessing the same request yields the same result ID and downstream
// consumers can deduplicate on replay.
func generateResultID(req AssessmentRequest, measuredHeight float64) string {
	input := fmt.Sprintf("%s|%g|%g|%s|%s", req.SiteID, measuredHeight, req.TargetHeight,
		req.From.UTC().Format(time.RFC3339), req.To.UTC().Format(time.RFC3339))
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if req.SiteID == "" {
		return short
	}
	return req.SiteID + "-" + short
}
