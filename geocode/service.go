// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"

	"github.com/nitchau/handyman-sub001/metrics"
	"github.com/nitchau/handyman-sub001/spatial"
	"go.uber.org/zap"
)

const operationReverse = "reverse_geocode"

// Service validates raw coordinates and forwards them to a provider. Each
// call reaches the provider at most once: there is no retry and no cache.
type Service struct {
	geocoder ReverseGeocoder
	provider string
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewService creates a Service. provider labels metrics and logs.
func NewService(geocoder ReverseGeocoder, provider string, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		geocoder: geocoder,
		provider: provider,
		logger:   logger,
		metrics:  m,
	}
}

// Reverse parses lat/lng decimal strings and reverse geocodes them. Unparseable
// input fails with ErrorTypeInvalidInput without contacting the provider; any
// provider failure, including an empty answer, is reported as unavailable.
func (s *Service) Reverse(ctx context.Context, latRaw, lngRaw string) (*Address, error) {
	p, err := spatial.ParsePoint(latRaw, lngRaw)
	if err != nil {
		s.metrics.Rejected(operationReverse)

		return nil, &GeocodingError{Type: ErrorTypeInvalidInput, Message: "invalid coordinates", Err: err}
	}

	addr, err := s.geocoder.Reverse(ctx, p)
	if err == nil && addr == nil {
		err = &GeocodingError{Type: ErrorTypeNotFound, Message: "provider returned no result"}
	}

	if err != nil {
		outcome := failureOutcome(err)
		s.metrics.Upstream(s.provider, outcome)
		s.logger.Warn("reverse geocoding failed",
			zap.String("provider", s.provider),
			zap.String("outcome", outcome),
			zap.Float64("lat", p.Lat),
			zap.Float64("lng", p.Lng),
			zap.Error(err),
		)

		var geoErr *GeocodingError
		if errors.As(err, &geoErr) {
			if geoErr.Type != ErrorTypeInvalidInput {
				return nil, geoErr
			}

			// The coordinates were already accepted; keep the message but not
			// the invalid input kind.
			err = errors.New(geoErr.Error())
		}

		return nil, &GeocodingError{Type: ErrorTypeUnknown, Message: "geocoding failed", Err: err}
	}

	s.metrics.Upstream(s.provider, metrics.OutcomeOK)

	return addr, nil
}

// failureOutcome labels a provider failure so throttling, quota and timeouts
// can be told apart from other errors.
func failureOutcome(err error) string {
	switch {
	case IsRateLimitError(err):
		return metrics.OutcomeRateLimited
	case IsQuotaExceededError(err):
		return metrics.OutcomeQuota
	case IsTimeoutError(err):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}
