// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package assistant

import (
	"errors"
	"fmt"

	"github.com/nitchau/handyman-sub001/apperr"
)

// ErrMissingAPIKey is returned by the registry while the API key is unset.
var ErrMissingAPIKey = fmt.Errorf("%s is not set: %w", APIKeyEnv, apperr.ErrConfigurationMissing)

// GenerationError is a failed or unusable model response.
type GenerationError struct {
	Model   string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Model, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Model, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is makes generation failures match apperr.ErrUpstreamUnavailable.
func (e *GenerationError) Is(target error) bool {
	return target == apperr.ErrUpstreamUnavailable
}

// IsMissingAPIKey reports whether err comes from an unset API key.
func IsMissingAPIKey(err error) bool {
	return errors.Is(err, ErrMissingAPIKey)
}
