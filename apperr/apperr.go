// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

// Package apperr holds the error kinds shared by the API layer.
//
// Module errors never expose these sentinels directly; they report their kind
// through errors.Is so handlers can map any failure to a response without
// knowing the concrete type.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput marks malformed or out-of-range caller supplied data.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable marks a failed or empty response from an external provider.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrConfigurationMissing marks an absent credential or required setting.
	ErrConfigurationMissing = errors.New("configuration missing")
)

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
