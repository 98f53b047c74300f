// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nitchau/handyman-sub001/apperr"
	"github.com/nitchau/handyman-sub001/assistant"
	"github.com/nitchau/handyman-sub001/location"
	"github.com/nitchau/handyman-sub001/quote"
	"github.com/nitchau/handyman-sub001/spatial"
	"github.com/nitchau/handyman-sub001/store"
	"go.uber.org/zap"
)

const (
	defaultFeaturedLimit = 12
	maxFeaturedLimit     = 50
	defaultNearbyLimit   = 20
	maxNearbyLimit       = 100
	defaultQuotesLimit   = 50
	maxQuotesLimit       = 200
)

// queryLimit reads ?limit=, falling back to def and capping at maxLimit.
func queryLimit(ctx *gin.Context, def, maxLimit int) (int, bool) {
	raw := ctx.Query("limit")
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}

	if n > maxLimit {
		n = maxLimit
	}

	return n, true
}

func (s *Server) reverseGeocode(ctx *gin.Context) {
	addr, err := s.geocoder.Reverse(ctx.Request.Context(), ctx.Query("lat"), ctx.Query("lng"))
	if errors.Is(err, apperr.ErrInvalidInput) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Provide valid lat and lng"})

		return
	}

	if err != nil {
		_ = ctx.Error(err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Geocoding failed"})

		return
	}

	ctx.JSON(http.StatusOK, addr)
}

type locationRequest struct {
	Latitude           *float64 `json:"latitude"             binding:"required"`
	Longitude          *float64 `json:"longitude"            binding:"required"`
	ServiceRadiusMiles *float64 `json:"service_radius_miles"`
}

func (s *Server) updateUserLocation(ctx *gin.Context) {
	var req locationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required numbers"})

		return
	}

	p := spatial.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	s.respondLocation(ctx, s.locations.UpdateUserLocation(ctx.Request.Context(), ctx.Param("id"), p))
}

func (s *Server) updateContractorLocation(ctx *gin.Context) {
	var req locationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required numbers"})

		return
	}

	p := spatial.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	err := s.locations.UpdateContractorLocation(ctx.Request.Context(), ctx.Param("id"), p, req.ServiceRadiusMiles)
	s.respondLocation(ctx, err)
}

func (s *Server) respondLocation(ctx *gin.Context, err error) {
	if location.Applied(err) {
		ctx.JSON(http.StatusOK, gin.H{"success": true})

		return
	}

	_ = ctx.Error(err)

	var writeErr *location.WriteError
	if !errors.As(err, &writeErr) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update location"})

		return
	}

	switch writeErr.Kind {
	case location.KindInvalid:
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": writeErr.Err.Error()})
	case location.KindNotFound:
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
	case location.KindConstraint:
		ctx.JSON(http.StatusConflict, gin.H{"success": false, "error": "Location rejected by the database"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update location"})
	}
}

func (s *Server) nearbyContractors(ctx *gin.Context) {
	p, err := spatial.ParsePoint(ctx.Query("lat"), ctx.Query("lng"))
	if err == nil {
		err = p.Validate()
	}

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Provide valid lat and lng"})

		return
	}

	limit, ok := queryLimit(ctx, defaultNearbyLimit, maxNearbyLimit)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})

		return
	}

	contractors, err := s.contractors.Nearby(ctx.Request.Context(), p, ctx.Query("trade"), limit)
	if err != nil {
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search contractors"})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"contractors": contractors})
}

func (s *Server) createQuote(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})

		return
	}

	req, violations, err := quote.ValidateJSON(body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})

		return
	}

	if len(violations) > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote request", "violations": violations})

		return
	}

	rec, err := s.quotes.Create(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save quote request"})

		return
	}

	ctx.JSON(http.StatusCreated, rec)
}

func (s *Server) listQuotes(ctx *gin.Context) {
	limit, ok := queryLimit(ctx, defaultQuotesLimit, maxQuotesLimit)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})

		return
	}

	records, err := s.quotes.ListForContractor(ctx.Request.Context(), ctx.Param("id"), limit)
	if err != nil {
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list quote requests"})

		return
	}

	if records == nil {
		records = []*quote.Record{}
	}

	ctx.JSON(http.StatusOK, gin.H{"quotes": records})
}

func (s *Server) getProfile(ctx *gin.Context) {
	profile, err := s.profiles.GetProfile(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})

		return
	}

	if err != nil {
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})

		return
	}

	ctx.JSON(http.StatusOK, profile)
}

func (s *Server) featuredDesigns(ctx *gin.Context) {
	limit, ok := queryLimit(ctx, defaultFeaturedLimit, maxFeaturedLimit)
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})

		return
	}

	designs, err := s.designs.ListFeatured(ctx.Request.Context(), limit)
	if err != nil {
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load designs"})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"designs": designs})
}

type chatRequest struct {
	Messages []assistant.Message `json:"messages" binding:"required"`
}

func (s *Server) chat(ctx *gin.Context) {
	var req chatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "messages are required"})

		return
	}

	reply, err := s.assistant.Chat(ctx.Request.Context(), req.Messages)
	if err != nil {
		s.respondAssistantError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, reply)
}

func (s *Server) billOfMaterials(ctx *gin.Context) {
	var req assistant.BOMRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})

		return
	}

	bom, err := s.assistant.BillOfMaterials(ctx.Request.Context(), req)
	if err != nil {
		s.respondAssistantError(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, bom)
}

func (s *Server) respondAssistantError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)

	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrConfigurationMissing):
		s.logger.Error("assistant is not configured", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Assistant is not available"})
	default:
		ctx.JSON(apperr.HTTPStatus(err), gin.H{"error": "Assistant request failed"})
	}
}
