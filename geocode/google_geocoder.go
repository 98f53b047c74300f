// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/nitchau/handyman-sub001/spatial"
)

// DefaultGoogleMapsURL is the Google Maps Geocoding API endpoint.
const DefaultGoogleMapsURL = "https://maps.googleapis.com/maps/api/geocode/json"

const providerGoogleMaps = "google_maps"

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder. An empty baseURL
// selects DefaultGoogleMapsURL.
func NewGoogleMapsGeocoder(apiKey, baseURL string, httpClient *http.Client) *GoogleMapsGeocoder {
	if baseURL == "" {
		baseURL = DefaultGoogleMapsURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &GoogleMapsGeocoder{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type googleMapsResponse struct {
	Results []struct {
		AddressComponents []addressComponent `json:"address_components"`
		FormattedAddress  string             `json:"formatted_address"`
		Geometry          struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		PlaceID string `json:"place_id"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// Reverse looks up the address at p. The first (most specific) result wins.
func (g *GoogleMapsGeocoder) Reverse(ctx context.Context, p spatial.Point) (*Address, error) {
	params := url.Values{}
	params.Set("latlng", strconv.FormatFloat(p.Lat, 'f', -1, 64)+","+strconv.FormatFloat(p.Lng, 'f', -1, 64))
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeUnknown, Message: "building geocoding request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return nil, ClassifyHTTPError(resp.StatusCode, string(body))
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeUnknown, Message: "decoding response", Err: err}
	}

	if gmResp.Status != "OK" {
		return nil, ClassifyStatus(gmResp.Status, gmResp.ErrorMessage)
	}

	if len(gmResp.Results) == 0 {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no results found for %s", p),
		}
	}

	result := gmResp.Results[0]

	addr := &Address{
		FormattedAddress: result.FormattedAddress,
		PlaceID:          result.PlaceID,
		Latitude:         result.Geometry.Location.Lat,
		Longitude:        result.Geometry.Location.Lng,
		Confidence:       confidenceFor(result.Geometry.LocationType),
		Provider:         providerGoogleMaps,
	}

	for _, c := range result.AddressComponents {
		switch {
		case has(c, "street_number"):
			addr.StreetNumber = c.LongName
		case has(c, "route"):
			addr.Route = c.LongName
		case has(c, "neighborhood"):
			addr.Neighborhood = c.LongName
		case has(c, "locality"):
			addr.Locality = c.LongName
		case has(c, "postal_town") && addr.Locality == "":
			addr.Locality = c.LongName
		case has(c, "administrative_area_level_2"):
			addr.County = c.LongName
		case has(c, "administrative_area_level_1"):
			addr.Region = c.LongName
			addr.RegionCode = c.ShortName
		case has(c, "postal_code"):
			addr.PostalCode = c.LongName
		case has(c, "country"):
			addr.Country = c.LongName
			addr.CountryCode = c.ShortName
		}
	}

	return addr, nil
}

func has(c addressComponent, typ string) bool {
	return slices.Contains(c.Types, typ)
}

// confidenceFor maps Google's location_type to a confidence level.
func confidenceFor(locationType string) string {
	switch locationType {
	case "ROOFTOP", "RANGE_INTERPOLATED":
		return "high"
	case "GEOMETRIC_CENTER":
		return "medium"
	default:
		return "low"
	}
}

func classifyTransportError(err error) *GeocodingError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &GeocodingError{Type: ErrorTypeTimeout, Message: "geocoding request timed out", Err: err}
	}

	return &GeocodingError{Type: ErrorTypeNetworkError, Message: "geocoding request failed", Err: err}
}
