// Copyright 2026 The Handyman Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nitchau/handyman-sub001/apperr"
	"github.com/nitchau/handyman-sub001/assistant"
	"github.com/nitchau/handyman-sub001/config"
	"github.com/nitchau/handyman-sub001/geocode"
	"github.com/nitchau/handyman-sub001/location"
	"github.com/nitchau/handyman-sub001/metrics"
	"github.com/nitchau/handyman-sub001/quote"
	"github.com/nitchau/handyman-sub001/spatial"
	"github.com/nitchau/handyman-sub001/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockGeocoder is a provider that answers with a fixed address or error.
type MockGeocoder struct {
	addr  *geocode.Address
	err   error
	calls int
}

func (m *MockGeocoder) Reverse(_ context.Context, p spatial.Point) (*geocode.Address, error) {
	m.calls++

	if m.err != nil {
		return nil, m.err
	}

	addr := *m.addr
	addr.Latitude = p.Lat
	addr.Longitude = p.Lng

	return &addr, nil
}

// MockAssistant records the last call and answers with fixed values.
type MockAssistant struct {
	reply    *assistant.Reply
	bom      *assistant.BillOfMaterials
	err      error
	messages []assistant.Message
}

func (m *MockAssistant) Chat(_ context.Context, messages []assistant.Message) (*assistant.Reply, error) {
	m.messages = messages
	return m.reply, m.err
}

func (m *MockAssistant) BillOfMaterials(_ context.Context, _ assistant.BOMRequest) (*assistant.BillOfMaterials, error) {
	return m.bom, m.err
}

type testEnv struct {
	router    *gin.Engine
	db        *sql.DB
	geocoder  *MockGeocoder
	assistant *MockAssistant
}

func setupServerTest(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := store.Open(config.DatabaseConfig{Driver: "duckdb"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, store.CreateSchema(context.Background(), db))

	_, err = db.Exec(`
		INSERT INTO users (id, full_name, email, role) VALUES
			('u-1', 'Hana Homeowner', 'hana@example.com', 'homeowner'),
			('u-2', 'Pat Pro', 'pat@example.com', 'contractor');
		INSERT INTO contractors (id, user_id, business_name, trade, latitude, longitude, service_radius_miles) VALUES
			('c-1', 'u-2', 'Pat''s Plumbing', 'Plumbing', 42.3736, -71.1097, 10);
		INSERT INTO designs (id, title, image_url, is_featured) VALUES
			('d-1', 'Modern kitchen', 'https://img.example.com/d-1.jpg', TRUE),
			('d-2', 'Old bath', 'https://img.example.com/d-2.jpg', FALSE);
	`)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	m := metrics.New()

	geocoder := &MockGeocoder{addr: &geocode.Address{FormattedAddress: "1 Main St, Cambridge, MA 02139, USA", PostalCode: "02139", Provider: "google"}}
	asst := &MockAssistant{}

	srv := NewServer(Deps{
		Geocoder:    geocode.NewService(geocoder, "google", logger, m),
		Locations:   location.NewWriter(db, logger, m),
		Quotes:      quote.NewRepository(db),
		Profiles:    store.NewProfileRepository(db),
		Designs:     store.NewDesignRepository(db),
		Contractors: store.NewContractorRepository(db),
		Assistant:   asst,
		Logger:      logger,
		Metrics:     m,
	})

	return &testEnv{router: srv.Router(), db: db, geocoder: geocoder, assistant: asst}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, target, r)
	require.NoError(t, err)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())

	return out
}

func TestReverseGeocodeAPI(t *testing.T) {
	env := setupServerTest(t)

	w := env.do(t, http.MethodGet, "/api/geocode?lat=42.3736&lng=-71.1097", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "1 Main St, Cambridge, MA 02139, USA", body["formatted_address"])
	assert.InDelta(t, 42.3736, body["latitude"], 1e-9)
	assert.Equal(t, 1, env.geocoder.calls)
}

func TestReverseGeocodeAPIInvalidInput(t *testing.T) {
	env := setupServerTest(t)

	for _, target := range []string{
		"/api/geocode",
		"/api/geocode?lat=abc&lng=-71.1",
		"/api/geocode?lat=42.1",
		"/api/geocode?lat=NaN&lng=1",
	} {
		w := env.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.JSONEq(t, `{"error":"Provide valid lat and lng"}`, w.Body.String())
	}

	assert.Zero(t, env.geocoder.calls, "provider must not be called for invalid input")
}

func TestReverseGeocodeAPIUpstreamFailure(t *testing.T) {
	env := setupServerTest(t)
	env.geocoder.err = &geocode.GeocodingError{Type: geocode.ErrorTypeQuotaExceeded, Message: "over quota"}

	w := env.do(t, http.MethodGet, "/api/geocode?lat=1&lng=2", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"Geocoding failed"}`, w.Body.String())
	assert.Equal(t, 1, env.geocoder.calls)
}

func TestUpdateLocationAPI(t *testing.T) {
	env := setupServerTest(t)

	tests := []struct {
		name     string
		target   string
		body     string
		wantCode int
	}{
		{name: "user updated", target: "/api/users/u-1/location", body: `{"latitude":42.36,"longitude":-71.05}`, wantCode: http.StatusOK},
		{name: "contractor updated with radius", target: "/api/contractors/c-1/location", body: `{"latitude":42.36,"longitude":-71.05,"service_radius_miles":5}`, wantCode: http.StatusOK},
		{name: "unknown user", target: "/api/users/nobody/location", body: `{"latitude":1,"longitude":2}`, wantCode: http.StatusNotFound},
		{name: "out of range", target: "/api/users/u-1/location", body: `{"latitude":120,"longitude":2}`, wantCode: http.StatusBadRequest},
		{name: "negative radius", target: "/api/contractors/c-1/location", body: `{"latitude":1,"longitude":2,"service_radius_miles":-3}`, wantCode: http.StatusBadRequest},
		{name: "missing longitude", target: "/api/users/u-1/location", body: `{"latitude":1}`, wantCode: http.StatusBadRequest},
		{name: "string coordinates", target: "/api/users/u-1/location", body: `{"latitude":"1","longitude":"2"}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPut, tt.target, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())

			if tt.wantCode == http.StatusOK {
				assert.JSONEq(t, `{"success":true}`, w.Body.String())
			}
		})
	}

	var radius float64
	require.NoError(t, env.db.QueryRow(`SELECT service_radius_miles FROM contractors WHERE id = 'c-1'`).Scan(&radius))
	assert.InDelta(t, 5, radius, 0)
}

func TestNearbyContractorsAPI(t *testing.T) {
	env := setupServerTest(t)

	w := env.do(t, http.MethodGet, "/api/contractors/nearby?lat=42.3601&lng=-71.0589&trade=plumbing", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Contractors []store.NearbyContractor `json:"contractors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Contractors, 1)
	assert.Equal(t, "c-1", body.Contractors[0].ID)

	w = env.do(t, http.MethodGet, "/api/contractors/nearby?lat=42.3601&lng=-71.0589&trade=roofing", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"contractors":[]}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/contractors/nearby?lat=91&lng=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/contractors/nearby?lat=1&lng=0&limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateQuoteAPI(t *testing.T) {
	env := setupServerTest(t)

	w := env.do(t, http.MethodPost, "/api/contractors/c-1/quotes",
		`{"description":"Fix a leaking kitchen sink","timeline":"ASAP","zip_code":"02139","sender_email":"hana@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode(t, w)
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "c-1", created["contractor_id"])
	assert.Equal(t, "ASAP", created["timeline"])

	w = env.do(t, http.MethodGet, "/api/contractors/c-1/quotes", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Quotes []quote.Record `json:"quotes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Quotes, 1)
	assert.Equal(t, "hana@example.com", list.Quotes[0].SenderEmail)
}

func TestCreateQuoteAPIRejectsWholeRequest(t *testing.T) {
	env := setupServerTest(t)

	w := env.do(t, http.MethodPost, "/api/contractors/c-1/quotes",
		`{"description":"Too short","timeline":"Soon","zip_code":"02139","sender_name":"Hana"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error      string            `json:"error"`
		Violations []quote.Violation `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Violations, 2)
	assert.Equal(t, "description", body.Violations[0].Field)
	assert.Equal(t, "timeline", body.Violations[1].Field)

	w = env.do(t, http.MethodPost, "/api/contractors/c-1/quotes", `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int
	require.NoError(t, env.db.QueryRow(`SELECT count(*) FROM quote_requests`).Scan(&count))
	assert.Zero(t, count, "rejected requests must not be stored")
}

func TestGetProfileAPI(t *testing.T) {
	env := setupServerTest(t)

	w := env.do(t, http.MethodGet, "/api/profiles/u-2", "")
	require.Equal(t, http.StatusOK, w.Code)

	var profile store.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "Pat Pro", profile.FullName)
	require.NotNil(t, profile.Contractor)
	assert.Equal(t, "Plumbing", profile.Contractor.Trade)

	w = env.do(t, http.MethodGet, "/api/profiles/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeaturedDesignsAPI(t *testing.T) {
	env := setupServerTest(t)

	w := env.do(t, http.MethodGet, "/api/designs/featured", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Designs []store.Design `json:"designs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Designs, 1)
	assert.Equal(t, "d-1", body.Designs[0].ID)

	w = env.do(t, http.MethodGet, "/api/designs/featured?limit=500", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/designs/featured?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatAPI(t *testing.T) {
	env := setupServerTest(t)
	env.assistant.reply = &assistant.Reply{Message: assistant.Message{Role: assistant.RoleAssistant, Content: "Use plumber's tape."}}

	w := env.do(t, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"My pipe leaks"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":{"role":"assistant","content":"Use plumber's tape."}}`, w.Body.String())
	assert.Equal(t, []assistant.Message{{Role: "user", Content: "My pipe leaks"}}, env.assistant.messages)

	w = env.do(t, http.MethodPost, "/api/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantAPIErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "missing key", err: assistant.ErrMissingAPIKey, wantCode: http.StatusInternalServerError},
		{name: "upstream", err: &assistant.GenerationError{Model: "m", Message: "boom"}, wantCode: http.StatusBadGateway},
		{name: "invalid", err: fmt.Errorf("bad: %w", apperr.ErrInvalidInput), wantCode: http.StatusBadRequest},
		{name: "other", err: errors.New("unexpected"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupServerTest(t)
			env.assistant.err = tt.err

			w := env.do(t, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hi"}]}`)
			assert.Equal(t, tt.wantCode, w.Code)

			w = env.do(t, http.MethodPost, "/api/bom", `{"project":"Build a deck"}`)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.NotContains(t, w.Body.String(), assistant.APIKeyEnv)
		})
	}
}

func TestBillOfMaterialsAPI(t *testing.T) {
	env := setupServerTest(t)
	env.assistant.bom = &assistant.BillOfMaterials{
		Title:         "Deck",
		Materials:     []assistant.Material{{Name: "Joist", Quantity: 12, Unit: "each", UnitPrice: 18}},
		EstimatedCost: 216,
		Currency:      "USD",
	}

	w := env.do(t, http.MethodPost, "/api/bom", `{"project":"Build a 10x12 deck"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var bom assistant.BillOfMaterials
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bom))
	assert.Equal(t, *env.assistant.bom, bom)

	w = env.do(t, http.MethodPost, "/api/bom", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupServerTest(t)

	w := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	env.do(t, http.MethodGet, "/api/geocode?lat=1&lng=2", "")

	w = env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `handyman_http_requests_total{method="GET",route="/api/geocode",status="200"} 1`)
	assert.Contains(t, body, `handyman_upstream_requests_total{outcome="ok",provider="google"} 1`)
	assert.True(t, bytes.Contains(w.Body.Bytes(), []byte("go_goroutines")))
}
