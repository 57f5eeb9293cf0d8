// Copyright 2026 The PSGC API Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/psgcapi/psgc/psgc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServerTest(t *testing.T, options Options) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	units, err := psgc.LoadJSON("../psgc/testdata/ncr.json")
	require.NoError(t, err)

	idx, err := psgc.NewIndex(units)
	require.NoError(t, err)

	return NewServer(idx, options).Handler()
}

func get(t *testing.T, router http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decodeUnits(t *testing.T, w *httptest.ResponseRecorder) []UnitResponse {
	t.Helper()

	var units []UnitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &units))

	return units
}

func responseCodes(units []UnitResponse) []string {
	ret := make([]string, len(units))
	for i, u := range units {
		ret[i] = u.Code
	}

	return ret
}

func TestListAPI(t *testing.T) {
	router := setupServerTest(t, Options{})

	tests := []struct {
		name     string
		url      string
		expected []string
	}{
		{"regions", "/api/regions", []string{"13", "01"}},
		{"provinces by path", "/api/provinces/13", []string{"1380", "1381"}},
		{"provinces by query", "/api/provinces?parent=13", []string{"1380", "1381"}},
		{"municipalities", "/api/municipalities/1380", []string{"137501", "137502"}},
		{"barangays", "/api/barangays/137501", []string{"137501001", "137501002"}},
		{"all provinces", "/api/provinces", []string{"1380", "1381", "0128"}},
		{"parent at wrong level", "/api/barangays/13", []string{}},
		{"limit", "/api/municipalities?limit=2", []string{"137501", "137502"}},
		{"offset", "/api/municipalities?offset=3", []string{"012801", "012805"}},
		{"limit and offset", "/api/municipalities?offset=1&limit=1", []string{"137502"}},
		{"offset past end", "/api/regions?offset=10", []string{}},
		{"huge limit after offset", "/api/regions?offset=1&limit=9223372036854775807", []string{"01"}},
		{"huge limit", "/api/regions?limit=9223372036854775807", []string{"13", "01"}},
		{"huge offset", "/api/regions?offset=9223372036854775807&limit=9223372036854775807", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := get(t, router, tc.url)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tc.expected, responseCodes(decodeUnits(t, w)))
		})
	}
}

func TestListAPITotalCount(t *testing.T) {
	router := setupServerTest(t, Options{})

	w := get(t, router, "/api/barangays?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6", w.Header().Get(TotalCountHeader))
	assert.Len(t, decodeUnits(t, w), 1)
}

func TestListAPIEmptyIsArray(t *testing.T) {
	router := setupServerTest(t, Options{})

	w := get(t, router, "/api/barangays/137501001")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListAPIErrors(t *testing.T) {
	router := setupServerTest(t, Options{})

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"unknown parent", "/api/provinces/99", http.StatusNotFound},
		{"negative limit", "/api/regions?limit=-1", http.StatusBadRequest},
		{"non numeric offset", "/api/regions?offset=abc", http.StatusBadRequest},
		{"regions have no parent route", "/api/regions/13", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := get(t, router, tc.url)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestUnitResponseShape(t *testing.T) {
	router := setupServerTest(t, Options{})

	w := get(t, router, "/api/units/137601001")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"code": "137601001",
		"name": "Santo Niño",
		"level": "barangay",
		"parent_code": "137601",
		"full_path": "National Capital Region (NCR) > Pasay City > Parañaque > Santo Niño"
	}`, w.Body.String())

	w = get(t, router, "/api/units/13")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"code": "13",
		"name": "National Capital Region (NCR)",
		"level": "region",
		"parent_code": null,
		"full_path": "National Capital Region (NCR)"
	}`, w.Body.String())
}

func TestUnitAPINotFound(t *testing.T) {
	router := setupServerTest(t, Options{})

	w := get(t, router, "/api/units/999")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, `unit "999" not found`, body["error"])
}

func TestPathAPI(t *testing.T) {
	router := setupServerTest(t, Options{})

	w := get(t, router, "/api/path/137501001")
	require.Equal(t, http.StatusOK, w.Code)

	path := decodeUnits(t, w)
	assert.Equal(t, []string{"13", "1380", "137501", "137501001"}, responseCodes(path))
	assert.Equal(t, psgc.Region, path[0].Level)
	assert.Nil(t, path[0].ParentCode)
	require.NotNil(t, path[3].ParentCode)
	assert.Equal(t, "137501", *path[3].ParentCode)

	w = get(t, router, "/api/path/999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchAPI(t *testing.T) {
	router := setupServerTest(t, Options{})

	tests := []struct {
		name     string
		url      string
		expected []string
	}{
		{"any level", "/api/search?q=manila", []string{"1380"}},
		{"case and accents", "/api/search?q=PARANAQUE", []string{"137601"}},
		{"level query", "/api/search?q=barangay&level=barangay", []string{"137501001", "137501002", "137502001"}},
		{"level path", "/api/search/barangays?q=barangay&limit=1", []string{"137501001"}},
		{"level alias", "/api/search/mun?q=city", []string{"012805"}},
		{"empty query lists level", "/api/search/region", []string{"13", "01"}},
		{"no match", "/api/search?q=cebu", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := get(t, router, tc.url)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tc.expected, responseCodes(decodeUnits(t, w)))
		})
	}
}

func TestSearchAPIInvalidLevel(t *testing.T) {
	router := setupServerTest(t, Options{})

	w := get(t, router, "/api/search?q=x&level=planet")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(t, router, "/api/search/planet?q=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAPI(t *testing.T) {
	router := setupServerTest(t, Options{})

	w := get(t, router, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok", "units": 16}`, w.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	router := setupServerTest(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/regions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRequestID(t *testing.T) {
	router := setupServerTest(t, Options{})

	w := get(t, router, "/healthz")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	router := setupServerTest(t, Options{RateLimit: 1, RateBurst: 1})

	w := get(t, router, "/api/regions")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(t, router, "/api/regions")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name     string
		origins  []string
		origin   string
		expected string
	}{
		{"any origin", []string{"*"}, "https://maps.example.ph", "*"},
		{"listed origin", []string{"https://maps.example.ph"}, "https://maps.example.ph", "https://maps.example.ph"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := setupServerTest(t, Options{AllowedOrigins: tc.origins})

			req := httptest.NewRequest(http.MethodGet, "/api/regions", nil)
			req.Header.Set("Origin", tc.origin)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.expected, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
