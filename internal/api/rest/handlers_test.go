package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldside/rdysl/internal/parse"
	"github.com/fieldside/rdysl/internal/summary"
)

func testEngine(records []parse.RawRecord, scrapeErr error) *summary.Engine {
	return summary.NewEngine(func(ctx context.Context) ([]parse.RawRecord, error) {
		return records, scrapeErr
	}, time.Minute)
}

func callupRecords(names ...string) []parse.RawRecord {
	records := make([]parse.RawRecord, len(names))
	for i, name := range names {
		records[i] = parse.RawRecord{PlayerName: name, RecordType: "Callup: Missed Game"}
	}
	return records
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, target string) (*httptest.ResponseRecorder, scrapeResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var body scrapeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec, body
}

func TestGetCallups(t *testing.T) {
	h := NewHandler(testEngine(callupRecords("Jane Smith", "Jane Smith"), nil), nil)

	rec, body := doRequest(t, h.GetCallups, "GET", "/api/v1/callups")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)
	require.Equal(t, 2, body.TotalRecords)
	require.Len(t, body.Summary, 1)
	require.Equal(t, "Jane Smith", body.Summary[0].PlayerName)
	require.NotNil(t, body.LastUpdated)
}

func TestGetCallupsSearchFilter(t *testing.T) {
	h := NewHandler(testEngine(callupRecords("Jane Smith", "John Doe"), nil), nil)

	_, body := doRequest(t, h.GetCallups, "GET", "/api/v1/callups?search=doe")
	require.True(t, body.Success)
	require.Len(t, body.Summary, 1)
	require.Equal(t, "John Doe", body.Summary[0].PlayerName)
}

// A scrape failure crosses the boundary as {success: false}, never a panic
// or raw error.
func TestGetCallupsScrapeFailure(t *testing.T) {
	h := NewHandler(testEngine(nil, errors.New("login rejected")), nil)

	rec, body := doRequest(t, h.GetCallups, "GET", "/api/v1/callups")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.False(t, body.Success)
	require.Contains(t, body.Error, "login rejected")
}

func TestGetCachedCallupsEmpty(t *testing.T) {
	h := NewHandler(testEngine(callupRecords("Jane Smith"), nil), nil)

	rec, body := doRequest(t, h.GetCachedCallups, "GET", "/api/v1/callups/cached")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, body.Success)
}

func TestGetCachedCallupsAfterScrape(t *testing.T) {
	engine := testEngine(callupRecords("Jane Smith"), nil)
	h := NewHandler(engine, nil)

	_, err := engine.Refresh(context.Background())
	require.NoError(t, err)

	rec, body := doRequest(t, h.GetCachedCallups, "GET", "/api/v1/callups/cached")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)
	require.Equal(t, 1, body.TotalRecords)
}

func TestRefreshCallups(t *testing.T) {
	h := NewHandler(testEngine(callupRecords("Jane Smith"), nil), nil)

	rec, body := doRequest(t, h.RefreshCallups, "POST", "/api/v1/callups/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, body.Success)
}

func TestHealthCheck(t *testing.T) {
	h := NewHandler(testEngine(nil, nil), nil)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "healthy", body["status"])
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest("GET", "/api/v1/callups", nil)
	rec := httptest.NewRecorder()
	RecoveryMiddleware(panicking).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
