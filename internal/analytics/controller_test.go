package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	overview *OverviewAnalytics
	err      error
}

func (s *stubService) GetOverview() (*OverviewAnalytics, error) { return s.overview, s.err }

func performOverview(t *testing.T, svc Service) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/overview", NewController(svc).GetOverview)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/overview", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return recorder, body
}

func TestGetOverview(t *testing.T) {
	svc := &stubService{overview: &OverviewAnalytics{
		Users:      UserCounts{Total: 3, ByStatus: map[string]int{"active": 2, "locked": 1}},
		Categories: CategoryCounts{Total: 15, System: 13, Custom: 2},
		Watchlist:  WatchlistCounts{Entries: 4, DistinctSymbols: 3},
		Prices:     PriceCounts{Rows: 120},
	}}

	recorder, body := performOverview(t, svc)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.EqualValues(t, 200, body["code"])
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	users, ok := data["users"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, users["total"])
	assert.EqualValues(t, 120, data["prices"].(map[string]any)["rows"])
}

func TestGetOverviewFailure(t *testing.T) {
	recorder, body := performOverview(t, &stubService{err: errors.New("boom")})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "获取统计数据失败", body["message"])
}
