package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricechart/internal/config"
	"github.com/sells-group/pricechart/internal/interact"
	"github.com/sells-group/pricechart/internal/model"
	"github.com/sells-group/pricechart/internal/pipeline"
	"github.com/sells-group/pricechart/internal/render"
	"github.com/sells-group/pricechart/internal/source"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:       3000,
			RateLimit:  config.RateLimitConfig{Requests: 100, WindowSecs: 900},
			TrustProxy: true,
		},
		Chart: config.ChartConfig{
			Mode:         "gap",
			HoverProxy:   true,
			Width:        960,
			Height:       480,
			XTickStep:    5,
			YMax:         5,
			MarkerOffset: 0.25,
			HitRadius:    12,
		},
	}
}

func testSource() source.Memory {
	return source.Memory{
		{"year": "2001", "available": "true", "min_price": "0.99", "max_price": "1.29", "notes": "see https://example.com/a", "source_history": "https://example.com/h"},
		{"year": "2000", "available": "true", "min_price": "1.00", "max_price": "1.50"},
		{"year": "2002", "available": "false", "notes": "off menu"},
		{"year": "", "notes": "no year"},
		{"year": "2003", "min_price": "1.19", "max_price": "1.59"},
	}
}

func newTestServer(t *testing.T, src source.Source) http.Handler {
	t.Helper()
	s := New(testConfig(), src)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func failingSource() source.Source {
	return source.Func(func(context.Context) ([]model.RawRecord, error) {
		return nil, source.ErrUnavailable
	})
}

func TestHealth(t *testing.T) {
	rr := do(t, newTestServer(t, testSource()), http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestPrices(t *testing.T) {
	rr := do(t, newTestServer(t, testSource()), http.MethodGet, "/api/prices", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data      []map[string]any `json:"data"`
		UpdatedAt string           `json:"updatedAt"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	require.Len(t, body.Data, 4)
	years := []float64{}
	for _, row := range body.Data {
		years = append(years, row["year"].(float64))
	}
	assert.Equal(t, []float64{2000, 2001, 2002, 2003}, years)

	assert.Equal(t, 0.99, body.Data[1]["minPrice"])
	assert.Nil(t, body.Data[2]["minPrice"])
	assert.Equal(t, false, body.Data[2]["available"])
	assert.Nil(t, body.Data[3]["available"])
	assert.Contains(t, body.Data[0], "sourceRecentPricingAnchors")
	assert.Equal(t, "2024-05-01T12:00:00Z", body.UpdatedAt)
}

func TestPrices_SourceUnavailable(t *testing.T) {
	rr := do(t, newTestServer(t, failingSource()), http.MethodGet, "/api/prices", nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Unable to load CSV data"}`, rr.Body.String())
}

func TestSeries(t *testing.T) {
	h := newTestServer(t, testSource())

	rr := do(t, h, http.MethodGet, "/api/series", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var set model.SeriesSet
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &set))
	assert.Equal(t, model.ModeGap, set.Mode)
	assert.Equal(t, []int{2000, 2001, 2002, 2003}, set.Years)
	assert.Equal(t, []int{2002}, set.MissingYears)
	require.Len(t, set.Series, 3)
	assert.Equal(t, model.SeriesHover, set.Series[0].Name)
	assert.Nil(t, set.Series[1].Points[2].Value)

	rr = do(t, h, http.MethodGet, "/api/series?mode=available&hover=false&range=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	set = model.SeriesSet{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &set))
	assert.Equal(t, []int{2000, 2001, 2003}, set.Years)
	assert.Equal(t, []int{2002}, set.MissingYears)
	names := []string{}
	for _, sr := range set.Series {
		names = append(names, sr.Name)
	}
	assert.Equal(t, []string{model.SeriesMinPrice, model.SeriesMaxPrice, model.SeriesPriceRange}, names)
}

func TestSeries_BadParams(t *testing.T) {
	h := newTestServer(t, testSource())

	rr := do(t, h, http.MethodGet, "/api/series?mode=bars", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "mode must be gap or available")

	rr = do(t, h, http.MethodGet, "/api/series?hover=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "hover must be true or false")
}

func TestSeries_SourceUnavailable(t *testing.T) {
	rr := do(t, newTestServer(t, failingSource()), http.MethodGet, "/api/series", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Unable to load CSV data"}`, rr.Body.String())
}

func TestChartPNG(t *testing.T) {
	rr := do(t, newTestServer(t, testSource()), http.MethodGet, "/api/chart.png?lock=1", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))
}

func TestChartSVG(t *testing.T) {
	rr := do(t, newTestServer(t, testSource()), http.MethodGet, "/api/chart.svg?mode=available", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, render.FormatSVG.ContentType(), rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<svg")
}

func TestChart_Errors(t *testing.T) {
	h := newTestServer(t, testSource())
	rr := do(t, h, http.MethodGet, "/api/chart.png?lock=first", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, newTestServer(t, source.Memory{}), http.MethodGet, "/api/chart.svg", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, newTestServer(t, failingSource()), http.MethodGet, "/api/chart.png", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// pixelOf returns the pixel position of the hover target at index i as the
// server lays the chart out.
func pixelOf(t *testing.T, src source.Source, i int) (float64, float64) {
	t.Helper()
	ds, err := pipeline.Load(context.Background(), src)
	require.NoError(t, err)
	set := ds.Series(pipeline.SeriesOptions(testConfig().Chart))
	c := render.New(set, pipeline.RenderOptions(testConfig().Chart))
	interact.Mount(set, c)
	l, err := c.Layout()
	require.NoError(t, err)

	p, ok := set.PointAt(i)
	require.True(t, ok)
	require.NotNil(t, p.Value)
	x, y := l.Pixel(float64(p.Year), *p.Value)
	return x, y
}

func TestClick_LocksAndUnlocks(t *testing.T) {
	h := newTestServer(t, testSource())
	x, y := pixelOf(t, testSource(), 1)

	body, _ := json.Marshal(ClickRequest{State: interact.Unlocked, X: x, Y: y})
	rr := do(t, h, http.MethodPost, "/api/chart/click", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ClickResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.State.Locked)
	idx, ok := resp.State.Index()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	require.NotNil(t, resp.Year)
	assert.Equal(t, 2001, *resp.Year)
	require.NotNil(t, resp.Tooltip)
	assert.Equal(t, "2001", resp.Tooltip.Title)
	assert.Contains(t, resp.Tooltip.Notes, `<a href="https://example.com/a"`)
	assert.Equal(t, resp.Tooltip.HTML(), resp.HTML)

	// Clicking empty space releases the lock.
	body, _ = json.Marshal(ClickRequest{State: resp.State, X: 1, Y: 1})
	rr = do(t, h, http.MethodPost, "/api/chart/click", body)
	require.Equal(t, http.StatusOK, rr.Code)

	resp = ClickResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.State.Locked)
	assert.Nil(t, resp.State.LockedIndex)
	assert.Nil(t, resp.Tooltip)
	assert.Nil(t, resp.Year)
}

func TestClick_SwitchesLockedPoint(t *testing.T) {
	h := newTestServer(t, testSource())
	x, y := pixelOf(t, testSource(), 3)

	body, _ := json.Marshal(ClickRequest{State: interact.Locked(0), X: x, Y: y})
	rr := do(t, h, http.MethodPost, "/api/chart/click", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ClickResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	idx, ok := resp.State.Index()
	require.True(t, ok)
	assert.Equal(t, 3, idx)
	assert.Equal(t, 2003, *resp.Year)
}

// unalignedSource has years that fall between x ticks at both ends.
func unalignedSource() source.Memory {
	return source.Memory{
		{"year": "2001", "available": "true", "min_price": "0.99", "max_price": "1.29"},
		{"year": "2013", "available": "true", "min_price": "1.00", "max_price": "1.49"},
		{"year": "2024", "available": "true", "min_price": "1.29", "max_price": "2.19"},
	}
}

func TestClick_UnalignedYears(t *testing.T) {
	h := newTestServer(t, unalignedSource())

	for i, year := range []int{2001, 2013, 2024} {
		x, y := pixelOf(t, unalignedSource(), i)
		body, _ := json.Marshal(ClickRequest{State: interact.Unlocked, X: x, Y: y})
		rr := do(t, h, http.MethodPost, "/api/chart/click", body)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp ClickResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		idx, ok := resp.State.Index()
		require.True(t, ok, year)
		assert.Equal(t, i, idx)
		require.NotNil(t, resp.Year)
		assert.Equal(t, year, *resp.Year)
	}
}

func TestHit_ShowsNearestTooltip(t *testing.T) {
	h := newTestServer(t, testSource())
	x, y := pixelOf(t, testSource(), 1)

	rr := do(t, h, http.MethodGet, fmt.Sprintf("/api/chart/hit?x=%f&y=%f", x, y), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HitResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Year)
	assert.Equal(t, 2001, *resp.Year)
	require.NotNil(t, resp.Tooltip)
	assert.Equal(t, resp.Tooltip.HTML(), resp.HTML)
	assert.Contains(t, resp.HTML, `<div class="tooltip-title">2001</div>`)
	assert.Contains(t, resp.HTML, `<a href="https://example.com/a"`)
}

func TestHit_EmptySpaceHidesTooltip(t *testing.T) {
	rr := do(t, newTestServer(t, testSource()), http.MethodGet, "/api/chart/hit?x=1&y=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"year":null,"tooltip":null}`, rr.Body.String())
}

func TestHit_LockedKeepsPinnedPoint(t *testing.T) {
	h := newTestServer(t, testSource())
	x, y := pixelOf(t, testSource(), 1)

	rr := do(t, h, http.MethodGet, fmt.Sprintf("/api/chart/hit?x=%f&y=%f&lock=3", x, y), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HitResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Year)
	assert.Equal(t, 2003, *resp.Year)
}

func TestHit_BadParams(t *testing.T) {
	h := newTestServer(t, testSource())
	for _, target := range []string{
		"/api/chart/hit",
		"/api/chart/hit?x=a&y=1",
		"/api/chart/hit?x=1&y=1&lock=first",
		"/api/chart/hit?x=1&y=1&mode=bars",
	} {
		rr := do(t, h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestHit_SourceUnavailable(t *testing.T) {
	rr := do(t, newTestServer(t, failingSource()), http.MethodGet, "/api/chart/hit?x=1&y=1", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Unable to load CSV data"}`, rr.Body.String())
}

func TestClick_BadBody(t *testing.T) {
	rr := do(t, newTestServer(t, testSource()), http.MethodPost, "/api/chart/click", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClick_SourceUnavailable(t *testing.T) {
	body, _ := json.Marshal(ClickRequest{})
	rr := do(t, newTestServer(t, failingSource()), http.MethodPost, "/api/chart/click", body)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Unable to load CSV data"}`, rr.Body.String())
}

func TestPagesAndStatic(t *testing.T) {
	h := newTestServer(t, testSource())

	rr := do(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "McChicken Price History")

	rr = do(t, h, http.MethodGet, "/about", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "About this chart")

	rr = do(t, h, http.MethodGet, "/app.js", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/chart/click")

	rr = do(t, h, http.MethodGet, "/styles.css", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rr.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	rr := do(t, newTestServer(t, testSource()), http.MethodGet, "/api/health", nil)

	h := rr.Header()
	assert.Contains(t, h.Get("Content-Security-Policy"), "default-src 'self'")
	assert.Contains(t, h.Get("Content-Security-Policy"), "https://cdn.jsdelivr.net")
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", h.Get("Referrer-Policy"))
	assert.Empty(t, h.Get("X-Powered-By"))
	assert.NotEmpty(t, h.Get("X-Request-Id"))
}

func TestRequestID_Propagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr := httptest.NewRecorder()
	newTestServer(t, testSource()).ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-Id"))
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.Server.AllowedOrigins = []string{"https://allowed.example"}
	h := New(cfg, testSource()).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://allowed.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "https://allowed.example", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://other.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisabledWithoutOrigins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://any.example")
	rr := httptest.NewRecorder()
	newTestServer(t, testSource()).ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit_Exhausted(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = config.RateLimitConfig{Requests: 2, WindowSecs: 900}
	h := New(cfg, testSource()).Handler()

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	first := send("203.0.113.7")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send("203.0.113.7").Code)

	third := send("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "0", third.Header().Get("RateLimit-Remaining"))
	assert.NotEmpty(t, third.Header().Get("Retry-After"))
	assert.True(t, strings.Contains(third.Body.String(), "Too many requests"))

	// Another client has its own allowance.
	assert.Equal(t, http.StatusOK, send("198.51.100.4").Code)
}
