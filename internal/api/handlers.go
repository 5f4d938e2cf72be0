package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pricechart/internal/interact"
	"github.com/sells-group/pricechart/internal/model"
	"github.com/sells-group/pricechart/internal/pipeline"
	"github.com/sells-group/pricechart/internal/render"
	"github.com/sells-group/pricechart/internal/series"
)

// loadFailure is the body returned whenever the dataset cannot be read.
const loadFailure = "Unable to load CSV data"

type errorBody struct {
	Error string `json:"error"`
}

type pricesResponse struct {
	Data      []model.CanonicalRow `json:"data"`
	UpdatedAt string               `json:"updatedAt"`
}

type seriesResponse struct {
	model.SeriesSet
	UpdatedAt string `json:"updatedAt"`
}

// ClickRequest carries the client's interaction state and the clicked pixel.
type ClickRequest struct {
	State interact.State `json:"state"`
	X     float64        `json:"x"`
	Y     float64        `json:"y"`
}

// ClickResponse is the state after the click and the pinned tooltip, if any.
type ClickResponse struct {
	State   interact.State         `json:"state"`
	Year    *int                   `json:"year"`
	Tooltip *series.TooltipContent `json:"tooltip"`
	HTML    string                 `json:"html,omitempty"`
}

// HitResponse is the tooltip shown while the pointer rests at a pixel. A
// locked chart keeps showing its pinned point.
type HitResponse struct {
	Year    *int                   `json:"year"`
	Tooltip *series.TooltipContent `json:"tooltip"`
	HTML    string                 `json:"html,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	ds, err := pipeline.Load(r.Context(), s.src)
	if err != nil {
		s.loadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pricesResponse{
		Data:      ds.Rows,
		UpdatedAt: s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	opts, err := s.seriesOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	ds, err := pipeline.Load(r.Context(), s.src)
	if err != nil {
		s.loadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{
		SeriesSet: ds.Series(opts),
		UpdatedAt: s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	format := render.FormatPNG
	if strings.HasSuffix(r.URL.Path, ".svg") {
		format = render.FormatSVG
	}

	opts, err := s.seriesOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	state, err := lockState(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	ds, err := pipeline.Load(r.Context(), s.src)
	if err != nil {
		s.loadError(w, r, err)
		return
	}

	set := ds.Series(opts)
	c := render.New(set, pipeline.RenderOptions(s.cfg.Chart))
	interact.Restore(set, c, state)

	var buf bytes.Buffer
	if err := c.Render(&buf, format); err != nil {
		if errors.Is(err, render.ErrNoData) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "No price data to chart"})
			return
		}
		zap.L().Error("api: render chart", zap.Error(err), zap.String("request_id", RequestIDFrom(r.Context())))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Unable to render chart"})
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}

	opts, err := s.seriesOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	ds, err := pipeline.Load(r.Context(), s.src)
	if err != nil {
		s.loadError(w, r, err)
		return
	}

	set := ds.Series(opts)
	c := render.New(set, pipeline.RenderOptions(s.cfg.Chart))
	ctrl := interact.Restore(set, c, req.State)
	state := ctrl.ClickAt(c, req.X, req.Y)

	resp := ClickResponse{State: state}
	resp.Year, resp.Tooltip, resp.HTML = tooltipOf(c)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "x and y must be numbers"})
		return
	}
	state, err := lockState(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	opts, err := s.seriesOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	ds, err := pipeline.Load(r.Context(), s.src)
	if err != nil {
		s.loadError(w, r, err)
		return
	}

	set := ds.Series(opts)
	c := render.New(set, pipeline.RenderOptions(s.cfg.Chart))
	ctrl := interact.Restore(set, c, state)
	ctrl.Hover(c.Nearest(x, y))

	var resp HitResponse
	resp.Year, resp.Tooltip, resp.HTML = tooltipOf(c)
	writeJSON(w, http.StatusOK, resp)
}

// tooltipOf returns the year, content, and markup of the chart's current
// tooltip. All three are empty when nothing is shown.
func tooltipOf(c *render.Chart) (*int, *series.TooltipContent, string) {
	p, ok := c.Tooltip()
	if !ok {
		return nil, nil, ""
	}
	year := p.Year
	content := series.Tooltip(*p)
	return &year, &content, content.HTML()
}

// lockState reads the optional lock query parameter.
func lockState(r *http.Request) (interact.State, error) {
	raw := r.URL.Query().Get("lock")
	if raw == "" {
		return interact.Unlocked, nil
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return interact.Unlocked, eris.New("lock must be an integer index")
	}
	return interact.Locked(i), nil
}

// seriesOptions starts from the configured chart settings and applies the
// mode, hover, and range query parameters.
func (s *Server) seriesOptions(r *http.Request) (series.Options, error) {
	opts := pipeline.SeriesOptions(s.cfg.Chart)
	q := r.URL.Query()

	if raw := q.Get("mode"); raw != "" {
		mode := model.Mode(raw)
		if !mode.Valid() {
			return opts, eris.New("mode must be gap or available")
		}
		opts.Mode = mode
	}
	for name, dst := range map[string]*bool{"hover": &opts.HoverProxy, "range": &opts.RangeBars} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, eris.Errorf("%s must be true or false", name)
		}
		*dst = v
	}
	return opts, nil
}

func (s *Server) loadError(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("api: load prices",
		zap.Error(err),
		zap.String("request_id", RequestIDFrom(r.Context())),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: loadFailure})
}
