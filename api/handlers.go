package api

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"meterdata-pipeline/config"
	"meterdata-pipeline/models"
	"meterdata-pipeline/query"
)

//ErrResponse is the JSON body of every failed request
type ErrResponse struct {
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorText      string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func errBadRequest(err error) render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusBadRequest, StatusText: "Invalid request.", ErrorText: err.Error()}
}

func errUnavailable(err error) render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusServiceUnavailable, StatusText: "Series unavailable.", ErrorText: err.Error()}
}

type seriesResponse struct {
	Granularity string               `json:"granularity"`
	Start       string               `json:"start"`
	End         string               `json:"end"`
	Count       int                  `json:"count"`
	Points      []models.SeriesPoint `json:"points"`
}

type statisticsResponse struct {
	Granularity string           `json:"granularity"`
	Count       int              `json:"count"`
	Statistics  query.Statistics `json:"statistics"`
}

type healthResponse struct {
	Status   string    `json:"status"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`
}

//filterFromRequest reads start, end and granularity. Missing dates default to the span of the loaded series.
func filterFromRequest(r *http.Request, series models.Series) (query.Filter, error) {
	q := r.URL.Query()
	start, end := q.Get("start"), q.Get("end")
	if start == "" || end == "" {
		first, last := series.Span()
		layout := config.GetQueryDateLayout()
		if first.IsZero() {
			first, last = time.Now().UTC(), time.Now().UTC()
		}
		if start == "" {
			start = first.Format(layout)
		}
		if end == "" {
			end = last.Format(layout)
		}
	}
	return query.NewFilter(start, end, q.Get("granularity"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	series, loadedAt := s.snapshot()
	render.JSON(w, r, healthResponse{Status: "ok", Records: len(series), LoadedAt: loadedAt})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	series, _ := s.snapshot()
	f, err := filterFromRequest(r, series)
	if err != nil {
		render.Render(w, r, errBadRequest(err))
		return
	}
	points := query.Select(series, f)
	render.JSON(w, r, seriesResponse{
		Granularity: f.Granularity.String(),
		Start:       f.StartDate.Format(config.GetQueryDateLayout()),
		End:         f.EndDate.Format(config.GetQueryDateLayout()),
		Count:       len(points),
		Points:      points,
	})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	series, _ := s.snapshot()
	f, err := filterFromRequest(r, series)
	if err != nil {
		render.Render(w, r, errBadRequest(err))
		return
	}
	points := query.Select(series, f)
	render.JSON(w, r, statisticsResponse{
		Granularity: f.Granularity.String(),
		Count:       len(points),
		Statistics:  query.Summarize(points, s.price),
	})
}

//handleReport validates the readings inside the selected range. Granularity does not apply.
//Readings loaded from the canonical file span DEFAULT_INTERVAL_MINUTES each, so rate based figures assume that interval.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	series, _ := s.snapshot()
	f, err := filterFromRequest(r, series)
	if err != nil {
		render.Render(w, r, errBadRequest(err))
		return
	}
	render.JSON(w, r, s.validator.Validate(query.InRange(series, f.StartDate, f.EndDate)))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(); err != nil {
		s.log.Error(err)
		render.Render(w, r, errUnavailable(err))
		return
	}
	s.handleHealth(w, r)
}
