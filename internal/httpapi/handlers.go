package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TheCacophonyProject/battery-runtime/battery"
	"github.com/TheCacophonyProject/battery-runtime/curves"
	"github.com/TheCacophonyProject/battery-runtime/internal/config"
	"github.com/TheCacophonyProject/battery-runtime/internal/estimate"
	"github.com/TheCacophonyProject/battery-runtime/internal/render"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxRequestBytes = 1 << 16

// Server serves runtime estimates over HTTP.
type Server struct {
	store   *curves.Store
	conf    *config.Config
	log     logrus.FieldLogger
	version string
	router  *mux.Router
}

// NewServer builds the router. Every route is under /api and rate limited per client IP.
func NewServer(store *curves.Store, conf *config.Config, log logrus.FieldLogger, version string) *Server {
	s := &Server{
		store:   store,
		conf:    conf,
		log:     log,
		version: version,
		router:  mux.NewRouter(),
	}

	limiter := NewIPRateLimiter(rate.Limit(conf.RateLimit), conf.RateBurst)
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/health", s.getHealth).Methods("GET")
	api.HandleFunc("/chemistries", s.getChemistries).Methods("GET")
	api.HandleFunc("/curves", s.getCurves).Methods("GET")
	api.HandleFunc("/estimate", s.postEstimate).Methods("POST")
	api.HandleFunc("/estimate/pdf", s.postEstimatePDF).Methods("POST")
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusForError maps estimation errors to a response code.
func statusForError(err error) int {
	var invalid *battery.InvalidParameterError
	var gap *battery.InterpolationGapError
	var missing *curves.MissingCurveError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, battery.ErrZeroConsumption), errors.As(err, &gap), errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	CurveChecksum string `json:"curve_checksum"`
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       s.version,
		CurveChecksum: s.store.Table().ChecksumString(),
	})
}

type chemistryResponse struct {
	Name        string                   `json:"name"`
	DisplayName string                   `json:"display_name"`
	Profile     battery.ChemistryProfile `json:"profile"`
}

func (s *Server) getChemistries(w http.ResponseWriter, r *http.Request) {
	var out []chemistryResponse
	for _, c := range battery.Chemistries {
		profile, err := c.Profile()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, chemistryResponse{string(c), c.DisplayName(), profile})
	}
	writeJSON(w, http.StatusOK, out)
}

type curveResponse struct {
	Name           string               `json:"name"`
	Chemistry      battery.Chemistry    `json:"chemistry"`
	CurrentLimitMA float64              `json:"current_limit_ma"`
	Points         []battery.CurvePoint `json:"points"`
}

type curvesResponse struct {
	Checksum string          `json:"checksum"`
	Curves   []curveResponse `json:"curves"`
}

func (s *Server) getCurves(w http.ResponseWriter, r *http.Request) {
	table := s.store.Table()
	out := curvesResponse{Checksum: table.ChecksumString()}
	for _, k := range table.Keys() {
		points, err := table.Curve(k.Chemistry, k.CurrentLimitMA)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out.Curves = append(out.Curves, curveResponse{k.String(), k.Chemistry, k.CurrentLimitMA, points})
	}
	writeJSON(w, http.StatusOK, out)
}

// compute decodes the request body and runs the estimate. On failure the error response has
// been written and ok is false.
func (s *Server) compute(w http.ResponseWriter, r *http.Request) (render.Report, bool) {
	var req estimate.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return render.Report{}, false
	}

	report, err := estimate.Compute(req.WithDefaults(s.conf), s.store.Table(), s.log)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			s.log.Error("error computing estimate: ", err)
		}
		writeError(w, status, render.ErrorMessage(err))
		return render.Report{}, false
	}

	if s.conf.ReportEvents {
		if err := estimate.ReportEvent(report); err != nil {
			s.log.Error("error reporting event: ", err)
		}
	}
	return report, true
}

func (s *Server) postEstimate(w http.ResponseWriter, r *http.Request) {
	report, ok := s.compute(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := render.JSON(w, report); err != nil {
		s.log.Error("error writing estimate: ", err)
	}
}

func (s *Server) postEstimatePDF(w http.ResponseWriter, r *http.Request) {
	report, ok := s.compute(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"battery-runtime-"+report.ID+".pdf\"")
	if err := render.PDF(w, report); err != nil {
		s.log.Error("error writing pdf: ", err)
	}
}
