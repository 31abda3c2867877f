package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"plancal/internal/calendar"
	"plancal/internal/ics"
	appLog "plancal/internal/log"
	"plancal/internal/model"
	"plancal/internal/plan"
)

// Server provides a read-only HTTP view of the schedule.
type Server struct {
	svc *plan.Service
	mux *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(svc *plan.Service) *Server {
	s := &Server{
		svc: svc,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// StartServer serves on listen until ctx is canceled, then shuts down
// gracefully.
func StartServer(ctx context.Context, svc *plan.Service, listen string) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           NewServer(svc).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/plans", s.handlePlans)
	s.mux.HandleFunc("GET /api/plans/{date}", s.handlePlan)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePlans returns the whole schedule exactly as it is persisted.
func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	sched, err := s.svc.Schedule(r.Context())
	if err != nil {
		appLog.Error("api plans: load failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}
	body, err := plan.Encode(sched)
	if err != nil {
		appLog.Error("api plans: encode failed", err)
		writeError(w, http.StatusInternalServerError, "failed to encode schedule")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	day, err := s.svc.ViewPlan(r.Context(), date)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, day)
	case errors.Is(err, plan.ErrUnknownDate):
		writeError(w, http.StatusNotFound, "no plan for "+date)
	default:
		appLog.Error("api plan: load failed", err, "date", date)
		writeError(w, http.StatusInternalServerError, "failed to load schedule")
	}
}

// calendarResponse is the JSON response shape for /api/calendar.
type calendarResponse struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Weeks []weekDTO `json:"weeks"`
}

type weekDTO struct {
	Label string   `json:"label"`
	Text  string   `json:"text"`
	Days  []dayDTO `json:"days"`
}

type dayDTO struct {
	Day  int            `json:"day"`
	Date string         `json:"date"`
	Past bool           `json:"past"`
	Plan *model.DayPlan `json:"plan"`
}

// handleCalendar returns the month view.
//
// GET /api/calendar?month=2024-06
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = s.svc.Today().Format("2006-01")
	}

	view, err := s.svc.Calendar(r.Context(), month)
	switch {
	case err == nil:
	case errors.Is(err, calendar.ErrInvalidFormat), errors.Is(err, calendar.ErrInvalidMonth):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		appLog.Error("api calendar: build failed", err, "month", month)
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}

	resp := calendarResponse{
		Year:  view.Year,
		Month: int(view.Month),
		Weeks: make([]weekDTO, 0, len(view.Weeks)),
	}
	for _, wk := range view.Weeks {
		dto := weekDTO{Label: wk.Label(), Text: wk.Text(), Days: make([]dayDTO, 0, len(wk.Days))}
		for _, d := range wk.Days {
			dto.Days = append(dto.Days, dayDTO{Day: d.Day, Date: d.Date, Past: d.Past, Plan: d.Plan})
		}
		resp.Weeks = append(resp.Weeks, dto)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	sched, err := s.svc.Schedule(r.Context())
	if err != nil {
		appLog.Error("api ics: load failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load schedule")
		return
	}
	body := ics.Export(sched, s.svc.Location(), s.svc.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
