// Package api exposes HTTP handlers for the planner service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/planner/internal/analytics"
	"example.com/planner/internal/auth"
	"example.com/planner/internal/domain"
	"example.com/planner/internal/persistence"
	"example.com/planner/internal/planner"
)

// Handler coordinates HTTP requests with the planner service.
type Handler struct {
	service *planner.Service
}

// NewHandler builds a Handler.
func NewHandler(service *planner.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activitySubtree)
	mux.HandleFunc("/v1/schedule", h.schedule)
	mux.HandleFunc("/v1/schedule/today", h.scheduleToday)
	mux.HandleFunc("/v1/reports/weekly", h.weeklyReport)
	mux.HandleFunc("/v1/reports/compare", h.compareWeeks)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// activitySubtree dispatches /v1/activities/{id} and its subresources.
func (h *Handler) activitySubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.getActivity(w, r, id)
		case http.MethodPut:
			h.updateActivity(w, r, id)
		case http.MethodDelete:
			h.deleteActivity(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		}
		return
	}

	switch parts[1] {
	case "active":
		h.setActive(w, r, id)
	case "toggle":
		h.toggleStatus(w, r, id)
	case "status":
		h.markStatus(w, r, id)
	case "history":
		h.history(w, r, id)
	case "streak":
		h.streak(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	if !h.requireScope(w, r, auth.ScopePlannerWrite) {
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", validationDetail(err))
		return
	}

	activity, err := h.service.CreateActivity(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	if !h.requireScope(w, r, auth.ScopePlannerRead, auth.ScopePlannerWrite) {
		return
	}

	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	activities, err := h.service.ListActivities(r.Context(), includeInactive)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{Items: items})
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id string) {
	if !h.requireScope(w, r, auth.ScopePlannerRead, auth.ScopePlannerWrite) {
		return
	}

	activity, err := h.service.GetActivity(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) updateActivity(w http.ResponseWriter, r *http.Request, id string) {
	if !h.requireScope(w, r, auth.ScopePlannerWrite) {
		return
	}

	var req UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", validationDetail(err))
		return
	}

	activity, err := h.service.UpdateActivity(r.Context(), id, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request, id string) {
	if !h.requireScope(w, r, auth.ScopePlannerWrite) {
		return
	}

	if err := h.service.DeleteActivity(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopePlannerWrite) {
		return
	}

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	activity, err := h.service.SetActive(r.Context(), id, req.Active)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) toggleStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopePlannerWrite) {
		return
	}

	date, err := h.dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid date parameter")
		return
	}

	record, err := h.service.ToggleStatus(r.Context(), id, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordView(record))
}

func (h *Handler) markStatus(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopePlannerWrite) {
		return
	}

	var req MarkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", validationDetail(err))
		return
	}

	date := h.service.Today()
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid date format, want YYYY-MM-DD")
			return
		}
	}

	record, err := h.service.MarkStatus(r.Context(), id, date, status, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordView(record))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopePlannerRead, auth.ScopePlannerWrite) {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	records, next, err := h.service.History(r.Context(), id, cursor, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]StatusRecordView, 0, len(records))
	for _, rec := range records {
		items = append(items, toRecordView(rec))
	}
	writeJSON(w, http.StatusOK, HistoryResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) streak(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopePlannerRead, auth.ScopePlannerWrite) {
		return
	}

	streak, err := h.service.Streak(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StreakResponse{ActivityID: id, Streak: streak})
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopePlannerRead, auth.ScopePlannerWrite) {
		return
	}

	date, err := h.dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid date parameter")
		return
	}

	h.writeSchedule(w, r, date)
}

func (h *Handler) scheduleToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopePlannerRead, auth.ScopePlannerWrite) {
		return
	}

	h.writeSchedule(w, r, h.service.Today())
}

func (h *Handler) writeSchedule(w http.ResponseWriter, r *http.Request, date time.Time) {
	scheduled, err := h.service.ScheduleFor(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]ScheduledView, 0, len(scheduled))
	for _, entry := range scheduled {
		items = append(items, ScheduledView{
			Activity: toActivityView(entry.Activity),
			Date:     entry.Date.Format("2006-01-02"),
			Status:   string(entry.Status),
		})
	}
	writeJSON(w, http.StatusOK, ScheduleResponse{Date: date.Format("2006-01-02"), Items: items})
}

func (h *Handler) weeklyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopePlannerRead, auth.ScopePlannerWrite) {
		return
	}

	date, err := h.dateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid date parameter")
		return
	}

	report, err := h.service.WeeklyReport(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekReportView(report))
}

func (h *Handler) compareWeeks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.requireScope(w, r, auth.ScopePlannerRead, auth.ScopePlannerWrite) {
		return
	}

	current, err := h.dateParam(r, "current")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid current parameter")
		return
	}
	previous, err := h.dateParam(r, "previous")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid previous parameter")
		return
	}
	if r.URL.Query().Get("previous") == "" {
		previous = current.AddDate(0, 0, -7)
	}

	comparison, err := h.service.CompareWeeks(r.Context(), current, previous)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ComparisonView{
		Current:  toReportView(comparison.Current),
		Previous: toReportView(comparison.Previous),
		Change:   comparison.Change,
		Improved: comparison.Improved,
	})
}

// requireScope resolves claims and checks that at least one scope is present.
func (h *Handler) requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	for _, scope := range scopes {
		if claims.HasScope(scope) {
			return true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
	return false
}

// dateParam parses a YYYY-MM-DD query parameter, defaulting to today.
func (h *Handler) dateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return h.service.Today(), nil
	}
	return time.Parse("2006-01-02", raw)
}

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	StartTime   string `json:"start_time"`
	DurationMin int    `json:"duration_min"`
	Recurrence  string `json:"recurrence"`
	Location    string `json:"location"`
	IsOutdoor   bool   `json:"is_outdoor"`
}

func (r CreateActivityRequest) toInput() (planner.CreateActivityInput, error) {
	if strings.TrimSpace(r.Title) == "" {
		return planner.CreateActivityInput{}, domain.Invalidf("title is required")
	}
	category, err := domain.ParseCategory(r.Category)
	if err != nil {
		return planner.CreateActivityInput{}, err
	}
	startTime, err := domain.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return planner.CreateActivityInput{}, err
	}
	recurrence, err := domain.ParseRecurrence(r.Recurrence)
	if err != nil {
		return planner.CreateActivityInput{}, err
	}
	if err := domain.ValidateDuration(r.DurationMin); err != nil {
		return planner.CreateActivityInput{}, err
	}
	return planner.CreateActivityInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    category,
		StartTime:   startTime,
		DurationMin: r.DurationMin,
		Recurrence:  recurrence,
		Location:    r.Location,
		IsOutdoor:   r.IsOutdoor,
	}, nil
}

// UpdateActivityRequest patches an activity; absent fields are left untouched.
type UpdateActivityRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	StartTime   *string `json:"start_time"`
	DurationMin *int    `json:"duration_min"`
	Recurrence  *string `json:"recurrence"`
	Location    *string `json:"location"`
	IsOutdoor   *bool   `json:"is_outdoor"`
}

func (r UpdateActivityRequest) toInput() (planner.UpdateActivityInput, error) {
	input := planner.UpdateActivityInput{
		Title:       r.Title,
		Description: r.Description,
		DurationMin: r.DurationMin,
		Location:    r.Location,
		IsOutdoor:   r.IsOutdoor,
	}
	if r.Category != nil {
		category, err := domain.ParseCategory(*r.Category)
		if err != nil {
			return planner.UpdateActivityInput{}, err
		}
		input.Category = &category
	}
	if r.StartTime != nil {
		startTime, err := domain.ParseTimeOfDay(*r.StartTime)
		if err != nil {
			return planner.UpdateActivityInput{}, err
		}
		input.StartTime = &startTime
	}
	if r.Recurrence != nil {
		recurrence, err := domain.ParseRecurrence(*r.Recurrence)
		if err != nil {
			return planner.UpdateActivityInput{}, err
		}
		input.Recurrence = &recurrence
	}
	return input, nil
}

// SetActiveRequest enables or disables an activity.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// MarkStatusRequest sets an occurrence status. Date defaults to today.
type MarkStatusRequest struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Note   string `json:"note"`
}

// ActivityView exposes full details about an activity.
type ActivityView struct {
	ActivityID  string    `json:"activity_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	StartTime   string    `json:"start_time"`
	DurationMin int       `json:"duration_min"`
	Recurrence  string    `json:"recurrence"`
	Location    string    `json:"location,omitempty"`
	IsOutdoor   bool      `json:"is_outdoor"`
	IsActive    bool      `json:"is_active"`
	AnchorDate  string    `json:"anchor_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items []ActivityView `json:"items"`
}

// StatusRecordView exposes one ledger entry.
type StatusRecordView struct {
	RecordID   int64     `json:"record_id"`
	ActivityID string    `json:"activity_id"`
	Date       string    `json:"date"`
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// HistoryResponse pages through the surviving record per occurrence date.
type HistoryResponse struct {
	Items      []StatusRecordView `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// StreakResponse reports the consecutive-done count for one activity.
type StreakResponse struct {
	ActivityID string `json:"activity_id"`
	Streak     int    `json:"streak"`
}

// ScheduledView pairs a due activity with its occurrence status.
type ScheduledView struct {
	Activity ActivityView `json:"activity"`
	Date     string       `json:"date"`
	Status   string       `json:"status"`
}

// ScheduleResponse lists the activities due on a date.
type ScheduleResponse struct {
	Date  string          `json:"date"`
	Items []ScheduledView `json:"items"`
}

// RateView exposes a done/total bucket with its completion rate.
type RateView struct {
	Done  int `json:"done"`
	Total int `json:"total"`
	Rate  int `json:"rate"`
}

// ReportView is the weekly aggregate.
type ReportView struct {
	WeekStart      string              `json:"week_start"`
	WeekEnd        string              `json:"week_end"`
	Total          int                 `json:"total"`
	Done           int                 `json:"done"`
	Missed         int                 `json:"missed"`
	Partial        int                 `json:"partial"`
	Rescheduled    int                 `json:"rescheduled"`
	CompletionRate int                 `json:"completion_rate"`
	ByCategory     map[string]RateView `json:"by_category"`
	ByDay          map[string]RateView `json:"by_day"`
	BestDay        string              `json:"best_day,omitempty"`
	WorstDay       string              `json:"worst_day,omitempty"`
}

// StreakView is one entry in the weekly report's streak list.
type StreakView struct {
	ActivityID string `json:"activity_id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Streak     int    `json:"streak"`
}

// WeekReportView merges the weekly aggregate with streaks and insights.
type WeekReportView struct {
	ReportView
	Streaks  []StreakView `json:"streaks"`
	Insights []string     `json:"insights"`
}

// ComparisonView diffs two weekly reports.
type ComparisonView struct {
	Current  ReportView `json:"current"`
	Previous ReportView `json:"previous"`
	Change   int        `json:"change"`
	Improved bool       `json:"improved"`
}

func toActivityView(activity domain.Activity) ActivityView {
	return ActivityView{
		ActivityID:  activity.ID,
		Title:       activity.Title,
		Description: activity.Description,
		Category:    string(activity.Category),
		StartTime:   activity.StartTime.String(),
		DurationMin: activity.DurationMin,
		Recurrence:  string(activity.Recurrence),
		Location:    activity.Location,
		IsOutdoor:   activity.IsOutdoor,
		IsActive:    activity.IsActive,
		AnchorDate:  activity.AnchorDate().Format("2006-01-02"),
		CreatedAt:   activity.CreatedAt,
		UpdatedAt:   activity.UpdatedAt,
	}
}

func toRecordView(rec domain.StatusRecord) StatusRecordView {
	return StatusRecordView{
		RecordID:   rec.ID,
		ActivityID: rec.ActivityID,
		Date:       rec.Date.Format("2006-01-02"),
		Status:     string(rec.Status),
		Note:       rec.Note,
		RecordedAt: rec.RecordedAt,
	}
}

func toReportView(report analytics.Report) ReportView {
	view := ReportView{
		WeekStart:      report.WeekStart.Format("2006-01-02"),
		WeekEnd:        report.WeekEnd.Format("2006-01-02"),
		Total:          report.Total,
		Done:           report.Done,
		Missed:         report.Missed,
		Partial:        report.Partial,
		Rescheduled:    report.Rescheduled,
		CompletionRate: report.CompletionRate,
		ByCategory:     make(map[string]RateView, len(report.ByCategory)),
		ByDay:          make(map[string]RateView, len(report.ByDay)),
		BestDay:        report.BestDay,
		WorstDay:       report.WorstDay,
	}
	for category, stat := range report.ByCategory {
		view.ByCategory[string(category)] = RateView(stat)
	}
	for day, stat := range report.ByDay {
		view.ByDay[day] = RateView(stat)
	}
	return view
}

func toWeekReportView(report *planner.WeekReport) WeekReportView {
	streaks := make([]StreakView, 0, len(report.Streaks))
	for _, streak := range report.Streaks {
		streaks = append(streaks, StreakView{
			ActivityID: streak.ActivityID,
			Title:      streak.Title,
			Category:   string(streak.Category),
			Streak:     streak.Streak,
		})
	}
	insights := report.Insights
	if insights == nil {
		insights = []string{}
	}
	return WeekReportView{
		ReportView: toReportView(report.Report),
		Streaks:    streaks,
		Insights:   insights,
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", validationDetail(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// validationDetail strips the sentinel prefix so clients see only the detail.
func validationDetail(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
