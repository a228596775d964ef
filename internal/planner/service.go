// Package planner orchestrates the core components behind the API: activity
// CRUD against the repository, status mutations through the ledger, and
// weekly report composition. The service loads fully materialized data and
// hands it to the pure schedule/ledger/analytics packages.
package planner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/planner/internal/analytics"
	"example.com/planner/internal/clock"
	"example.com/planner/internal/domain"
	"example.com/planner/internal/ledger"
	"example.com/planner/internal/schedule"
)

// ActivityRepository captures activity persistence operations. Get returns
// nil without error when the activity does not exist.
type ActivityRepository interface {
	Create(ctx context.Context, activity domain.Activity) error
	Update(ctx context.Context, activity domain.Activity) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Activity, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Activity, error)
}

// StatusRepository persists the append-only status record log.
type StatusRepository interface {
	Append(ctx context.Context, record domain.StatusRecord) (domain.StatusRecord, error)
	ByActivity(ctx context.Context, activityID string) ([]domain.StatusRecord, error)
	ByDateRange(ctx context.Context, start, end time.Time) ([]domain.StatusRecord, error)
}

// WeatherSource materializes a weather snapshot for a date range. Optional;
// only the insight generator consumes it.
type WeatherSource interface {
	Snapshot(ctx context.Context, location string, start, end time.Time) (analytics.WeatherSnapshot, error)
}

// Service wires repositories, clock, and the pure computation core.
type Service struct {
	activities ActivityRepository
	statuses   StatusRepository
	clock      clock.Clock
	weather    WeatherSource
	insightCfg analytics.InsightConfig
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithWeather attaches a weather source for weather-correlated insights.
func WithWeather(source WeatherSource) Option {
	return func(s *Service) {
		s.weather = source
	}
}

// WithInsightConfig overrides insight thresholds and display settings.
func WithInsightConfig(cfg analytics.InsightConfig) Option {
	return func(s *Service) {
		s.insightCfg = cfg
	}
}

// NewService constructs a Service.
func NewService(activities ActivityRepository, statuses StatusRepository, clk clock.Clock, opts ...Option) *Service {
	s := &Service{
		activities: activities,
		statuses:   statuses,
		clock:      clk,
		insightCfg: analytics.DefaultInsightConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateActivityInput carries a validated activity definition from the API
// layer.
type CreateActivityInput struct {
	Title       string
	Description string
	Category    domain.Category
	StartTime   domain.TimeOfDay
	DurationMin int
	Recurrence  domain.Recurrence
	Location    string
	IsOutdoor   bool
}

// CreateActivity validates and persists a new activity. The creation date
// becomes the recurrence anchor.
func (s *Service) CreateActivity(ctx context.Context, input CreateActivityInput) (*domain.Activity, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, domain.Invalidf("title is required")
	}
	if err := domain.ValidateDuration(input.DurationMin); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	activity := domain.Activity{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    input.Category,
		StartTime:   input.StartTime,
		DurationMin: input.DurationMin,
		Recurrence:  input.Recurrence,
		Location:    input.Location,
		IsOutdoor:   input.IsOutdoor,
		IsActive:    true,
		Anchor:      s.clock.Today(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// UpdateActivityInput patches an activity; nil fields are left untouched.
type UpdateActivityInput struct {
	Title       *string
	Description *string
	Category    *domain.Category
	StartTime   *domain.TimeOfDay
	DurationMin *int
	Recurrence  *domain.Recurrence
	Location    *string
	IsOutdoor   *bool
}

// UpdateActivity applies a partial update.
func (s *Service) UpdateActivity(ctx context.Context, id string, input UpdateActivityInput) (*domain.Activity, error) {
	activity, err := s.getActivity(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, domain.Invalidf("title is required")
		}
		activity.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		activity.Description = *input.Description
	}
	if input.Category != nil {
		activity.Category = *input.Category
	}
	if input.StartTime != nil {
		activity.StartTime = *input.StartTime
	}
	if input.DurationMin != nil {
		if err := domain.ValidateDuration(*input.DurationMin); err != nil {
			return nil, err
		}
		activity.DurationMin = *input.DurationMin
	}
	if input.Recurrence != nil {
		activity.Recurrence = *input.Recurrence
	}
	if input.Location != nil {
		activity.Location = *input.Location
	}
	if input.IsOutdoor != nil {
		activity.IsOutdoor = *input.IsOutdoor
	}
	activity.UpdatedAt = s.clock.Now()

	if err := s.activities.Update(ctx, *activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// DeleteActivity removes the definition. Status records survive for
// historical analytics; there is no cascade.
func (s *Service) DeleteActivity(ctx context.Context, id string) error {
	if _, err := s.getActivity(ctx, id); err != nil {
		return err
	}
	return s.activities.Delete(ctx, id)
}

// SetActive enables or disables an activity. Disabled activities resolve to
// no occurrences and drop out of due checks and future reports, but their
// history stays queryable.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domain.Activity, error) {
	activity, err := s.getActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	activity.IsActive = active
	activity.UpdatedAt = s.clock.Now()
	if err := s.activities.Update(ctx, *activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// GetActivity fetches by ID.
func (s *Service) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	return s.getActivity(ctx, id)
}

// ListActivities returns activities ordered by start time.
func (s *Service) ListActivities(ctx context.Context, includeInactive bool) ([]domain.Activity, error) {
	return s.activities.List(ctx, includeInactive)
}

// Today reports the clock's current date, midnight-normalized.
func (s *Service) Today() time.Time {
	return s.clock.Today()
}

// ScheduledActivity pairs a due activity with its current occurrence status.
type ScheduledActivity struct {
	Activity domain.Activity
	Date     time.Time
	Status   domain.Status
}

// ScheduleFor resolves which activities are due on a date and their current
// statuses.
func (s *Service) ScheduleFor(ctx context.Context, date time.Time) ([]ScheduledActivity, error) {
	date = domain.DateOf(date)
	activities, err := s.activities.List(ctx, false)
	if err != nil {
		return nil, err
	}
	records, err := s.statuses.ByDateRange(ctx, date, date)
	if err != nil {
		return nil, err
	}

	out := make([]ScheduledActivity, 0, len(activities))
	for _, activity := range activities {
		due, err := schedule.IsDue(activity, date)
		if err != nil {
			return nil, err
		}
		if !due {
			continue
		}
		out = append(out, ScheduledActivity{
			Activity: activity,
			Date:     date,
			Status:   ledger.CurrentStatus(records, activity.ID, date),
		})
	}
	return out, nil
}

// ScheduleToday is ScheduleFor on the clock's current date.
func (s *Service) ScheduleToday(ctx context.Context) ([]ScheduledActivity, error) {
	return s.ScheduleFor(ctx, s.clock.Today())
}

// ResolveDue reports whether the activity has an occurrence on the date.
func (s *Service) ResolveDue(ctx context.Context, id string, date time.Time) (bool, error) {
	activity, err := s.getActivity(ctx, id)
	if err != nil {
		return false, err
	}
	return schedule.IsDue(*activity, date)
}

// ToggleStatus flips an occurrence between pending and done by appending a
// record with the opposite of the currently resolved status. Toggling an
// occurrence in any other state is rejected.
func (s *Service) ToggleStatus(ctx context.Context, id string, date time.Time) (domain.StatusRecord, error) {
	activity, err := s.getActivity(ctx, id)
	if err != nil {
		return domain.StatusRecord{}, err
	}
	date = domain.DateOf(date)
	if err := s.requireDue(*activity, date); err != nil {
		return domain.StatusRecord{}, err
	}

	records, err := s.statuses.ByActivity(ctx, id)
	if err != nil {
		return domain.StatusRecord{}, err
	}
	next, err := ledger.Toggle(ledger.CurrentStatus(records, id, date))
	if err != nil {
		return domain.StatusRecord{}, err
	}

	return s.statuses.Append(ctx, domain.StatusRecord{
		ActivityID: id,
		Date:       date,
		Status:     next,
		RecordedAt: s.clock.Now(),
	})
}

// MarkStatus sets an occurrence's status directly to any of the defined
// states. Unlike toggle, any state is reachable from any other.
func (s *Service) MarkStatus(ctx context.Context, id string, date time.Time, status domain.Status, note string) (domain.StatusRecord, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return domain.StatusRecord{}, err
	}
	activity, err := s.getActivity(ctx, id)
	if err != nil {
		return domain.StatusRecord{}, err
	}
	date = domain.DateOf(date)
	if err := s.requireDue(*activity, date); err != nil {
		return domain.StatusRecord{}, err
	}

	return s.statuses.Append(ctx, domain.StatusRecord{
		ActivityID: id,
		Date:       date,
		Status:     status,
		Note:       note,
		RecordedAt: s.clock.Now(),
	})
}

// CurrentStatus resolves the latest status of one occurrence, pending when
// unrecorded.
func (s *Service) CurrentStatus(ctx context.Context, id string, date time.Time) (domain.Status, error) {
	if _, err := s.getActivity(ctx, id); err != nil {
		return "", err
	}
	records, err := s.statuses.ByActivity(ctx, id)
	if err != nil {
		return "", err
	}
	return ledger.CurrentStatus(records, id, date), nil
}

// History returns the surviving status record per occurrence date, ascending,
// with cursor pagination. History works for disabled and deleted activities'
// leftover records as long as the activity still exists.
func (s *Service) History(ctx context.Context, id string, cursor *domain.Cursor, limit int) ([]domain.StatusRecord, *domain.Cursor, error) {
	if _, err := s.getActivity(ctx, id); err != nil {
		return nil, nil, err
	}
	records, err := s.statuses.ByActivity(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	history := ledger.History(records)
	if cursor != nil {
		next := len(history)
		for i, rec := range history {
			if rec.Date.After(cursor.Date) {
				next = i
				break
			}
		}
		history = history[next:]
	}
	if limit > 0 && len(history) > limit {
		history = history[:limit]
		last := history[len(history)-1]
		return history, &domain.Cursor{Date: last.Date, ID: last.ID}, nil
	}
	return history, nil, nil
}

// ActivityStreak pairs an activity with its current consecutive-done count.
type ActivityStreak struct {
	ActivityID string
	Title      string
	Category   domain.Category
	Streak     int
}

// Streak computes the current consecutive-done count for one activity.
func (s *Service) Streak(ctx context.Context, id string) (int, error) {
	activity, err := s.getActivity(ctx, id)
	if err != nil {
		return 0, err
	}
	records, err := s.statuses.ByActivity(ctx, id)
	if err != nil {
		return 0, err
	}
	return analytics.Streak(*activity, records, s.clock.Today())
}

// Streaks computes streaks for all active activities, longest first.
func (s *Service) Streaks(ctx context.Context) ([]ActivityStreak, error) {
	activities, err := s.activities.List(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityStreak, 0, len(activities))
	for _, activity := range activities {
		records, err := s.statuses.ByActivity(ctx, activity.ID)
		if err != nil {
			return nil, err
		}
		streak, err := analytics.Streak(activity, records, s.clock.Today())
		if err != nil {
			return nil, err
		}
		out = append(out, ActivityStreak{
			ActivityID: activity.ID,
			Title:      activity.Title,
			Category:   activity.Category,
			Streak:     streak,
		})
	}
	// Insertion sort keeps the repository's start-time order within equal
	// streak lengths.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Streak > out[j-1].Streak; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

// WeekReport composes the weekly aggregate with streaks and insights.
type WeekReport struct {
	analytics.Report
	Streaks  []ActivityStreak
	Insights []string
}

// WeeklyReport builds the composed report for the ISO week containing date.
func (s *Service) WeeklyReport(ctx context.Context, date time.Time) (*WeekReport, error) {
	report, activities, records, err := s.weeklyCore(ctx, date)
	if err != nil {
		return nil, err
	}

	streaks, err := s.Streaks(ctx)
	if err != nil {
		return nil, err
	}

	var snapshot analytics.WeatherSnapshot
	if s.weather != nil {
		// Weather is advisory; a failed fetch degrades to no weather insight.
		if snap, err := s.weather.Snapshot(ctx, s.insightCfg.Location, report.WeekStart, report.WeekEnd); err == nil {
			snapshot = snap
		}
	}

	return &WeekReport{
		Report:   report,
		Streaks:  streaks,
		Insights: analytics.Insights(report, activities, records, s.insightCfg, snapshot),
	}, nil
}

// CompareWeeks diffs the completion rates of the weeks containing the two
// dates.
func (s *Service) CompareWeeks(ctx context.Context, current, previous time.Time) (analytics.Comparison, error) {
	currentReport, _, _, err := s.weeklyCore(ctx, current)
	if err != nil {
		return analytics.Comparison{}, err
	}
	previousReport, _, _, err := s.weeklyCore(ctx, previous)
	if err != nil {
		return analytics.Comparison{}, err
	}
	return analytics.CompareWeeks(currentReport, previousReport), nil
}

func (s *Service) weeklyCore(ctx context.Context, date time.Time) (analytics.Report, []domain.Activity, []domain.StatusRecord, error) {
	start, end := schedule.WeekBounds(date)
	activities, err := s.activities.List(ctx, false)
	if err != nil {
		return analytics.Report{}, nil, nil, err
	}
	records, err := s.statuses.ByDateRange(ctx, start, end)
	if err != nil {
		return analytics.Report{}, nil, nil, err
	}
	report, err := analytics.WeeklyReport(activities, records, start)
	if err != nil {
		return analytics.Report{}, nil, nil, err
	}
	return report, activities, records, nil
}

func (s *Service) getActivity(ctx context.Context, id string) (*domain.Activity, error) {
	activity, err := s.activities.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, domain.ErrNotFound
	}
	return activity, nil
}

func (s *Service) requireDue(activity domain.Activity, date time.Time) error {
	due, err := schedule.IsDue(activity, date)
	if err != nil {
		return err
	}
	if !due {
		return domain.Invalidf("activity %q is not scheduled on %s", activity.Title, date.Format("2006-01-02"))
	}
	return nil
}
