package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"weekly-planner/internal/calendar"
	"weekly-planner/internal/lock"
	"weekly-planner/internal/model"
	"weekly-planner/internal/notify"
)

const (
	// DefaultWeeksBuffer is how many weeks past the current one are kept materialized.
	DefaultWeeksBuffer = 4
	// DefaultDueHour is the wall-clock hour of generated due dates.
	DefaultDueHour = 17
)

type seriesLister interface {
	ListAll(ctx context.Context) ([]model.RecurringTask, error)
}

type instanceStore interface {
	LatestInstance(ctx context.Context, seriesID string) (*model.Task, error)
	ExistsForWeek(ctx context.Context, title, companyID string, weekStart time.Time) (bool, error)
	Create(ctx context.Context, task *model.Task) error
}

// GenerationError records one series/week that could not be materialized.
type GenerationError struct {
	SeriesID  string `json:"seriesId"`
	WeekStart string `json:"weekStart,omitempty"`
	Message   string `json:"message"`
}

// GenerationResult is the outcome of one generator run.
type GenerationResult struct {
	Created int               `json:"created"`
	Errors  []GenerationError `json:"errors,omitempty"`
}

// RecurrenceService keeps every recurring series populated with weekly task
// instances up to a rolling horizon, creating each (series, week) at most once.
type RecurrenceService struct {
	series    seriesLister
	instances instanceStore
	locker    lock.Locker
	notifier  notify.Notifier
	loc       *time.Location
	now       func() time.Time
}

func NewRecurrenceService(series seriesLister, instances instanceStore, locker lock.Locker, notifier notify.Notifier, loc *time.Location) *RecurrenceService {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &RecurrenceService{
		series:    series,
		instances: instances,
		locker:    locker,
		notifier:  notifier,
		loc:       loc,
		now:       time.Now,
	}
}

// Run materializes the missing instances of every series. weeksBuffer <= 0 means
// DefaultWeeksBuffer. Failures of single series or weeks are collected in the result;
// only failing to load the series aborts the run.
func (s *RecurrenceService) Run(ctx context.Context, weeksBuffer int) (GenerationResult, error) {
	if weeksBuffer <= 0 {
		weeksBuffer = DefaultWeeksBuffer
	}

	all, err := s.series.ListAll(ctx)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("load recurring tasks: %w", err)
	}

	today := calendar.Date(s.now().In(s.loc))
	var result GenerationResult
	for _, series := range all {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		created, errs := s.generateSeries(ctx, series, weeksBuffer, today)
		result.Created += created
		result.Errors = append(result.Errors, errs...)
	}

	log.Printf("[info] generation finished series=%d created=%d errors=%d", len(all), result.Created, len(result.Errors))
	return result, nil
}

func (s *RecurrenceService) generateSeries(ctx context.Context, series model.RecurringTask, weeksBuffer int, today time.Time) (int, []GenerationError) {
	fail := func(week time.Time, err error) []GenerationError {
		ge := GenerationError{SeriesID: series.ID, Message: err.Error()}
		if !week.IsZero() {
			ge.WeekStart = week.Format(calendar.DateLayout)
		}
		log.Printf("[warn] generate series=%s week=%s: %v", series.ID, ge.WeekStart, err)
		return []GenerationError{ge}
	}

	unlock, err := s.locker.Lock(ctx, series.CompanyID)
	if err != nil {
		return 0, fail(time.Time{}, fmt.Errorf("lock company %s: %w", series.CompanyID, err))
	}
	defer unlock()

	latest, err := s.instances.LatestInstance(ctx, series.ID)
	if err != nil {
		return 0, fail(time.Time{}, err)
	}
	anchor := calendar.Date(series.CreatedAt.In(s.loc))
	if latest != nil {
		anchor = calendar.Date(latest.WeekStart)
	}

	var (
		created int
		errs    []GenerationError
	)
	for _, week := range calendar.NeededOccurrences(anchor, series.IntervalWeeks, weeksBuffer, today) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fail(week, err)...)
			break
		}
		if series.EndsBefore(week) {
			continue
		}
		ok, err := s.createInstance(ctx, series, week)
		if err != nil {
			errs = append(errs, fail(week, err)...)
			continue
		}
		if !ok {
			continue
		}
		created++
		s.notifier.Notify(ctx, series.CreatorID, notify.KindGenerated, map[string]any{
			"title":     series.Title,
			"weekStart": week.Format(calendar.DateLayout),
		})
	}
	return created, errs
}

// createInstance returns false when the (title, company, week) key is already taken,
// either before the insert or by a concurrent writer that won the unique index.
func (s *RecurrenceService) createInstance(ctx context.Context, series model.RecurringTask, week time.Time) (bool, error) {
	exists, err := s.instances.ExistsForWeek(ctx, series.Title, series.CompanyID, week)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	seriesID := series.ID
	task := &model.Task{
		Title:           series.Title,
		Description:     series.Description,
		Priority:        series.Priority,
		Status:          model.StatusPending,
		CompanyID:       series.CompanyID,
		WeekStart:       week,
		DueAt:           calendar.DueAt(week, series.DayOfWeek, DefaultDueHour, 0, s.loc),
		RecurringTaskID: &seriesID,
		CreatorID:       series.CreatorID,
	}
	if err := s.instances.Create(ctx, task); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
