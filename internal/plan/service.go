package plan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"plancal/internal/calendar"
	appLog "plancal/internal/log"
	"plancal/internal/model"
)

// Service runs each command as Load, mutate, Save against a Store.
//
// Operations are serialized in-process so the chat transport, the digest job
// and the HTTP API never interleave a read-modify-write. There is no
// cross-process locking: one bot process is assumed to own the data file.
type Service struct {
	store     Store
	mu        sync.Mutex
	now       func() time.Time
	loc       *time.Location
	weekStart time.Weekday
}

type Option func(*Service)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the zone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithWeekStart sets the first column of month views.
func WithWeekStart(day time.Weekday) Option {
	return func(s *Service) {
		s.weekStart = day
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		now:       time.Now,
		loc:       time.Local,
		weekStart: time.Monday,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar date in the service location.
func (s *Service) Today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// Location is the zone that decides what "today" is.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now returns the current time in Location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// StartPlan validates date and creates its DayPlan.
func (s *Service) StartPlan(ctx context.Context, date string) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	err := s.mutate(ctx, func(sched *model.Schedule) error {
		return InitDay(sched, date)
	})
	if err == nil {
		appLog.Info("day plan created", "date", date)
	}
	return err
}

// AddTask sets the task of one slot.
func (s *Service) AddTask(ctx context.Context, date, slot, task string) error {
	err := s.mutate(ctx, func(sched *model.Schedule) error {
		return SetSlot(sched, date, slot, task)
	})
	if err == nil {
		appLog.Debug("task set", "date", date, "slot", slot)
	}
	return err
}

// CompleteTask marks one slot as done.
func (s *Service) CompleteTask(ctx context.Context, date, slot string) error {
	err := s.mutate(ctx, func(sched *model.Schedule) error {
		return CompleteSlot(sched, date, slot)
	})
	if err == nil {
		appLog.Debug("task completed", "date", date, "slot", slot)
	}
	return err
}

// ViewPlan returns a copy of the plan for date, or ErrUnknownDate.
func (s *Service) ViewPlan(ctx context.Context, date string) (*model.DayPlan, error) {
	sched, err := s.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	day, ok := sched.Day(date)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDate, date)
	}
	return day, nil
}

// Schedule returns a snapshot of the whole schedule.
func (s *Service) Schedule(ctx context.Context) (*model.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// Calendar parses "YYYY-MM" and builds the month view relative to Today.
func (s *Service) Calendar(ctx context.Context, yearMonth string) (calendar.View, error) {
	year, month, err := calendar.ParseYearMonth(yearMonth)
	if err != nil {
		return calendar.View{}, err
	}
	sched, err := s.Schedule(ctx)
	if err != nil {
		return calendar.View{}, err
	}
	return calendar.Build(sched, year, month, s.Today(), s.weekStart)
}

func (s *Service) mutate(ctx context.Context, fn func(*model.Schedule) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(sched); err != nil {
		return err
	}
	return s.store.Save(ctx, sched)
}
