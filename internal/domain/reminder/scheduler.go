package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/settings"
	"github.com/clinic/clinic/internal/platform/websocket"
)

const EventWaterReminder = "water.reminder"

// retryDelay is how long a loop waits after the settings store fails.
const retryDelay = time.Minute

type SettingsSource interface {
	WaterReminder(ctx context.Context, userID string) (settings.WaterReminder, error)
}

// Due is the payload of a water.reminder event.
type Due struct {
	DueAt            time.Time `json:"due_at"`
	Glasses          int       `json:"glasses"`
	DailyGoalGlasses int       `json:"daily_goal_glasses"`
}

// Scheduler runs one reminder loop per open connection.
type Scheduler struct {
	settings SettingsSource
	pub      websocket.Publisher
	loc      *time.Location
	logger   zerolog.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu    sync.Mutex
	wakes map[string]map[chan struct{}]struct{}
}

func NewScheduler(src SettingsSource, pub websocket.Publisher, loc *time.Location, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		settings: src,
		pub:      pub,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
		wakes:    make(map[string]map[chan struct{}]struct{}),
	}
}

func (s *Scheduler) subscribe(userID string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	if s.wakes[userID] == nil {
		s.wakes[userID] = make(map[chan struct{}]struct{})
	}
	s.wakes[userID][ch] = struct{}{}
	return ch
}

func (s *Scheduler) unsubscribe(userID string, ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wakes[userID], ch)
	if len(s.wakes[userID]) == 0 {
		delete(s.wakes, userID)
	}
}

// Changed makes the user's running loops re-read their settings. It has the
// signature settings.Service.OnWaterReminderChange expects.
func (s *Scheduler) Changed(userID string, _ settings.WaterReminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.wakes[userID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Run publishes reminders for userID until ctx is canceled. It matches
// websocket.ConnectFunc.
func (s *Scheduler) Run(ctx context.Context, userID string) {
	wake := s.subscribe(userID)
	defer s.unsubscribe(userID, wake)

	for {
		var timer <-chan time.Time
		var due time.Time

		w, err := s.settings.WaterReminder(ctx, userID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("load water reminder settings failed")
			timer = s.after(retryDelay)
		} else if next, ok := Next(w, s.now().In(s.loc)); ok {
			due = next
			timer = s.after(next.Sub(s.now()))
		}

		select {
		case <-ctx.Done():
			return
		case <-wake:
			continue
		case <-timer:
		}

		if due.IsZero() {
			continue
		}
		payload := Due{DueAt: due, Glasses: GlassesPerReminder(w, due), DailyGoalGlasses: w.DailyGoalGlasses}
		if err := s.pub.PublishToUser(ctx, userID, EventWaterReminder, payload); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("publish water reminder failed")
		}
	}
}
