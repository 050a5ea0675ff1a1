// Package reminder schedules water reminders inside a user's active hours
// and pushes them to the user's open portal connections.
package reminder

import (
	"time"

	"github.com/clinic/clinic/internal/domain/settings"
)

// window returns the active window for the day containing t.
func window(w settings.WaterReminder, t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	return time.Date(y, m, d, w.StartHour, 0, 0, 0, t.Location()),
		time.Date(y, m, d, w.EndHour, 0, 0, 0, t.Location())
}

// Next returns the first reminder strictly after now. Reminders fall on
// start_hour plus whole intervals, up to and including end_hour. Disabled or
// invalid settings have no next reminder.
func Next(w settings.WaterReminder, now time.Time) (time.Time, bool) {
	if !w.Enabled || w.Validate() != nil {
		return time.Time{}, false
	}
	start, end := window(w, now)
	if now.Before(start) {
		return start, true
	}

	interval := time.Duration(w.IntervalMinutes) * time.Minute
	k := now.Sub(start)/interval + 1
	if next := start.Add(k * interval); !next.After(end) {
		return next, true
	}
	tomorrow, _ := window(w, now.AddDate(0, 0, 1))
	return tomorrow, true
}

// Schedule lists every reminder for the day containing day.
func Schedule(w settings.WaterReminder, day time.Time) []time.Time {
	if !w.Enabled || w.Validate() != nil {
		return nil
	}
	start, end := window(w, day)
	interval := time.Duration(w.IntervalMinutes) * time.Minute

	var out []time.Time
	for t := start; !t.After(end); t = t.Add(interval) {
		out = append(out, t)
	}
	return out
}

// GlassesPerReminder spreads the daily goal over the day's reminders,
// rounding up so the goal is reachable.
func GlassesPerReminder(w settings.WaterReminder, day time.Time) int {
	n := len(Schedule(w, day))
	if n == 0 {
		return 0
	}
	return (w.DailyGoalGlasses + n - 1) / n
}
