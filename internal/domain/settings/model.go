package settings

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	KeyWaterReminder  = "water_reminder"
	KeySavedResources = "saved_resources"
)

type WaterReminder struct {
	Enabled          bool `json:"enabled"`
	IntervalMinutes  int  `json:"interval_minutes"`
	StartHour        int  `json:"start_hour"`
	EndHour          int  `json:"end_hour"`
	DailyGoalGlasses int  `json:"daily_goal_glasses"`
}

// DefaultWaterReminder is returned for users who never saved settings.
func DefaultWaterReminder() WaterReminder {
	return WaterReminder{
		Enabled:          false,
		IntervalMinutes:  60,
		StartHour:        8,
		EndHour:          20,
		DailyGoalGlasses: 8,
	}
}

func (w WaterReminder) Validate() error {
	if w.IntervalMinutes < 15 || w.IntervalMinutes > 240 {
		return fmt.Errorf("interval_minutes must be between 15 and 240, got %d", w.IntervalMinutes)
	}
	if w.StartHour < 0 || w.StartHour > 23 || w.EndHour < 0 || w.EndHour > 23 {
		return fmt.Errorf("start_hour and end_hour must be between 0 and 23")
	}
	if w.StartHour >= w.EndHour {
		return fmt.Errorf("start_hour must be before end_hour")
	}
	if w.DailyGoalGlasses < 1 || w.DailyGoalGlasses > 20 {
		return fmt.Errorf("daily_goal_glasses must be between 1 and 20, got %d", w.DailyGoalGlasses)
	}
	return nil
}

const MaxSavedResources = 500

// SavedResources is an ordered set of content ids, oldest first.
type SavedResources struct {
	Items []string `json:"items"`
}

func (s SavedResources) Contains(id string) bool {
	for _, it := range s.Items {
		if it == id {
			return true
		}
	}
	return false
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is saved afterwards.
func (s *SavedResources) Toggle(id string) (bool, error) {
	if s.Contains(id) {
		s.Remove(id)
		return false, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return false, fmt.Errorf("invalid content id %q", id)
	}
	if len(s.Items) >= MaxSavedResources {
		return false, fmt.Errorf("saved resources are limited to %d items", MaxSavedResources)
	}
	s.Items = append(s.Items, id)
	return true, nil
}

func (s *SavedResources) Remove(id string) {
	out := s.Items[:0]
	for _, it := range s.Items {
		if it != id {
			out = append(out, it)
		}
	}
	s.Items = out
}
