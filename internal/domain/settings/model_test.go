package settings

import (
	"testing"

	"github.com/google/uuid"
)

func TestDefaultWaterReminder_Valid(t *testing.T) {
	if err := DefaultWaterReminder().Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestWaterReminder_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WaterReminder)
		ok     bool
	}{
		{"min interval", func(w *WaterReminder) { w.IntervalMinutes = 15 }, true},
		{"max interval", func(w *WaterReminder) { w.IntervalMinutes = 240 }, true},
		{"interval too short", func(w *WaterReminder) { w.IntervalMinutes = 14 }, false},
		{"interval too long", func(w *WaterReminder) { w.IntervalMinutes = 241 }, false},
		{"full day window", func(w *WaterReminder) { w.StartHour, w.EndHour = 0, 23 }, true},
		{"start after end", func(w *WaterReminder) { w.StartHour, w.EndHour = 21, 20 }, false},
		{"empty window", func(w *WaterReminder) { w.StartHour, w.EndHour = 9, 9 }, false},
		{"hour out of range", func(w *WaterReminder) { w.EndHour = 24 }, false},
		{"negative hour", func(w *WaterReminder) { w.StartHour = -1 }, false},
		{"no glasses", func(w *WaterReminder) { w.DailyGoalGlasses = 0 }, false},
		{"too many glasses", func(w *WaterReminder) { w.DailyGoalGlasses = 21 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := DefaultWaterReminder()
			tt.mutate(&w)
			if err := w.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestSavedResources_Toggle(t *testing.T) {
	var s SavedResources
	a, b := uuid.NewString(), uuid.NewString()

	if on, err := s.Toggle(a); err != nil || !on {
		t.Fatalf("expected %s saved, got %v %v", a, on, err)
	}
	if on, _ := s.Toggle(b); !on {
		t.Fatal("expected second id saved")
	}
	if len(s.Items) != 2 || s.Items[0] != a || s.Items[1] != b {
		t.Errorf("expected insertion order, got %v", s.Items)
	}

	if on, _ := s.Toggle(a); on {
		t.Error("expected toggle to remove a saved id")
	}
	if s.Contains(a) || len(s.Items) != 1 {
		t.Errorf("unexpected items %v", s.Items)
	}

	if _, err := s.Toggle("not-an-id"); err == nil {
		t.Error("expected malformed id to be rejected")
	}
}

func TestSavedResources_Limit(t *testing.T) {
	var s SavedResources
	for i := 0; i < MaxSavedResources; i++ {
		if _, err := s.Toggle(uuid.NewString()); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
	}
	if _, err := s.Toggle(uuid.NewString()); err == nil {
		t.Error("expected limit to be enforced")
	}
	if on, err := s.Toggle(s.Items[0]); err != nil || on {
		t.Error("removing at the limit must still work")
	}
}
