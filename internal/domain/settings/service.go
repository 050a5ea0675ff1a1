package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalid = errors.New("invalid setting")

type Service struct {
	store    Store
	onChange func(userID string, w WaterReminder)
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// OnWaterReminderChange registers fn to run after a user's reminder settings
// are saved or reset.
func (s *Service) OnWaterReminderChange(fn func(userID string, w WaterReminder)) {
	s.onChange = fn
}

func (s *Service) load(ctx context.Context, userID, key string, into interface{}) (bool, error) {
	raw, err := s.store.Get(ctx, userID, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Service) save(ctx context.Context, userID, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Put(ctx, userID, key, raw)
}

// WaterReminder returns the user's settings or the defaults.
func (s *Service) WaterReminder(ctx context.Context, userID string) (WaterReminder, error) {
	w := DefaultWaterReminder()
	if _, err := s.load(ctx, userID, KeyWaterReminder, &w); err != nil {
		return DefaultWaterReminder(), err
	}
	return w, nil
}

func (s *Service) SetWaterReminder(ctx context.Context, userID string, w WaterReminder) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.save(ctx, userID, KeyWaterReminder, w); err != nil {
		return err
	}
	s.notify(userID, w)
	return nil
}

func (s *Service) ResetWaterReminder(ctx context.Context, userID string) (WaterReminder, error) {
	if err := s.store.Delete(ctx, userID, KeyWaterReminder); err != nil {
		return WaterReminder{}, err
	}
	w := DefaultWaterReminder()
	s.notify(userID, w)
	return w, nil
}

func (s *Service) notify(userID string, w WaterReminder) {
	if s.onChange != nil {
		s.onChange(userID, w)
	}
}

func (s *Service) SavedResources(ctx context.Context, userID string) (SavedResources, error) {
	var saved SavedResources
	if _, err := s.load(ctx, userID, KeySavedResources, &saved); err != nil {
		return SavedResources{Items: []string{}}, err
	}
	if saved.Items == nil {
		saved.Items = []string{}
	}
	return saved, nil
}

// ToggleSavedResource flips contentID in the user's library and returns the
// new state.
func (s *Service) ToggleSavedResource(ctx context.Context, userID, contentID string) (bool, SavedResources, error) {
	saved, err := s.SavedResources(ctx, userID)
	if err != nil {
		return false, saved, err
	}
	on, err := saved.Toggle(contentID)
	if err != nil {
		return false, saved, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.save(ctx, userID, KeySavedResources, saved); err != nil {
		return false, saved, err
	}
	return on, saved, nil
}

func (s *Service) RemoveSavedResource(ctx context.Context, userID, contentID string) (SavedResources, error) {
	saved, err := s.SavedResources(ctx, userID)
	if err != nil {
		return saved, err
	}
	if !saved.Contains(contentID) {
		return saved, nil
	}
	saved.Remove(contentID)
	return saved, s.save(ctx, userID, KeySavedResources, saved)
}
