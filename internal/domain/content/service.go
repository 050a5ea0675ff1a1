package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/tracking"
)

type Sort string

const (
	SortNewest  Sort = "newest"
	SortOldest  Sort = "oldest"
	SortPopular Sort = "popular"
	SortTitle   Sort = "title"
)

func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortPopular, SortTitle:
		return Sort(s), nil
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

// Query narrows and orders a category listing. Zero values mean no filter.
type Query struct {
	Search string
	Type   *ContentType
	Tag    string
	Sort   Sort
}

type Service struct {
	repo    Repository
	tracker tracking.Tracker
	logger  zerolog.Logger
}

func NewService(repo Repository, tracker tracking.Tracker, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tracker: tracker, logger: logger}
}

// List returns the category's content filtered and sorted by q. A failing
// repository yields an empty list; the error is only logged.
func (s *Service) List(ctx context.Context, category string, q Query) []*Item {
	items, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		s.logger.Error().Err(err).Str("category", category).Msg("content fetch failed")
		return []*Item{}
	}
	return apply(items, q)
}

func apply(items []*Item, q Query) []*Item {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	tag := strings.ToLower(strings.TrimSpace(q.Tag))

	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if q.Type != nil && it.Type != *q.Type {
			continue
		}
		if tag != "" && !hasTag(it, tag) {
			continue
		}
		if search != "" && !matches(it, search) {
			continue
		}
		out = append(out, it)
	}

	var less func(a, b *Item) bool
	switch q.Sort {
	case SortOldest:
		less = func(a, b *Item) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortPopular:
		less = func(a, b *Item) bool {
			if a.ViewCount != b.ViewCount {
				return a.ViewCount > b.ViewCount
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	case SortTitle:
		less = func(a, b *Item) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		less = func(a, b *Item) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func hasTag(it *Item, tag string) bool {
	for _, t := range it.Tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}

func matches(it *Item, search string) bool {
	if strings.Contains(strings.ToLower(it.Title), search) ||
		strings.Contains(strings.ToLower(it.Description), search) {
		return true
	}
	for _, t := range it.Tags {
		if strings.Contains(strings.ToLower(t), search) {
			return true
		}
	}
	return false
}

// Get returns one item, treating an item filed under another category as
// missing.
func (s *Service) Get(ctx context.Context, category string, id uuid.UUID) (*Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.Category != category {
		return nil, ErrNotFound
	}
	return it, nil
}

// RecordView hands the view to the tracker. Errors never reach the caller.
func (s *Service) RecordView(ctx context.Context, contentType string, id uuid.UUID, userID string) {
	if s.tracker == nil {
		return
	}
	if err := s.tracker.Track(ctx, tracking.View{ContentType: contentType, ContentID: id, UserID: userID}); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn().Err(err).Str("content_id", id.String()).Msg("view tracking failed")
	}
}
