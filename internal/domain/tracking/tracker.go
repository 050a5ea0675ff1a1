// Package tracking records content views. Views are telemetry: callers go
// through AsyncTracker so a slow or failing store never holds up a response.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/db"
)

var ErrUnknownContent = errors.New("unknown content")

// View is one tracked content view. ContentType may be empty, in which case
// the stored type of the content is used. UserID is empty for anonymous
// visitors.
type View struct {
	ContentType string
	ContentID   uuid.UUID
	UserID      string
}

type Tracker interface {
	Track(ctx context.Context, v View) error
}

type pgTracker struct {
	db db.TxQuerier
}

func NewPGTracker(q db.TxQuerier) Tracker {
	return &pgTracker{db: q}
}

// Track inserts a content_view row and bumps content.view_count in one
// transaction.
func (t *pgTracker) Track(ctx context.Context, v View) error {
	return db.WithTx(ctx, t.db, func(tx pgx.Tx) error {
		var userID *string
		if v.UserID != "" {
			userID = &v.UserID
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO content_view (content_id, content_type, user_id)
			SELECT id, COALESCE(NULLIF($2, ''), content_type), $3
			FROM content WHERE id = $1`,
			v.ContentID, v.ContentType, userID)
		if err != nil {
			return fmt.Errorf("insert content_view: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrUnknownContent
		}
		if _, err := tx.Exec(ctx, `UPDATE content SET view_count = view_count + 1 WHERE id = $1`, v.ContentID); err != nil {
			return fmt.Errorf("increment view_count: %w", err)
		}
		return nil
	})
}

const DefaultTimeout = 5 * time.Second

// AsyncTracker runs the wrapped tracker in the background. Track always
// returns nil; failures and panics are logged and dropped.
type AsyncTracker struct {
	next    Tracker
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

func NewAsyncTracker(next Tracker, timeout time.Duration, logger zerolog.Logger) *AsyncTracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AsyncTracker{next: next, timeout: timeout, logger: logger}
}

func (a *AsyncTracker) Track(ctx context.Context, v View) error {
	// Detach from the request so the view survives the response being sent.
	ctx = context.WithoutCancel(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error().Interface("panic", r).Str("content_id", v.ContentID.String()).Msg("view tracker panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		if err := a.next.Track(ctx, v); err != nil {
			a.logger.Warn().Err(err).
				Str("content_id", v.ContentID.String()).
				Str("content_type", v.ContentType).
				Msg("view tracking failed")
		}
	}()
	return nil
}

// Wait blocks until every in-flight Track call has finished.
func (a *AsyncTracker) Wait() {
	a.wg.Wait()
}
