package tracking

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type recordingTracker struct {
	mu    sync.Mutex
	views []View
	err   error
	panic bool
	block chan struct{}
}

func (r *recordingTracker) Track(ctx context.Context, v View) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.panic {
		panic("tracker exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
	return r.err
}

func TestAsyncTracker_DeliversView(t *testing.T) {
	inner := &recordingTracker{}
	a := NewAsyncTracker(inner, time.Second, zerolog.Nop())

	v := View{ContentType: "video", ContentID: uuid.New(), UserID: "u-1"}
	if err := a.Track(context.Background(), v); err != nil {
		t.Fatalf("Track should never fail, got %v", err)
	}
	a.Wait()

	if len(inner.views) != 1 || inner.views[0] != v {
		t.Errorf("expected view delivered, got %+v", inner.views)
	}
}

func TestAsyncTracker_SwallowsErrors(t *testing.T) {
	var buf bytes.Buffer
	inner := &recordingTracker{err: errors.New("db down")}
	a := NewAsyncTracker(inner, time.Second, zerolog.New(&buf))

	if err := a.Track(context.Background(), View{ContentID: uuid.New()}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	a.Wait()

	if !strings.Contains(buf.String(), "view tracking failed") || !strings.Contains(buf.String(), "db down") {
		t.Errorf("expected failure to be logged, got %q", buf.String())
	}
}

func TestAsyncTracker_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	a := NewAsyncTracker(&recordingTracker{panic: true}, time.Second, zerolog.New(&buf))

	_ = a.Track(context.Background(), View{ContentID: uuid.New()})
	a.Wait()

	if !strings.Contains(buf.String(), "view tracker panicked") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestAsyncTracker_SurvivesCanceledRequest(t *testing.T) {
	inner := &recordingTracker{block: make(chan struct{})}
	a := NewAsyncTracker(inner, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	_ = a.Track(ctx, View{ContentID: uuid.New()})
	cancel()
	close(inner.block)
	a.Wait()

	if len(inner.views) != 1 {
		t.Errorf("expected view recorded after request context canceled, got %d", len(inner.views))
	}
}

func TestAsyncTracker_Timeout(t *testing.T) {
	var buf bytes.Buffer
	inner := &recordingTracker{block: make(chan struct{})}
	a := NewAsyncTracker(inner, 10*time.Millisecond, zerolog.New(&buf))

	_ = a.Track(context.Background(), View{ContentID: uuid.New()})
	a.Wait()

	if len(inner.views) != 0 {
		t.Error("expected timed-out view not to be recorded")
	}
	if !strings.Contains(buf.String(), "deadline exceeded") {
		t.Errorf("expected timeout to be logged, got %q", buf.String())
	}
}

func TestNewAsyncTracker_DefaultTimeout(t *testing.T) {
	a := NewAsyncTracker(&recordingTracker{}, 0, zerolog.Nop())
	if a.timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %s", a.timeout)
	}
}
