package screening

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clinic/clinic/internal/assessment"
)

// Entry is one archived result.
type Entry struct {
	ID           string                 `bson:"_id"`
	SessionID    string                 `bson:"session_id,omitempty"`
	UserID       string                 `bson:"user_id,omitempty"`
	AssessmentID string                 `bson:"assessment_id"`
	Answers      assessment.ResponseSet `bson:"answers"`
	Result       assessment.Result      `bson:"result"`
	CompletedAt  time.Time              `bson:"completed_at"`
}

type Archive interface {
	Archive(ctx context.Context, e Entry) error
}

type mongoArchive struct {
	collection *mongo.Collection
}

// NewMongoArchive stores entries in the screening_results collection of
// database.
func NewMongoArchive(client *mongo.Client, database string) Archive {
	return &mongoArchive{collection: client.Database(database).Collection("screening_results")}
}

func (a *mongoArchive) Archive(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	if _, err := a.collection.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("archive result: %w", err)
	}
	return nil
}

type noopArchive struct{}

// NoopArchive discards entries. It is used when no document store is
// configured.
func NoopArchive() Archive { return noopArchive{} }

func (noopArchive) Archive(context.Context, Entry) error { return nil }

const archiveTimeout = 5 * time.Second

// AsyncArchive writes entries in the background. Archive always returns nil;
// failures are logged.
type AsyncArchive struct {
	next   Archive
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func NewAsyncArchive(next Archive, logger zerolog.Logger) *AsyncArchive {
	return &AsyncArchive{next: next, logger: logger}
}

func (a *AsyncArchive) Archive(ctx context.Context, e Entry) error {
	ctx = context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error().Interface("panic", r).Str("assessment_id", e.AssessmentID).Msg("result archive panicked")
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
		defer cancel()
		if err := a.next.Archive(ctx, e); err != nil {
			a.logger.Warn().Err(err).
				Str("assessment_id", e.AssessmentID).
				Str("session_id", e.SessionID).
				Msg("result archive failed")
		}
	}()
	return nil
}

// Wait blocks until in-flight writes finish.
func (a *AsyncArchive) Wait() {
	a.wg.Wait()
}
