package views

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"example.com/gkg/tripexpo/internal/gateway"
	"example.com/gkg/tripexpo/internal/store"
)

const (
	BlogIDField = store.ViewBlogIDField
	CountField  = store.ViewCountField

	popTimeout   = 5 * time.Second
	errorBackoff = time.Second
)

// Count is one row of the views collection.
type Count struct {
	BlogID string `json:"blogId"`
	Views  int64  `json:"views"`
}

// Publish enqueues a view of blogID. Failures are logged and swallowed so
// a broken queue never fails a read.
func Publish(ctx context.Context, q Queue, blogID string) {
	if err := q.Push(ctx, blogID); err != nil {
		log.Error().Err(err).Str("blog_id", blogID).Msg("error occured while publishing to redis")
	}
}

type Worker struct {
	queue Queue
	views *gateway.Gateway
}

func NewWorker(q Queue, views *gateway.Gateway) *Worker {
	return &Worker{queue: q, views: views}
}

// Run drains the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log.Info().Str("queue", QueueKey).Msg("view worker started")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		blogID, err := w.queue.Pop(ctx, popTimeout)
		switch {
		case errors.Is(err, ErrEmpty):
			continue
		case ctx.Err() != nil:
			return nil
		case err != nil:
			log.Error().Err(err).Msg("error while getting data from redis")
			sleep(ctx, errorBackoff)
			continue
		}
		if err := w.Record(ctx, blogID); err != nil {
			log.Error().Err(err).Str("blog_id", blogID).Msg("error while updating views")
		}
	}
}

// Record adds one view to blogID.
func (w *Worker) Record(ctx context.Context, blogID string) error {
	_, err := w.views.Increment(ctx, store.Filter{BlogIDField: blogID}, CountField, 1)
	return err
}

// Lookup returns the view count of one blog; a blog never read has zero views.
func Lookup(ctx context.Context, views *gateway.Gateway, blogID string) (Count, error) {
	rec, found, err := views.FindOneWhere(ctx, store.Filter{BlogIDField: blogID})
	if err != nil {
		return Count{}, err
	}
	c := Count{BlogID: blogID}
	if found {
		c.Views = toInt64(rec[CountField])
	}
	return c, nil
}

// List returns the counts of every blog read at least once.
func List(ctx context.Context, views *gateway.Gateway) ([]Count, error) {
	recs, err := views.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Count, 0, len(recs))
	for _, rec := range recs {
		id, _ := rec[BlogIDField].(string)
		out = append(out, Count{BlogID: id, Views: toInt64(rec[CountField])})
	}
	return out, nil
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	}
	return 0
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
