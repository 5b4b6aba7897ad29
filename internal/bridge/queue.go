// internal/bridge/queue.go
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConnectRedis opens and pings the Redis client backing the sync queue.
func ConnectRedis(addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// UpsertJob is one queued registry sync. Attempts counts deliveries so the
// worker can give up on a poisoned job instead of cycling it forever.
type UpsertJob struct {
	User     UserUpsert `json:"user"`
	Attempts int        `json:"attempts"`
}

// Queue is the Redis-backed handoff between the API process and the syncd
// worker. Pushing is cheap and failure-tolerant: callers log and move on,
// the user-facing operation never blocks on the provider.
type Queue struct {
	rdb  *redis.Client
	name string
}

func NewQueue(rdb *redis.Client, name string) *Queue {
	return &Queue{rdb: rdb, name: name}
}

// EnqueueUpsert serializes the job and pushes it onto the queue.
func (q *Queue) EnqueueUpsert(ctx context.Context, job UpsertJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal upsert job: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.name, err)
	}
	return nil
}

// Worker drains the queue and delivers each job to the provider. Delivery is
// at-least-once: a failed job is re-queued with its attempt count bumped,
// until maxAttempts is reached and the job is dropped with a log line.
type Worker struct {
	queue       *Queue
	upserter    Upserter
	log         *logrus.Logger
	maxAttempts int
}

const defaultMaxAttempts = 5

func NewWorker(queue *Queue, upserter Upserter, log *logrus.Logger) *Worker {
	return &Worker{
		queue:       queue,
		upserter:    upserter,
		log:         log,
		maxAttempts: defaultMaxAttempts,
	}
}

// Run blocks until ctx is canceled, popping jobs with a bounded BLPop so
// cancellation is observed promptly.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := w.queue.rdb.BLPop(ctx, 3*time.Second, w.queue.name).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.log.WithError(err).Error("BLPop failed")
			continue
		}
		if len(res) < 2 {
			continue
		}

		w.process(ctx, []byte(res[1]))
	}
}

// process decodes one payload and delivers it, re-queueing on failure.
func (w *Worker) process(ctx context.Context, payload []byte) {
	var job UpsertJob
	if err := json.Unmarshal(payload, &job); err != nil {
		w.log.WithError(err).Warn("discarding malformed upsert job")
		return
	}

	if requeue := w.deliver(ctx, job); requeue {
		job.Attempts++
		if err := w.queue.EnqueueUpsert(ctx, job); err != nil {
			w.log.WithError(err).WithField("user", job.User.ID).
				Error("failed to re-queue upsert job")
		}
	}
}

// deliver attempts one upsert and reports whether the job should go back on
// the queue.
func (w *Worker) deliver(ctx context.Context, job UpsertJob) bool {
	err := w.upserter.UpsertUser(ctx, job.User)
	if err == nil {
		w.log.WithField("user", job.User.ID).Debug("provider user upserted")
		return false
	}

	if job.Attempts+1 >= w.maxAttempts {
		w.log.WithError(err).WithFields(logrus.Fields{
			"user":     job.User.ID,
			"attempts": job.Attempts + 1,
		}).Error("dropping upsert job after repeated failures")
		return false
	}

	w.log.WithError(err).WithFields(logrus.Fields{
		"user":     job.User.ID,
		"attempts": job.Attempts + 1,
	}).Warn("provider upsert failed, re-queueing")
	return true
}
