package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examlink/examlink-backend/internal/config"
	"github.com/examlink/examlink-backend/internal/model"
)

const (
	IntegrityBatchSize    = 50
	IntegrityBatchTimeout = 2 * time.Second
	IntegrityPollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// IntegrityWorker drains the integrity-event queue and bulk-inserts the
// audit trail. Events are append-only and high-fanout during an exam, so
// the fast path uses COPY.
type IntegrityWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewIntegrityWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *IntegrityWorker {
	return &IntegrityWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "integrity_worker").Logger(),
	}
}

func (w *IntegrityWorker) Start(ctx context.Context) {
	w.log.Info().Msg("IntegrityWorker started")

	buffer := make([]*model.IntegrityEvent, 0, IntegrityBatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 &&
			(len(buffer) >= IntegrityBatchSize || time.Since(lastFlush) >= IntegrityBatchTimeout) {

			w.flushSafe(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), buffer)
			return

		default:
			item, err := w.rdb.BLPop(ctx, IntegrityPollTimeout, config.WorkerKey.PersistIntegrityEventsQueue).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					// Let the ctx.Done case drain the batch.
					continue
				}
				w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
				time.Sleep(3 * time.Second)
				continue
			}

			if len(item) < 2 {
				continue
			}

			var ev model.IntegrityEvent
			if err := json.Unmarshal([]byte(item[1]), &ev); err != nil {
				w.log.Error().Err(err).Str("data", item[1]).Msg("Discarding malformed integrity payload")
				continue
			}

			buffer = append(buffer, &ev)
		}
	}
}

// flushSafe attempts bulk insert, then falls back to row-by-row with requeue.
func (w *IntegrityWorker) flushSafe(ctx context.Context, batch []*model.IntegrityEvent) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *IntegrityWorker) bulkInsert(ctx context.Context, batch []*model.IntegrityEvent) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, ev := range batch {
		rows = append(rows, []interface{}{
			ev.ExamID, ev.StudentName, ev.Reason, ev.AttemptNo, ev.RecordedAt,
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"integrity_events"},
		[]string{"exam_id", "student_name", "reason", "attempt_no", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *IntegrityWorker) fallbackInsert(ctx context.Context, batch []*model.IntegrityEvent) {
	for _, ev := range batch {
		_, err := w.pool.Exec(ctx,
			`INSERT INTO integrity_events (exam_id, student_name, reason, attempt_no, recorded_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			ev.ExamID, ev.StudentName, ev.Reason, ev.AttemptNo, ev.RecordedAt,
		)
		if err != nil {
			w.log.Error().Err(err).Str("student", ev.StudentName).Msg("Insert failed, requeueing")
			raw, merr := json.Marshal(ev)
			if merr != nil {
				continue
			}
			w.rdb.RPush(ctx, config.WorkerKey.PersistIntegrityEventsQueue, raw)
		}
	}
}
