//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examlink/examlink-backend/internal/config"
	"github.com/examlink/examlink-backend/internal/model"
	"github.com/examlink/examlink-backend/internal/worker"
)

// TestWorkerShutdownDrain verifies that records already popped from Redis but
// still buffered in a worker's batch are written to the database when the
// worker's context is cancelled mid-poll.
func TestWorkerShutdownDrain(t *testing.T) {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	// A separate Redis DB keeps the server's own workers off these queues.
	redisURL := os.Getenv("REDIS_TEST_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/1"
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("redis url: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	teacherID, drainExamID := seedDrainExam(t, pool)
	defer pool.Exec(ctx, "DELETE FROM teachers WHERE id = $1", teacherID)

	t.Run("ResultWorker", func(t *testing.T) {
		for _, name := range []string{"Drain One", "Drain Two"} {
			rec := model.ResultRecord{
				ExamID:         drainExamID,
				TeacherID:      teacherID,
				StudentName:    name,
				Score:          1,
				TotalQuestions: 2,
				Percent:        50,
				Rating:         "Just made it!",
				Answers:        []string{"4", ""},
			}
			raw, err := json.Marshal(rec)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if err := rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
				t.Fatalf("rpush: %v", err)
			}
		}

		runUntilCancelled(t, func(workerCtx context.Context) {
			worker.NewResultWorker(pool, rdb, zerolog.Nop()).Start(workerCtx)
		})

		var count int
		err := pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM results WHERE exam_id = $1", drainExamID).Scan(&count)
		if err != nil {
			t.Fatalf("count results: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected 2 drained results, got %d", count)
		}
	})

	t.Run("IntegrityWorker", func(t *testing.T) {
		ev := model.IntegrityEvent{
			ExamID:      drainExamID,
			StudentName: "Drain One",
			Reason:      "tab_switch",
			AttemptNo:   1,
			RecordedAt:  time.Now().UTC(),
		}
		raw, err := json.Marshal(ev)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := rdb.RPush(ctx, config.WorkerKey.PersistIntegrityEventsQueue, raw).Err(); err != nil {
			t.Fatalf("rpush: %v", err)
		}

		runUntilCancelled(t, func(workerCtx context.Context) {
			worker.NewIntegrityWorker(pool, rdb, zerolog.Nop()).Start(workerCtx)
		})

		var count int
		err = pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM integrity_events WHERE exam_id = $1", drainExamID).Scan(&count)
		if err != nil {
			t.Fatalf("count integrity events: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 drained integrity event, got %d", count)
		}
	})
}

// runUntilCancelled starts the worker, gives it time to pop the queued items
// into its batch, then cancels before the batch timeout elapses so only the
// shutdown path can flush.
func runUntilCancelled(t *testing.T, start func(ctx context.Context)) {
	t.Helper()

	workerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		start(workerCtx)
		close(done)
	}()

	time.Sleep(500 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Worker did not stop after cancel")
	}
}

func seedDrainExam(t *testing.T, pool *pgxpool.Pool) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	var teacherID uuid.UUID
	err := pool.QueryRow(ctx,
		`INSERT INTO teachers (email, name, password_hash)
		 VALUES ('drain_teacher@example.com', 'Drain Teacher', 'x')
		 RETURNING id`).Scan(&teacherID)
	if err != nil {
		t.Fatalf("seed teacher: %v", err)
	}

	var drainExamID uuid.UUID
	err = pool.QueryRow(ctx,
		`INSERT INTO exams (teacher_id, title, duration_minutes, questions)
		 VALUES ($1, 'Drain Exam', 10, '[]'::jsonb)
		 RETURNING id`, teacherID).Scan(&drainExamID)
	if err != nil {
		t.Fatalf("seed exam: %v", err)
	}

	return teacherID, drainExamID
}
