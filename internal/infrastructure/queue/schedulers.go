package queue

import (
	"fmt"
	"time"

	"writespace-backend/internal/shared"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, password string, db int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr, Password: password, DB: db},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.WarnLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// RegisterCleanupJobs registers the hourly reset-token sweep. Each reset token
// also gets its own ProcessAt task; the sweep catches any that were lost.
func (s *Scheduler) RegisterCleanupJobs() error {
	task := asynq.NewTask(shared.TypeCleanupExpiredTokens, []byte(`{}`))

	entryID, err := s.scheduler.Register("@hourly", task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("register %s: %w", shared.TypeCleanupExpiredTokens, err)
	}

	log.Info().
		Str("entry_id", entryID).
		Str("task", shared.TypeCleanupExpiredTokens).
		Str("spec", "@hourly").
		Msg("[Scheduler] Job registered")
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
