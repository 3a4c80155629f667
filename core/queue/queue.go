package queue

import (
	"context"
	"fmt"
	"os"
	"time"

	"booking-router/core/config"
	"booking-router/core/logger"

	"github.com/hibiken/asynq"
)

// Queue bundles the asynq client, worker server and cron scheduler that share
// one Redis.
type Queue struct {
	client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

func New(redisCfg config.RedisConfig, jobsCfg config.JobsConfig) *Queue {
	opt := asynq.RedisClientOpt{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	}
	concurrency := jobsCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Queue{
		client: asynq.NewClient(opt),
		server: asynq.NewServer(opt, asynq.Config{
			Concurrency: concurrency,
			Logger:      asynqLogger{},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Queue:Task:Error", "type", task.Type(), "error", err)
			}),
		}),
		scheduler: asynq.NewScheduler(opt, &asynq.SchedulerOpts{
			Location: time.UTC,
			Logger:   asynqLogger{},
		}),
		mux: asynq.NewServeMux(),
	}
}

func (q *Queue) Handle(taskType string, handler func(context.Context, *asynq.Task) error) {
	q.mux.HandleFunc(taskType, handler)
}

// Schedule enqueues taskType on every tick of cronspec (UTC). Unique keeps a
// slow run from stacking up behind itself.
func (q *Queue) Schedule(cronspec, taskType string, timeout time.Duration) error {
	entryID, err := q.scheduler.Register(cronspec, asynq.NewTask(taskType, nil),
		asynq.MaxRetry(1),
		asynq.Timeout(timeout),
		asynq.Unique(timeout),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", taskType, err)
	}
	logger.Info("Queue:Schedule:Registered", "type", taskType, "cron", cronspec, "entry_id", entryID)
	return nil
}

func (q *Queue) Enqueue(ctx context.Context, taskType string, payload []byte) error {
	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(taskType, payload))
	if err != nil {
		logger.Error("Queue:Enqueue:Error", "type", taskType, "error", err)
		return err
	}
	logger.Info("Queue:Enqueue:Queued", "type", taskType, "id", info.ID)
	return nil
}

// Start runs the workers and the scheduler in the background.
func (q *Queue) Start() error {
	if err := q.server.Start(q.mux); err != nil {
		return fmt.Errorf("start queue server: %w", err)
	}
	if err := q.scheduler.Start(); err != nil {
		q.server.Shutdown()
		return fmt.Errorf("start scheduler: %w", err)
	}
	logger.Info("Queue:Start:Running")
	return nil
}

func (q *Queue) Shutdown() {
	q.scheduler.Shutdown()
	q.server.Shutdown()
	if err := q.client.Close(); err != nil {
		logger.Warn("Queue:Shutdown:CloseClient:Error", "error", err)
	}
}

type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { logger.Debug("Queue:Asynq", "msg", fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...any)  { logger.Info("Queue:Asynq", "msg", fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...any)  { logger.Warn("Queue:Asynq", "msg", fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...any) { logger.Error("Queue:Asynq", "msg", fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...any) {
	logger.Error("Queue:Asynq:Fatal", "msg", fmt.Sprint(args...))
	os.Exit(1)
}
