package cron

import (
	"context"
	"fmt"
	"time"

	"concierge/config"
	"concierge/services/tasks"
	"concierge/services/ticket"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt is the asynq connection shared by the enqueuer and the worker.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitTicketWorker runs the async worker in background and returns the
// server so the caller can shut it down.
func InitTicketWorker(repo ticket.Repository, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeTicketNotify, HandleTicketNotify(repo, logger))

	go func() {
		logger.Info("[TicketWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("[TicketWorker] Failed to start worker",
				zap.Int("attempt", attempts), zap.Int("max", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("[TicketWorker] Max retry attempts reached, ticket notifications are disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleTicketNotify alerts the front desk and stamps the ticket as notified.
func HandleTicketNotify(repo ticket.Repository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseTicketNotify(task)
		if err != nil {
			logger.Error("[TicketHandler] Invalid payload", zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}

		t, err := repo.Get(ctx, p.TicketID)
		if err != nil {
			if err == ticket.ErrNotFound {
				logger.Warn("[TicketHandler] Ticket vanished", zap.String("ticketID", p.TicketID))
				return nil
			}
			return err
		}
		if t.NotifiedAt != nil {
			return nil
		}

		logger.Info("[TicketHandler] New guest ticket for front desk",
			zap.String("ticketID", t.ID),
			zap.String("shortID", ticket.ShortID(t.ID)),
			zap.String("userID", t.UserID),
			zap.String("intent", t.Intent),
			zap.String("message", t.Message),
		)
		return repo.MarkNotified(ctx, t.ID, time.Now())
	}
}
