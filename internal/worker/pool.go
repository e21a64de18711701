package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"llamadesk-backend/internal/models"
	"llamadesk-backend/internal/repository"
	"llamadesk-backend/internal/services"
)

// Pool drains the persistence queues so chat requests never wait on Postgres.
// Turns are written in queue order; a clear pushes a close marker for the
// finished conversation.
type Pool struct {
	redis       *redis.Client
	convRepo    *repository.ConversationRepo
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, convRepo *repository.ConversationRepo, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		convRepo:    convRepo,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	queues := []string{
		services.QueueTurnPersistence,
		services.QueueConversationClose,
	}

	for i := 0; i < p.workerCount; i++ {
		go p.worker(i, queues)
	}

	log.Printf("Started %d persistence worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int, queues []string) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BRPop with a short timeout so shutdown is noticed. Jobs are pushed
		// with LPush, so the right end is the oldest.
		result, err := p.redis.BRPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		switch result[0] {
		case services.QueueTurnPersistence:
			p.persistTurn(ctx, id, result[1])
		case services.QueueConversationClose:
			p.closeConversation(ctx, id, result[1])
		}
	}
}

func (p *Pool) persistTurn(ctx context.Context, id int, payload string) {
	var job models.TurnJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		log.Printf("Worker %d: failed to parse turn job: %v", id, err)
		return
	}

	if err := p.convRepo.EnsureConversation(ctx, job.ConversationID, job.RecordedAt); err != nil {
		log.Printf("Worker %d: failed to ensure conversation %s: %v", id, job.ConversationID, err)
		return
	}

	turn := models.Turn{
		ConversationID: job.ConversationID,
		Role:           job.Role,
		Content:        job.Content,
		CreatedAt:      job.RecordedAt,
	}
	if err := p.convRepo.InsertTurn(ctx, &turn); err != nil {
		log.Printf("Worker %d: failed to persist turn: %v", id, err)
	}
}

func (p *Pool) closeConversation(ctx context.Context, id int, payload string) {
	var convID uuid.UUID
	if err := json.Unmarshal([]byte(payload), &convID); err != nil {
		log.Printf("Worker %d: failed to parse close job: %v", id, err)
		return
	}

	if err := p.convRepo.CloseConversation(ctx, convID, time.Now().UTC()); err != nil {
		log.Printf("Worker %d: failed to close conversation %s: %v", id, convID, err)
	}
}
