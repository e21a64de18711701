package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"llamadesk-backend/internal/models"
)

// ConversationRepo persists completed chat turns. It is the Go side of the
// optional external storage add-on; the chat path never reads from it.
type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

// EnsureConversation creates the conversation row if it does not exist yet.
// Conversations are created lazily, on the first turn that references them.
func (r *ConversationRepo) EnsureConversation(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO conversations (id, started_at) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		id, startedAt,
	)
	return err
}

func (r *ConversationRepo) InsertTurn(ctx context.Context, t *models.Turn) error {
	t.ID = uuid.New()

	query := `INSERT INTO turns (id, conversation_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, t.ID, t.ConversationID, t.Role, t.Content, t.CreatedAt)
	return err
}

// CloseConversation stamps the conversation as ended by a history reset.
func (r *ConversationRepo) CloseConversation(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE conversations SET ended_at = $2 WHERE id = $1 AND ended_at IS NULL`,
		id, endedAt,
	)
	return err
}
