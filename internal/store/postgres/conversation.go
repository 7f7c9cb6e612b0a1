package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

// ConversationStore adalah implementasi store.ConversationStore.
type ConversationStore struct {
	db *sqlx.DB
}

func NewConversationStore(db *sqlx.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// GetOrCreateConversation mencari conversation yang sudah ada untuk
// (p1, p2, bookingID) — p1/p2 sudah dinormalisasi oleh pemanggil lewat
// domain.NormalizeParticipants — dan membuatnya bila belum ada. Dua
// permintaan bersamaan pada pasangan yang sama ditangani dengan
// menangkap unique violation dari insert, lalu query ulang.
func (s *ConversationStore) GetOrCreateConversation(ctx context.Context, p1, p2, bookingID string) (*domain.Conversation, error) {
	existing, err := s.lookupConversation(ctx, p1, p2, bookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	const q = `
		INSERT INTO conversations (p1, p2, booking_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	c := &domain.Conversation{P1: p1, P2: p2}
	if bookingID != domain.GeneralConversationSentinel {
		bid := bookingID
		c.BookingID = &bid
	}
	row := s.db.QueryRowxContext(ctx, q, p1, p2, bookingID)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if classified := classifyConversationInsertErr(err); errors.Is(classified, store.ErrConversationRace) {
			return s.lookupConversation(ctx, p1, p2, bookingID)
		}
		return nil, fmt.Errorf("postgres: GetOrCreateConversation insert: %w", err)
	}
	return c, nil
}

func (s *ConversationStore) lookupConversation(ctx context.Context, p1, p2, bookingID string) (*domain.Conversation, error) {
	var row struct {
		ID        string    `db:"id"`
		P1        string    `db:"p1"`
		P2        string    `db:"p2"`
		BookingID string    `db:"booking_id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT id, p1, p2, booking_id, created_at, updated_at FROM conversations WHERE p1 = $1 AND p2 = $2 AND booking_id = $3`,
		p1, p2, bookingID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: lookupConversation: %w", err)
	}
	c := &domain.Conversation{ID: row.ID, P1: row.P1, P2: row.P2, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}
	if row.BookingID != domain.GeneralConversationSentinel {
		bid := row.BookingID
		c.BookingID = &bid
	}
	return c, nil
}

func (s *ConversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var row struct {
		ID        string    `db:"id"`
		P1        string    `db:"p1"`
		P2        string    `db:"p2"`
		BookingID string    `db:"booking_id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT id, p1, p2, booking_id, created_at, updated_at FROM conversations WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetConversation: %w", err)
	}
	c := &domain.Conversation{ID: row.ID, P1: row.P1, P2: row.P2, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}
	if row.BookingID != domain.GeneralConversationSentinel {
		bid := row.BookingID
		c.BookingID = &bid
	}
	return c, nil
}

func (s *ConversationStore) ListConversationsForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	var rows []struct {
		ID        string    `db:"id"`
		P1        string    `db:"p1"`
		P2        string    `db:"p2"`
		BookingID string    `db:"booking_id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, p1, p2, booking_id, created_at, updated_at FROM conversations WHERE p1 = $1 OR p2 = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Conversation, 0, len(rows))
	for _, row := range rows {
		c := domain.Conversation{ID: row.ID, P1: row.P1, P2: row.P2, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}
		if row.BookingID != domain.GeneralConversationSentinel {
			bid := row.BookingID
			c.BookingID = &bid
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *ConversationStore) AppendMessage(ctx context.Context, m *domain.Message) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insertQ = `
		INSERT INTO messages (id, conversation_id, sender_id, content, is_read)
		VALUES ($1, $2, $3, $4, false)
		RETURNING created_at
	`
	row := tx.QueryRowxContext(ctx, insertQ, m.ID, m.ConversationID, m.SenderID, m.Content)
	if err := row.Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("postgres: AppendMessage: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE conversations SET updated_at = now() WHERE id = $1`, m.ConversationID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListMessages mengembalikan pesan terurut lama-ke-baru (CreatedAt
// lalu ID sebagai tie-breaker, per §5 Ordering guarantees), dipaging
// lewat cursor `before`.
func (s *ConversationStore) ListMessages(ctx context.Context, conversationID string, before time.Time, limit int) ([]domain.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var ms []domain.Message
	const q = `
		SELECT * FROM messages
		WHERE conversation_id = $1 AND created_at < $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	if err := s.db.SelectContext(ctx, &ms, q, conversationID, before, limit); err != nil {
		return nil, fmt.Errorf("postgres: ListMessages: %w", err)
	}
	for i, j := 0, len(ms)-1; i < j; i, j = i+1, j-1 {
		ms[i], ms[j] = ms[j], ms[i]
	}
	return ms, nil
}

func (s *ConversationStore) MarkRead(ctx context.Context, conversationID, readerID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE messages SET is_read = true WHERE conversation_id = $1 AND sender_id <> $2 AND NOT is_read`,
		conversationID, readerID,
	)
	return err
}

func (s *ConversationStore) UnreadCount(ctx context.Context, conversationID, readerID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT count(*) FROM messages WHERE conversation_id = $1 AND sender_id <> $2 AND NOT is_read`,
		conversationID, readerID,
	)
	return n, err
}
