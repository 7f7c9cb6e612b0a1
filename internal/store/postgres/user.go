package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

// UserStore adalah implementasi store.UserStore yang menyimpan ke
// PostgreSQL lewat sqlx. Sesuai pola teacher: satu struct per fitur,
// membungkus *sqlx.DB, dan transaksi eksplisit lewat Beginx/Rollback.
type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

func (s *UserStore) CreateUser(ctx context.Context, u *domain.User) error {
	const q = `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, bio, location, avatar_url, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	row := s.db.QueryRowxContext(ctx, q,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.Phone, u.Bio, u.Location, u.AvatarURL, u.IsAdmin,
	)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		log.Printf("CreateUser: insert failed for email %s: %v", u.Email, err)
		return classifyUserInsertErr(err)
	}
	return nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetUserByID: %w", err)
	}
	return &u, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetUserByEmail: %w", err)
	}
	return &u, nil
}

// UpdateUserProfile menerapkan sparse update: hanya kolom yang ada di
// fields yang disentuh, sesuai domain.UserProfileFields allow-list
// yang sudah divalidasi di layer service.
func (s *UserStore) UpdateUserProfile(ctx context.Context, id string, fields map[string]any) (*domain.User, error) {
	if len(fields) == 0 {
		return s.GetUserByID(ctx, id)
	}

	colFor := map[string]string{
		"firstName": "first_name",
		"lastName":  "last_name",
		"phone":     "phone",
		"bio":       "bio",
		"location":  "location",
		"avatar":    "avatar_url",
	}

	setClauses := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	i := 1
	for k, v := range fields {
		col, ok := colFor[k]
		if !ok {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, v)
		i++
	}
	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), i)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("postgres: UpdateUserProfile: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

// ApplyRatingDelta menulis ulang RatingAverage/ReviewCount dalam
// transaksi yang sama dengan insert review, memenuhi §8 property 7
// (atomicity antara review create dan rating update).
func (s *UserStore) ApplyRatingDelta(ctx context.Context, tx store.Tx, userID string, newAverage float64, newCount int) error {
	sx := unwrapTx(tx)
	if sx == nil {
		return errors.New("postgres: ApplyRatingDelta requires a postgres transaction")
	}
	_, err := sx.ExecContext(ctx,
		`UPDATE users SET rating_average = $1, review_count = $2, updated_at = now() WHERE id = $3`,
		newAverage, newCount, userID,
	)
	return err
}

func (s *UserStore) CreateRefreshToken(ctx context.Context, t *domain.RefreshToken) error {
	const q = `
		INSERT INTO refresh_tokens (token, user_id, expires_at, revoked)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, q, t.Token, t.UserID, t.ExpiresAt, t.Revoked)
	return err
}

func (s *UserStore) GetRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := s.db.GetContext(ctx, &t, `SELECT * FROM refresh_tokens WHERE token = $1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetRefreshToken: %w", err)
	}
	return &t, nil
}

func (s *UserStore) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = true WHERE token = $1`, token)
	return err
}
