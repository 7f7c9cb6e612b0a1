package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

// ItemStore adalah implementasi store.ItemStore.
type ItemStore struct {
	db *sqlx.DB
}

func NewItemStore(db *sqlx.DB) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) CreateItem(ctx context.Context, it *domain.Item) error {
	const q = `
		INSERT INTO items (id, owner_id, category_id, title, description, condition, location, price_per_day, deposit_amount, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	row := s.db.QueryRowxContext(ctx, q,
		it.ID, it.OwnerID, it.CategoryID, it.Title, it.Description,
		it.Condition, it.Location, it.PricePerDayStr, it.DepositStr, it.IsActive,
	)
	return row.Scan(&it.CreatedAt, &it.UpdatedAt)
}

func (s *ItemStore) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	var it domain.Item
	err := s.db.GetContext(ctx, &it, `SELECT * FROM items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetItem: %w", err)
	}
	images, err := s.ListImages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("postgres: GetItem images: %w", err)
	}
	it.Images = images
	return &it, nil
}

// UpdateItemFields menerapkan sparse update mengikuti
// domain.ItemUpdatableFields allow-list, divalidasi di layer service.
func (s *ItemStore) UpdateItemFields(ctx context.Context, id string, fields map[string]any) (*domain.Item, error) {
	if len(fields) == 0 {
		return s.GetItem(ctx, id)
	}

	colFor := map[string]string{
		"title":         "title",
		"description":   "description",
		"category":      "category_id",
		"condition":     "condition",
		"pricePerDay":   "price_per_day",
		"depositAmount": "deposit_amount",
		"location":      "location",
		"isActive":      "is_active",
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

	q := fmt.Sprintf(`UPDATE items SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), i)
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: UpdateItemFields: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetItem(ctx, id)
}

// DeleteItem is a soft delete: it sets is_active=false rather than
// removing the row, per SPEC_FULL.md §4.8 — items are never hard
// deleted once they may already be referenced by a Booking's
// (immutable) denormalized fields or by a Review chain.
func (s *ItemStore) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE items SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListItems menjalankan pencarian/listing dengan filter opsional,
// mengembalikan (items, totalCount, error) untuk paginasi.
func (s *ItemStore) ListItems(ctx context.Context, f domain.ItemFilter) ([]domain.Item, int, error) {
	var where []string
	var args []any
	i := 1

	where = append(where, "is_active = true")

	if f.CategoryID != nil {
		where = append(where, fmt.Sprintf("category_id = $%d", i))
		args = append(args, *f.CategoryID)
		i++
	}
	if f.MinPrice != nil {
		where = append(where, fmt.Sprintf("price_per_day >= $%d", i))
		args = append(args, *f.MinPrice)
		i++
	}
	if f.MaxPrice != nil {
		where = append(where, fmt.Sprintf("price_per_day <= $%d", i))
		args = append(args, *f.MaxPrice)
		i++
	}
	if f.Location != "" {
		where = append(where, fmt.Sprintf("location ILIKE $%d", i))
		args = append(args, "%"+f.Location+"%")
		i++
	}
	if f.Text != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", i, i))
		args = append(args, "%"+f.Text+"%")
		i++
	}

	orderBy := "created_at DESC"
	switch f.OrderBy {
	case "price_asc":
		orderBy = "price_per_day ASC"
	case "price_desc":
		orderBy = "price_per_day DESC"
	case "newest":
		orderBy = "created_at DESC"
	}

	page, pageSize := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	whereClause := strings.Join(where, " AND ")

	var total int
	countQ := fmt.Sprintf(`SELECT count(*) FROM items WHERE %s`, whereClause)
	if err := s.db.GetContext(ctx, &total, countQ, args...); err != nil {
		return nil, 0, fmt.Errorf("postgres: ListItems count: %w", err)
	}

	q := fmt.Sprintf(
		`SELECT * FROM items WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		whereClause, orderBy, i, i+1,
	)
	args = append(args, pageSize, offset)

	var items []domain.Item
	if err := s.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, 0, fmt.Errorf("postgres: ListItems: %w", err)
	}
	return items, total, nil
}

func (s *ItemStore) ListItemsByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	var items []domain.Item
	err := s.db.SelectContext(ctx, &items, `SELECT * FROM items WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	return items, err
}

func (s *ItemStore) AddImage(ctx context.Context, img *domain.ItemImage) error {
	const q = `
		INSERT INTO item_images (id, item_id, url, position, is_cover)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, q, img.ID, img.ItemID, img.URL, img.Position, img.IsCover)
	return err
}

func (s *ItemStore) ListImages(ctx context.Context, itemID string) ([]domain.ItemImage, error) {
	var imgs []domain.ItemImage
	err := s.db.SelectContext(ctx, &imgs, `SELECT * FROM item_images WHERE item_id = $1 ORDER BY position`, itemID)
	return imgs, err
}

func (s *ItemStore) DeleteImage(ctx context.Context, itemID, imageID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM item_images WHERE item_id = $1 AND id = $2`, itemID, imageID)
	return err
}

// SetCoverImage menggeser flag IsCover ke satu baris, menegakkan aturan
// "tepat satu cover per item" bersama idx_item_images_one_cover.
func (s *ItemStore) SetCoverImage(ctx context.Context, itemID, imageID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE item_images SET is_cover = false WHERE item_id = $1`, itemID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE item_images SET is_cover = true WHERE item_id = $1 AND id = $2`, itemID, imageID); err != nil {
		return err
	}
	return tx.Commit()
}
