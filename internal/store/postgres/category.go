package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

// CategoryStore adalah implementasi store.CategoryStore. Pohon
// kategori ditegakkan acyclic di internal/category (traversal di
// memori), bukan lewat constraint database — lihat domain/category.go.
type CategoryStore struct {
	db *sqlx.DB
}

func NewCategoryStore(db *sqlx.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	const q = `
		INSERT INTO categories (slug, name, icon, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	row := s.db.QueryRowxContext(ctx, q, c.Slug, c.Name, c.Icon, c.ParentID)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return classifyCategoryInsertErr(err)
	}
	return nil
}

func (s *CategoryStore) GetCategory(ctx context.Context, id int) (*domain.Category, error) {
	var c domain.Category
	err := s.db.GetContext(ctx, &c, `SELECT * FROM categories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetCategory: %w", err)
	}
	return &c, nil
}

func (s *CategoryStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	err := s.db.GetContext(ctx, &c, `SELECT * FROM categories WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: GetCategoryBySlug: %w", err)
	}
	return &c, nil
}

func (s *CategoryStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cs []domain.Category
	err := s.db.SelectContext(ctx, &cs, `SELECT * FROM categories ORDER BY parent_id NULLS FIRST, name`)
	return cs, err
}

func (s *CategoryStore) ListChildren(ctx context.Context, parentID int) ([]domain.Category, error) {
	var cs []domain.Category
	err := s.db.SelectContext(ctx, &cs, `SELECT * FROM categories WHERE parent_id = $1 ORDER BY name`, parentID)
	return cs, err
}

func (s *CategoryStore) UpdateCategory(ctx context.Context, c *domain.Category) error {
	const q = `
		UPDATE categories SET slug = $1, name = $2, icon = $3, parent_id = $4, updated_at = now()
		WHERE id = $5
	`
	res, err := s.db.ExecContext(ctx, q, c.Slug, c.Name, c.Icon, c.ParentID, c.ID)
	if err != nil {
		return classifyCategoryInsertErr(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *CategoryStore) DeleteCategory(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ReparentDescendants memindahkan semua anak langsung dari oldParent
// ke newParent. Dipakai saat menghapus kategori yang punya anak —
// kaskade dilakukan rekursif di internal/category, bukan di sini.
func (s *CategoryStore) ReparentDescendants(ctx context.Context, oldParent, newParent *int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE categories SET parent_id = $1, updated_at = now() WHERE parent_id = $2`,
		newParent, oldParent,
	)
	return err
}

func (s *CategoryStore) NullifyItemCategory(ctx context.Context, categoryID int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE items SET category_id = NULL, updated_at = now() WHERE category_id = $1`,
		categoryID,
	)
	return err
}
