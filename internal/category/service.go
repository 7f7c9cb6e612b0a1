// Package category implements the category tree of §3: acyclic,
// finite-depth, with cascade-delete to descendants and
// uncategorization of orphaned items. Acyclicity is enforced at
// insertion/reparent time by walking ancestors in memory rather than a
// database constraint, per §9 Design Notes — the tree is small enough
// that this is simpler than a recursive CTE.
package category

import (
	"context"
	"errors"
	"strings"

	"lalan-be/internal/apperr"
	"lalan-be/internal/domain"
	"lalan-be/internal/store"
)

type Service interface {
	Create(ctx context.Context, slug, name, icon string, parentID *int) (*domain.Category, error)
	Update(ctx context.Context, id int, name, icon string, parentID *int) (*domain.Category, error)
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*domain.Category, error)
	Tree(ctx context.Context) ([]domain.Category, error)
}

type service struct {
	categories store.CategoryStore
}

func NewService(categories store.CategoryStore) Service {
	return &service{categories: categories}
}

func (s *service) Create(ctx context.Context, slug, name, icon string, parentID *int) (*domain.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" || name == "" {
		return nil, apperr.Validation(apperr.CodeInvalidField, "slug and name are required")
	}
	if parentID != nil {
		if _, err := s.categories.GetCategory(ctx, *parentID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.ErrCategoryNotFound
			}
			return nil, apperr.Internal(err)
		}
	}
	c := &domain.Category{Slug: slug, Name: name, Icon: icon, ParentID: parentID}
	if err := s.categories.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicateSlug) {
			return nil, apperr.Validation(apperr.CodeInvalidField, "slug already in use").WithField("slug", "duplicate")
		}
		return nil, apperr.Internal(err)
	}
	return c, nil
}

// Update menegakkan acyclicity: kategori tidak boleh menjadi anak dari
// dirinya sendiri atau dari salah satu keturunannya.
func (s *service) Update(ctx context.Context, id int, name, icon string, parentID *int) (*domain.Category, error) {
	c, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrCategoryNotFound
		}
		return nil, apperr.Internal(err)
	}

	if parentID != nil {
		if *parentID == id {
			return nil, apperr.Validation(apperr.CodeInvalidField, "category cannot be its own parent")
		}
		isDescendant, err := s.isDescendant(ctx, id, *parentID)
		if err != nil {
			return nil, err
		}
		if isDescendant {
			return nil, apperr.Validation(apperr.CodeInvalidField, "reparenting would create a cycle")
		}
		if _, err := s.categories.GetCategory(ctx, *parentID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.ErrCategoryNotFound
			}
			return nil, apperr.Internal(err)
		}
	}

	c.Name = name
	c.Icon = icon
	c.ParentID = parentID
	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

// isDescendant melaporkan apakah target adalah keturunan dari root
// dengan menelusuri pohon dari target ke atas lewat ParentID sampai
// menemukan root atau mencapai akar pohon.
func (s *service) isDescendant(ctx context.Context, root, target int) (bool, error) {
	current := target
	for {
		c, err := s.categories.GetCategory(ctx, current)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return false, nil
			}
			return false, apperr.Internal(err)
		}
		if c.ParentID == nil {
			return false, nil
		}
		if *c.ParentID == root {
			return true, nil
		}
		current = *c.ParentID
	}
}

// Delete melakukan cascade ke seluruh keturunan kategori, dan membuat
// item yang berada di kategori manapun yang dihapus jadi uncategorized.
func (s *service) Delete(ctx context.Context, id int) error {
	if _, err := s.categories.GetCategory(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.ErrCategoryNotFound
		}
		return apperr.Internal(err)
	}

	toDelete, err := s.collectSubtree(ctx, id)
	if err != nil {
		return err
	}

	for _, catID := range toDelete {
		if err := s.categories.NullifyItemCategory(ctx, catID); err != nil {
			return apperr.Internal(err)
		}
	}
	// delete leaves-first (reverse collection order) so no row ever
	// references a parent_id that no longer exists mid-operation.
	for i := len(toDelete) - 1; i >= 0; i-- {
		if err := s.categories.DeleteCategory(ctx, toDelete[i]); err != nil && !errors.Is(err, store.ErrNotFound) {
			return apperr.Internal(err)
		}
	}
	return nil
}

func (s *service) collectSubtree(ctx context.Context, root int) ([]int, error) {
	ids := []int{root}
	queue := []int{root}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		children, err := s.categories.ListChildren(ctx, parent)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		for _, child := range children {
			ids = append(ids, child.ID)
			queue = append(queue, child.ID)
		}
	}
	return ids, nil
}

func (s *service) Get(ctx context.Context, id int) (*domain.Category, error) {
	c, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrCategoryNotFound
		}
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *service) Tree(ctx context.Context) ([]domain.Category, error) {
	cs, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return cs, nil
}
