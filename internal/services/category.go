package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventmanagement/internal/domain"
)

const (
	categoryNameMin        = 2
	categoryNameMax        = 50
	categoryDescriptionMax = 200
	categoryIconMax        = 10
	categoryColorMax       = 7
)

type categoryService struct {
	tx           domain.TxManager
	categoryRepo domain.CategoryRepository
	eventRepo    domain.EventRepository
	now          func() time.Time
}

// NewCategoryService creates a CategoryService. The event repository is used to
// refuse deleting categories that still have events.
func NewCategoryService(tx domain.TxManager, categoryRepo domain.CategoryRepository, eventRepo domain.EventRepository) domain.CategoryService {
	return &categoryService{
		tx:           tx,
		categoryRepo: categoryRepo,
		eventRepo:    eventRepo,
		now:          time.Now,
	}
}

func normalizeCategoryInput(in domain.CategoryInput) (domain.CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = trimOptional(in.Description)
	in.Icon = trimOptional(in.Icon)
	in.Color = trimOptional(in.Color)

	var errs fieldErrors
	errs.length("name", in.Name, categoryNameMin, categoryNameMax)
	errs.maxLength("description", in.Description, categoryDescriptionMax)
	errs.maxLength("icon", in.Icon, categoryIconMax)
	errs.maxLength("color", in.Color, categoryColorMax)
	return in, errs.err()
}

func (s *categoryService) Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	in, err := normalizeCategoryInput(in)
	if err != nil {
		return nil, err
	}
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.Category, error) {
		exists, err := s.categoryRepo.ExistsByName(ctx, in.Name)
		if err != nil {
			return nil, fmt.Errorf("check category name: %w", err)
		}
		if exists {
			return nil, domain.ErrDuplicateCategoryName
		}
		now := s.now()
		c := &domain.Category{
			Name:        in.Name,
			Description: in.Description,
			Icon:        in.Icon,
			Color:       in.Color,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.categoryRepo.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		return c, nil
	})
}

func (s *categoryService) Update(ctx context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	in, err := normalizeCategoryInput(in)
	if err != nil {
		return nil, err
	}
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.Category, error) {
		c, err := s.categoryRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get category: %w", err)
		}
		if in.Name != c.Name {
			exists, err := s.categoryRepo.ExistsByName(ctx, in.Name)
			if err != nil {
				return nil, fmt.Errorf("check category name: %w", err)
			}
			if exists {
				return nil, domain.ErrDuplicateCategoryName
			}
		}
		c.Name = in.Name
		c.Description = in.Description
		c.Icon = in.Icon
		c.Color = in.Color
		c.UpdatedAt = s.now()
		if err := s.categoryRepo.Update(ctx, c); err != nil {
			return nil, fmt.Errorf("update category: %w", err)
		}
		return c, nil
	})
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
			return fmt.Errorf("get category: %w", err)
		}
		inUse, err := s.eventRepo.ExistsByCategoryID(ctx, id)
		if err != nil {
			return fmt.Errorf("check category events: %w", err)
		}
		if inUse {
			return domain.ErrCategoryInUse
		}
		if err := s.categoryRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.Category, error) {
		c, err := s.categoryRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get category: %w", err)
		}
		return c, nil
	})
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) ([]*domain.Category, error) {
		list, err := s.categoryRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		return list, nil
	})
}

func (s *categoryService) ListByNameContaining(ctx context.Context, name string) ([]*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.List(ctx)
	}
	return withinTx(ctx, s.tx, func(ctx context.Context) ([]*domain.Category, error) {
		list, err := s.categoryRepo.ListByNameContaining(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("search categories: %w", err)
		}
		return list, nil
	})
}

func (s *categoryService) Count(ctx context.Context) (int, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (int, error) {
		n, err := s.categoryRepo.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("count categories: %w", err)
		}
		return n, nil
	})
}
