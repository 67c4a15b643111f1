package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventmanagement/internal/domain"
)

const categoryColumns = `
	c.id, c.name, c.description, c.icon, c.color,
	(SELECT COUNT(*) FROM events e WHERE e.category_id = c.id),
	c.created_at, c.updated_at`

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{DB: db}
}

func scanCategory(s rowScanner) (*domain.Category, error) {
	c := &domain.Category{}
	var description, icon, color sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &description, &icon, &color, &c.EventCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Description = nullableString(description)
	c.Icon = nullableString(icon)
	c.Color = nullableString(color)
	return c, nil
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (name, description, icon, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		c.Name, c.Description, c.Icon, c.Color, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.id = $1`
	c, err := scanCategory(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *categoryRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Category, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories c ORDER BY c.name ASC`)
}

func (r *categoryRepository) ListByNameContaining(ctx context.Context, name string) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.name ILIKE $1 ORDER BY c.name ASC`
	return r.list(ctx, query, containsPattern(name))
}

func (r *categoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, icon = $3, color = $4, updated_at = $5
		WHERE id = $6
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, c.Name, c.Description, c.Icon, c.Color, c.UpdatedAt, c.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryInUse
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

func (r *categoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}
