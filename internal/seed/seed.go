package seed

import (
	"context"
	"fmt"
	"log/slog"

	"eventmanagement/internal/domain"
)

const (
	AdminUsername = "admin"
	AdminEmail    = "admin@eventmanagement.com"
)

type category struct {
	name, description, icon, color string
}

var defaultCategories = []category{
	{"Technology", "Technology and IT related events", "💻", "#3B82F6"},
	{"Business", "Business and entrepreneurship events", "💼", "#10B981"},
	{"Education", "Educational and learning events", "📚", "#F59E0B"},
	{"Entertainment", "Entertainment and leisure events", "🎭", "#EF4444"},
	{"Sports", "Sports and fitness events", "⚽", "#8B5CF6"},
	{"Music", "Music and performance events", "🎵", "#EC4899"},
	{"Food", "Food and culinary events", "🍕", "#F97316"},
	{"Health", "Health and wellness events", "🏥", "#06B6D4"},
}

// Seeder populates an empty database with the default categories and an
// administrator account. Each step only runs when its table is empty.
type Seeder struct {
	categories domain.CategoryService
	users      domain.UserService
	logger     *slog.Logger
}

func NewSeeder(categories domain.CategoryService, users domain.UserService, logger *slog.Logger) *Seeder {
	return &Seeder{categories: categories, users: users, logger: logger}
}

// Run seeds categories and the admin user.
func (s *Seeder) Run(ctx context.Context, adminPassword string) error {
	if err := s.seedCategories(ctx); err != nil {
		return err
	}
	return s.seedAdmin(ctx, adminPassword)
}

func (s *Seeder) seedCategories(ctx context.Context) error {
	n, err := s.categories.Count(ctx)
	if err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, c := range defaultCategories {
		in := domain.CategoryInput{
			Name:        c.name,
			Description: &c.description,
			Icon:        &c.icon,
			Color:       &c.color,
		}
		if _, err := s.categories.Create(ctx, in); err != nil {
			return fmt.Errorf("seed category %s: %w", c.name, err)
		}
	}
	s.logger.InfoContext(ctx, "seeded categories", "count", len(defaultCategories))
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, password string) error {
	n, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}
	admin, err := s.users.Register(ctx, domain.RegisterUserInput{
		Username:  AdminUsername,
		Email:     AdminEmail,
		Password:  password,
		FirstName: "Admin",
		LastName:  "User",
		Role:      domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	s.logger.InfoContext(ctx, "seeded admin user", "user_id", admin.ID, "username", admin.Username)
	return nil
}
