package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventmanagement/internal/domain"
)

const (
	usernameMin = 3
	usernameMax = 50
	nameMin     = 2
	nameMax     = 50
	emailMax    = 255
)

type userService struct {
	tx       domain.TxManager
	userRepo domain.UserRepository
	hasher   domain.PasswordHasher
	now      func() time.Time
}

// NewUserService creates a UserService. Passwords are salted and hashed with
// hasher before they reach the repository.
func NewUserService(tx domain.TxManager, userRepo domain.UserRepository, hasher domain.PasswordHasher) domain.UserService {
	return &userService{
		tx:       tx,
		userRepo: userRepo,
		hasher:   hasher,
		now:      time.Now,
	}
}

type profileFields struct {
	username  string
	email     string
	firstName string
	lastName  string
}

func (p *profileFields) normalize() {
	p.username = strings.TrimSpace(p.username)
	p.email = strings.ToLower(strings.TrimSpace(p.email))
	p.firstName = strings.TrimSpace(p.firstName)
	p.lastName = strings.TrimSpace(p.lastName)
}

func (p profileFields) validate(errs *fieldErrors) {
	errs.length("username", p.username, usernameMin, usernameMax)
	switch {
	case p.email == "":
		errs.add("email is required")
	case len(p.email) > emailMax || !emailRegexp.MatchString(p.email):
		errs.add("email must be a valid address")
	}
	errs.length("first_name", p.firstName, nameMin, nameMax)
	errs.length("last_name", p.lastName, nameMin, nameMax)
}

func (s *userService) Register(ctx context.Context, in domain.RegisterUserInput) (*domain.User, error) {
	p := profileFields{username: in.Username, email: in.Email, firstName: in.FirstName, lastName: in.LastName}
	p.normalize()

	var errs fieldErrors
	p.validate(&errs)
	if in.Password == "" {
		errs.add("password is required")
	}
	if in.Role == "" {
		errs.add("role is required")
	} else if !in.Role.Valid() {
		errs.add("role must be one of USER, ORGANIZER, ADMIN")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.User, error) {
		if err := s.ensureUnique(ctx, p.username, p.email); err != nil {
			return nil, err
		}
		now := s.now()
		u := &domain.User{
			Username:        p.username,
			Email:           p.email,
			PasswordHash:    hash,
			Salt:            salt,
			FirstName:       p.firstName,
			LastName:        p.lastName,
			PhoneNumber:     trimOptional(in.PhoneNumber),
			Role:            in.Role,
			ProfileImageURL: trimOptional(in.ProfileImageURL),
			Active:          active,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.userRepo.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return u, nil
	})
}

// ensureUnique checks the non-empty arguments against existing users.
func (s *userService) ensureUnique(ctx context.Context, username, email string) error {
	if username != "" {
		exists, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if exists {
			return domain.ErrDuplicateUsername
		}
	}
	if email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return domain.ErrDuplicateEmail
		}
	}
	return nil
}

func (s *userService) Update(ctx context.Context, id int64, in domain.UpdateUserInput) (*domain.User, error) {
	p := profileFields{username: in.Username, email: in.Email, firstName: in.FirstName, lastName: in.LastName}
	p.normalize()

	var errs fieldErrors
	p.validate(&errs)
	if in.Role != nil && !in.Role.Valid() {
		errs.add("role must be one of USER, ORGANIZER, ADMIN")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.User, error) {
		u, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}

		var changedUsername, changedEmail string
		if p.username != u.Username {
			changedUsername = p.username
		}
		if !strings.EqualFold(p.email, u.Email) {
			changedEmail = p.email
		}
		if err := s.ensureUnique(ctx, changedUsername, changedEmail); err != nil {
			return nil, err
		}

		u.Username = p.username
		u.Email = p.email
		u.FirstName = p.firstName
		u.LastName = p.lastName
		u.PhoneNumber = trimOptional(in.PhoneNumber)
		u.ProfileImageURL = trimOptional(in.ProfileImageURL)
		if in.Role != nil {
			u.Role = *in.Role
		}
		if in.Active != nil {
			u.Active = *in.Active
		}
		u.UpdatedAt = s.now()
		if err := s.userRepo.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return u, nil
	})
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if err := s.userRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.User, error) {
		u, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		return u, nil
	})
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.User, error) {
		u, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			return nil, fmt.Errorf("get user by username: %w", err)
		}
		return u, nil
	})
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.User, error) {
		u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return nil, fmt.Errorf("get user by email: %w", err)
		}
		return u, nil
	})
}

func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) ([]*domain.User, error) {
		users, err := s.userRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		return users, nil
	})
}

func (s *userService) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if !role.Valid() {
		return nil, domain.InvalidInputf("unknown role %q", role)
	}
	return withinTx(ctx, s.tx, func(ctx context.Context) ([]*domain.User, error) {
		users, err := s.userRepo.ListByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("list users by role: %w", err)
		}
		return users, nil
	})
}

func (s *userService) Count(ctx context.Context) (int, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (int, error) {
		n, err := s.userRepo.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("count users: %w", err)
		}
		return n, nil
	})
}
