package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventmanagement/internal/domain"
)

type authService struct {
	tx          domain.TxManager
	userRepo    domain.UserRepository
	hasher      domain.PasswordHasher
	tokenIssuer domain.TokenIssuer
}

// NewAuthService creates an AuthService that checks credentials with hasher and
// issues tokens with tokenIssuer.
func NewAuthService(tx domain.TxManager, userRepo domain.UserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer) domain.AuthService {
	return &authService{
		tx:          tx,
		userRepo:    userRepo,
		hasher:      hasher,
		tokenIssuer: tokenIssuer,
	}
}

func (s *authService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := withinTx(ctx, s.tx, func(ctx context.Context) (*domain.User, error) {
		if strings.Contains(identifier, "@") {
			return s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
		}
		return s.userRepo.GetByUsername(ctx, identifier)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if !user.Active {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("verify password: %w", err)
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}
