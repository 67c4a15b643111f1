package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventmanagement/internal/domain"
)

type registrationService struct {
	tx               domain.TxManager
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	registrationRepo domain.EventRegistrationRepository
	logger           *slog.Logger
	now              func() time.Time
}

// NewRegistrationService creates a RegistrationService. Admission and
// confirmation hold the event row lock, so locks are always taken event first,
// registration second.
func NewRegistrationService(tx domain.TxManager,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	registrationRepo domain.EventRegistrationRepository,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		tx:               tx,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, userID int64, specialRequirements *string) (*domain.EventRegistration, error) {
	specialRequirements = trimOptional(specialRequirements)

	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.EventRegistration, error) {
		ev, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("get event: %w", err)
		}
		if ev.Status != domain.EventPublished {
			return nil, domain.ErrEventNotPublished
		}

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}

		active, err := s.registrationRepo.ExistsActive(ctx, eventID, userID)
		if err != nil {
			return nil, fmt.Errorf("check registration: %w", err)
		}
		if active {
			return nil, domain.ErrAlreadyRegistered
		}

		confirmed, err := s.registrationRepo.CountConfirmedByEventID(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("count confirmed registrations: %w", err)
		}
		if confirmed >= ev.MaxCapacity {
			return nil, domain.ErrEventFull
		}

		reg := domain.NewEventRegistration(ev, user.ID, specialRequirements, s.now())
		reg.Username = user.Username
		if err := s.registrationRepo.Create(ctx, reg); err != nil {
			return nil, fmt.Errorf("create registration: %w", err)
		}
		s.logger.InfoContext(ctx, "registration admitted",
			"registration_id", reg.ID, "event_id", eventID, "user_id", userID)
		return reg, nil
	})
}

func (s *registrationService) Confirm(ctx context.Context, id int64) (*domain.EventRegistration, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.EventRegistration, error) {
		reg, err := s.registrationRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get registration: %w", err)
		}
		ev, err := s.eventRepo.GetByIDForUpdate(ctx, reg.EventID)
		if err != nil {
			return nil, fmt.Errorf("get event: %w", err)
		}
		// Re-read under the event lock; a concurrent cancel may have landed.
		reg, err = s.registrationRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get registration: %w", err)
		}

		changed, err := reg.Confirm()
		if err != nil {
			return nil, err
		}
		if !changed {
			return reg, nil
		}

		confirmed, err := s.registrationRepo.CountConfirmedByEventID(ctx, ev.ID)
		if err != nil {
			return nil, fmt.Errorf("count confirmed registrations: %w", err)
		}
		if confirmed >= ev.MaxCapacity {
			return nil, domain.ErrEventFull
		}

		reg.UpdatedAt = s.now()
		if err := s.registrationRepo.Update(ctx, reg); err != nil {
			return nil, fmt.Errorf("update registration: %w", err)
		}
		s.logger.InfoContext(ctx, "registration confirmed", "registration_id", reg.ID, "event_id", ev.ID)
		return reg, nil
	})
}

func (s *registrationService) Cancel(ctx context.Context, id int64) (*domain.EventRegistration, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.EventRegistration, error) {
		reg, err := s.registrationRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get registration: %w", err)
		}
		changed, err := reg.Cancel()
		if err != nil {
			return nil, err
		}
		if !changed {
			return reg, nil
		}
		reg.UpdatedAt = s.now()
		if err := s.registrationRepo.Update(ctx, reg); err != nil {
			return nil, fmt.Errorf("update registration: %w", err)
		}
		s.logger.InfoContext(ctx, "registration cancelled", "registration_id", reg.ID, "event_id", reg.EventID)
		return reg, nil
	})
}

func (s *registrationService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.registrationRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete registration: %w", err)
		}
		return nil
	})
}

func (s *registrationService) GetByID(ctx context.Context, id int64) (*domain.EventRegistration, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.EventRegistration, error) {
		reg, err := s.registrationRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get registration: %w", err)
		}
		return reg, nil
	})
}

type registrationLister func(ctx context.Context, id int64) ([]*domain.EventRegistration, error)

func (s *registrationService) list(ctx context.Context, id int64, what string, list registrationLister) ([]*domain.EventRegistration, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) ([]*domain.EventRegistration, error) {
		regs, err := list(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", what, err)
		}
		return regs, nil
	})
}

func (s *registrationService) GetByEvent(ctx context.Context, eventID int64) ([]*domain.EventRegistration, error) {
	return s.list(ctx, eventID, "event registrations", s.registrationRepo.ListByEventID)
}

func (s *registrationService) GetByUser(ctx context.Context, userID int64) ([]*domain.EventRegistration, error) {
	return s.list(ctx, userID, "user registrations", s.registrationRepo.ListByUserID)
}

func (s *registrationService) GetConfirmedByEvent(ctx context.Context, eventID int64) ([]*domain.EventRegistration, error) {
	return s.list(ctx, eventID, "confirmed event registrations", s.registrationRepo.ListConfirmedByEventID)
}

func (s *registrationService) GetConfirmedByUser(ctx context.Context, userID int64) ([]*domain.EventRegistration, error) {
	return s.list(ctx, userID, "confirmed user registrations", s.registrationRepo.ListConfirmedByUserID)
}

func (s *registrationService) CountConfirmedByEvent(ctx context.Context, eventID int64) (int, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (int, error) {
		n, err := s.registrationRepo.CountConfirmedByEventID(ctx, eventID)
		if err != nil {
			return 0, fmt.Errorf("count confirmed registrations: %w", err)
		}
		return n, nil
	})
}

func (s *registrationService) Count(ctx context.Context) (int, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (int, error) {
		n, err := s.registrationRepo.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("count registrations: %w", err)
		}
		return n, nil
	})
}
