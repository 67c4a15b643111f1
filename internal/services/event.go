package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventmanagement/internal/domain"
)

const (
	eventTitleMin       = 3
	eventTitleMax       = 100
	eventDescriptionMin = 10
	eventDescriptionMax = 1000
)

type eventService struct {
	tx           domain.TxManager
	eventRepo    domain.EventRepository
	categoryRepo domain.CategoryRepository
	userRepo     domain.UserRepository
	logger       *slog.Logger
	now          func() time.Time
}

func NewEventService(tx domain.TxManager,
	eventRepo domain.EventRepository,
	categoryRepo domain.CategoryRepository,
	userRepo domain.UserRepository,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		tx:           tx,
		eventRepo:    eventRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// validateEvent checks the field constraints of e. The start date must lie in
// the future only when checkStart is set.
func validateEvent(e *domain.Event, checkStart bool, now time.Time) error {
	var errs fieldErrors
	errs.length("title", e.Title, eventTitleMin, eventTitleMax)
	errs.length("description", e.Description, eventDescriptionMin, eventDescriptionMax)
	if e.Location == "" {
		errs.add("location is required")
	}
	if e.StartDate.IsZero() {
		errs.add("start_date is required")
	} else if checkStart && !startsAfter(e.StartDate, now) {
		errs.add("start_date must be in the future")
	}
	if e.EndDate.IsZero() {
		errs.add("end_date is required")
	} else if e.EndDate.Before(e.StartDate) {
		errs.add("end_date must not be before start_date")
	}
	if e.MaxCapacity < domain.MinEventCapacity || e.MaxCapacity > domain.MaxEventCapacity {
		errs.add("max_capacity must be between %d and %d", domain.MinEventCapacity, domain.MaxEventCapacity)
	}
	switch {
	case e.TicketPrice < 0:
		errs.add("ticket_price must not be negative")
	case !domain.ValidTicketPrice(e.TicketPrice):
		errs.add("ticket_price must be at most %.2f with at most two decimals", domain.MaxTicketPrice)
	}
	if e.CategoryID <= 0 {
		errs.add("category_id is required")
	}
	return errs.err()
}

func (s *eventService) Create(ctx context.Context, in domain.CreateEventInput, organizerID int64) (*domain.Event, error) {
	now := s.now()
	ev := &domain.Event{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Location:    strings.TrimSpace(in.Location),
		MaxCapacity: in.MaxCapacity,
		TicketPrice: in.TicketPrice,
		Status:      domain.EventDraft,
		CategoryID:  in.CategoryID,
		OrganizerID: organizerID,
		ImageURL:    trimOptional(in.ImageURL),
		Tags:        trimOptional(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateEvent(ev, true, now); err != nil {
		return nil, err
	}

	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.Event, error) {
		if _, err := s.userRepo.GetByID(ctx, organizerID); err != nil {
			return nil, organizerLookupError(err)
		}
		if _, err := s.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
			return nil, fmt.Errorf("get category: %w", err)
		}
		if err := s.eventRepo.Create(ctx, ev); err != nil {
			return nil, fmt.Errorf("create event: %w", err)
		}
		s.logger.InfoContext(ctx, "event created", "event_id", ev.ID, "organizer_id", organizerID)
		return s.reload(ctx, ev.ID)
	})
}

func (s *eventService) reload(ctx context.Context, id int64) (*domain.Event, error) {
	ev, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// loadOwned locks the event and checks that organizerID owns it.
func (s *eventService) loadOwned(ctx context.Context, id, organizerID int64) (*domain.Event, error) {
	ev, err := s.eventRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !ev.IsOrganizedBy(organizerID) {
		return nil, domain.ErrNotOrganizer
	}
	return ev, nil
}

func (s *eventService) Update(ctx context.Context, id int64, in domain.UpdateEventInput, organizerID int64) (*domain.Event, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.Event, error) {
		ev, err := s.loadOwned(ctx, id, organizerID)
		if err != nil {
			return nil, err
		}
		if err := ev.EnsureEditable(); err != nil {
			return nil, err
		}

		if in.Title != nil {
			ev.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			ev.Description = strings.TrimSpace(*in.Description)
		}
		datesChanged := false
		if in.StartDate != nil {
			ev.StartDate = *in.StartDate
			datesChanged = true
		}
		if in.EndDate != nil {
			ev.EndDate = *in.EndDate
			datesChanged = true
		}
		if in.Location != nil {
			ev.Location = strings.TrimSpace(*in.Location)
		}
		if in.MaxCapacity != nil {
			ev.MaxCapacity = *in.MaxCapacity
		}
		if in.TicketPrice != nil {
			ev.TicketPrice = *in.TicketPrice
		}
		categoryChanged := in.CategoryID != nil && *in.CategoryID != ev.CategoryID
		if in.CategoryID != nil {
			ev.CategoryID = *in.CategoryID
		}
		if in.ImageURL != nil {
			ev.ImageURL = trimOptional(in.ImageURL)
		}
		if in.Tags != nil {
			ev.Tags = trimOptional(in.Tags)
		}

		now := s.now()
		if err := validateEvent(ev, datesChanged, now); err != nil {
			return nil, err
		}
		if ev.MaxCapacity < ev.ConfirmedCount {
			return nil, domain.Conflictf("max_capacity %d is below the %d confirmed registrations", ev.MaxCapacity, ev.ConfirmedCount)
		}
		if categoryChanged {
			if _, err := s.categoryRepo.GetByID(ctx, ev.CategoryID); err != nil {
				return nil, fmt.Errorf("get category: %w", err)
			}
		}

		ev.UpdatedAt = now
		if err := s.eventRepo.Update(ctx, ev); err != nil {
			return nil, fmt.Errorf("update event: %w", err)
		}
		return s.reload(ctx, ev.ID)
	})
}

func (s *eventService) Publish(ctx context.Context, id, organizerID int64) (*domain.Event, error) {
	return s.transition(ctx, id, organizerID, "published", (*domain.Event).Publish)
}

func (s *eventService) Cancel(ctx context.Context, id, organizerID int64) (*domain.Event, error) {
	return s.transition(ctx, id, organizerID, "cancelled", (*domain.Event).Cancel)
}

// transition applies a status change. Unchanged events are returned without a write.
func (s *eventService) transition(ctx context.Context, id, organizerID int64, verb string, apply func(*domain.Event) (bool, error)) (*domain.Event, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.Event, error) {
		ev, err := s.loadOwned(ctx, id, organizerID)
		if err != nil {
			return nil, err
		}
		changed, err := apply(ev)
		if err != nil {
			return nil, err
		}
		if !changed {
			return ev, nil
		}
		ev.UpdatedAt = s.now()
		if err := s.eventRepo.Update(ctx, ev); err != nil {
			return nil, fmt.Errorf("update event: %w", err)
		}
		s.logger.InfoContext(ctx, "event "+verb, "event_id", ev.ID, "status", ev.Status)
		return ev, nil
	})
}

func (s *eventService) Delete(ctx context.Context, id, organizerID int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.loadOwned(ctx, id, organizerID); err != nil {
			return err
		}
		if err := s.eventRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		s.logger.InfoContext(ctx, "event deleted", "event_id", id)
		return nil
	})
}

func (s *eventService) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.Event, error) {
		return s.reload(ctx, id)
	})
}

type eventLister func(ctx context.Context) ([]*domain.Event, int, error)

func (s *eventService) page(ctx context.Context, page domain.PageRequest, list eventLister) (*domain.Page[*domain.Event], error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (*domain.Page[*domain.Event], error) {
		events, total, err := list(ctx)
		if err != nil {
			return nil, err
		}
		return domain.NewPage(events, page, total), nil
	})
}

func (s *eventService) GetAll(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	return s.page(ctx, page, func(ctx context.Context) ([]*domain.Event, int, error) {
		events, total, err := s.eventRepo.ListByStatus(ctx, domain.EventPublished, page)
		if err != nil {
			return nil, 0, fmt.Errorf("list published events: %w", err)
		}
		return events, total, nil
	})
}

func (s *eventService) GetAllRegardlessOfStatus(ctx context.Context, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	return s.page(ctx, page, func(ctx context.Context) ([]*domain.Event, int, error) {
		events, total, err := s.eventRepo.ListAll(ctx, page)
		if err != nil {
			return nil, 0, fmt.Errorf("list events: %w", err)
		}
		return events, total, nil
	})
}

func (s *eventService) Search(ctx context.Context, term string, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.ErrEmptySearchTerm
	}
	return s.page(ctx, page, func(ctx context.Context) ([]*domain.Event, int, error) {
		events, total, err := s.eventRepo.Search(ctx, term, page)
		if err != nil {
			return nil, 0, fmt.Errorf("search events: %w", err)
		}
		return events, total, nil
	})
}

func (s *eventService) GetUpcoming(ctx context.Context) ([]*domain.Event, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) ([]*domain.Event, error) {
		events, err := s.eventRepo.ListUpcoming(ctx, s.now())
		if err != nil {
			return nil, fmt.Errorf("list upcoming events: %w", err)
		}
		return events, nil
	})
}

func (s *eventService) GetByCategory(ctx context.Context, categoryID int64, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	return s.page(ctx, page, func(ctx context.Context) ([]*domain.Event, int, error) {
		if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
			return nil, 0, fmt.Errorf("get category: %w", err)
		}
		events, total, err := s.eventRepo.ListByCategoryID(ctx, categoryID, page)
		if err != nil {
			return nil, 0, fmt.Errorf("list events by category: %w", err)
		}
		return events, total, nil
	})
}

func (s *eventService) GetByOrganizer(ctx context.Context, organizerID int64, page domain.PageRequest) (*domain.Page[*domain.Event], error) {
	return s.page(ctx, page, func(ctx context.Context) ([]*domain.Event, int, error) {
		if _, err := s.userRepo.GetByID(ctx, organizerID); err != nil {
			return nil, 0, organizerLookupError(err)
		}
		events, total, err := s.eventRepo.ListByOrganizerID(ctx, organizerID, page)
		if err != nil {
			return nil, 0, fmt.Errorf("list events by organizer: %w", err)
		}
		return events, total, nil
	})
}

func (s *eventService) GetWithAvailableCapacity(ctx context.Context) ([]*domain.Event, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) ([]*domain.Event, error) {
		events, err := s.eventRepo.ListWithAvailableCapacity(ctx)
		if err != nil {
			return nil, fmt.Errorf("list available events: %w", err)
		}
		return events, nil
	})
}

func (s *eventService) Count(ctx context.Context) (int, error) {
	return withinTx(ctx, s.tx, func(ctx context.Context) (int, error) {
		n, err := s.eventRepo.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("count events: %w", err)
		}
		return n, nil
	})
}

// organizerLookupError reports a missing user as a missing organizer.
func organizerLookupError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrOrganizerNotFound
	}
	return fmt.Errorf("get organizer: %w", err)
}
