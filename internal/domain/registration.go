package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
	RegistrationRefunded  RegistrationStatus = "REFUNDED"
)

// Active reports whether the status holds (or may come to hold) a seat.
// CANCELLED and REFUNDED are terminal.
func (s RegistrationStatus) Active() bool {
	return s == RegistrationPending || s == RegistrationConfirmed
}

// EventRegistration represents a user's claim to a seat at an event.
// AmountPaid is the event's ticket price at the time of registration.
// swagger:model EventRegistration
type EventRegistration struct {
	ID                  int64              `json:"id"`
	EventID             int64              `json:"event_id"`
	EventTitle          string             `json:"event_title,omitempty"`
	UserID              int64              `json:"user_id"`
	Username            string             `json:"username,omitempty"`
	Status              RegistrationStatus `json:"status"`
	PaymentID           *string            `json:"payment_id,omitempty"`
	AmountPaid          float64            `json:"amount_paid"`
	SpecialRequirements *string            `json:"special_requirements,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// NewEventRegistration creates a PENDING registration priced at the event's ticket price.
// ID is set by the repository on create.
func NewEventRegistration(event *Event, userID int64, specialRequirements *string, now time.Time) *EventRegistration {
	return &EventRegistration{
		EventID:             event.ID,
		EventTitle:          event.Title,
		UserID:              userID,
		Status:              RegistrationPending,
		AmountPaid:          event.TicketPrice,
		SpecialRequirements: specialRequirements,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Confirm moves a pending registration to CONFIRMED. It reports false without
// error when already confirmed. Capacity is the caller's concern.
func (r *EventRegistration) Confirm() (bool, error) {
	switch r.Status {
	case RegistrationPending:
		r.Status = RegistrationConfirmed
		return true, nil
	case RegistrationConfirmed:
		return false, nil
	}
	return false, Conflictf("registration in status %s cannot be confirmed", r.Status)
}

// Cancel moves a pending or confirmed registration to CANCELLED. It reports
// false without error when already cancelled.
func (r *EventRegistration) Cancel() (bool, error) {
	switch r.Status {
	case RegistrationPending, RegistrationConfirmed:
		r.Status = RegistrationCancelled
		return true, nil
	case RegistrationCancelled:
		return false, nil
	}
	return false, Conflictf("registration in status %s cannot be cancelled", r.Status)
}

// EventRegistrationRepository defines storage operations for event registrations.
type EventRegistrationRepository interface {
	Create(ctx context.Context, reg *EventRegistration) error
	GetByID(ctx context.Context, id int64) (*EventRegistration, error)
	// GetByIDForUpdate loads the registration and locks its row until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*EventRegistration, error)
	Update(ctx context.Context, reg *EventRegistration) error
	Delete(ctx context.Context, id int64) error
	ListByEventID(ctx context.Context, eventID int64) ([]*EventRegistration, error)
	ListByUserID(ctx context.Context, userID int64) ([]*EventRegistration, error)
	ListConfirmedByEventID(ctx context.Context, eventID int64) ([]*EventRegistration, error)
	ListConfirmedByUserID(ctx context.Context, userID int64) ([]*EventRegistration, error)
	// ExistsActive reports whether a PENDING or CONFIRMED registration exists for the pair.
	ExistsActive(ctx context.Context, eventID, userID int64) (bool, error)
	CountConfirmedByEventID(ctx context.Context, eventID int64) (int, error)
	Count(ctx context.Context) (int, error)
}

// RegistrationService defines the admission protocol and registration lifecycle.
type RegistrationService interface {
	Register(ctx context.Context, eventID, userID int64, specialRequirements *string) (*EventRegistration, error)
	Confirm(ctx context.Context, id int64) (*EventRegistration, error)
	Cancel(ctx context.Context, id int64) (*EventRegistration, error)
	Delete(ctx context.Context, id int64) error

	GetByID(ctx context.Context, id int64) (*EventRegistration, error)
	GetByEvent(ctx context.Context, eventID int64) ([]*EventRegistration, error)
	GetByUser(ctx context.Context, userID int64) ([]*EventRegistration, error)
	GetConfirmedByEvent(ctx context.Context, eventID int64) ([]*EventRegistration, error)
	GetConfirmedByUser(ctx context.Context, userID int64) ([]*EventRegistration, error)
	CountConfirmedByEvent(ctx context.Context, eventID int64) (int, error)
	Count(ctx context.Context) (int, error)
}
