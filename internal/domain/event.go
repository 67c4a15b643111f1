package domain

import (
	"context"
	"math"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "DRAFT"
	EventPublished EventStatus = "PUBLISHED"
	EventCancelled EventStatus = "CANCELLED"
	EventCompleted EventStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventPublished, EventCancelled, EventCompleted:
		return true
	}
	return false
}

// Event limits.
const (
	MinEventCapacity = 1
	MaxEventCapacity = 10000
	// MaxTicketPrice is the largest value a NUMERIC(10,2) column holds.
	MaxTicketPrice = 99_999_999.99
)

// ValidTicketPrice reports whether p is a storable price: between 0 and
// MaxTicketPrice with at most two decimals.
func ValidTicketPrice(p float64) bool {
	if math.IsNaN(p) || p < 0 || p > MaxTicketPrice {
		return false
	}
	cents := p * 100
	return math.Abs(cents-math.Round(cents)) < 1e-3
}

// Event represents a scheduled gathering. CategoryName, OrganizerName and
// ConfirmedCount are read-side fields filled by the repository.
// swagger:model Event
type Event struct {
	ID             int64       `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	StartDate      time.Time   `json:"start_date"`
	EndDate        time.Time   `json:"end_date"`
	Location       string      `json:"location"`
	MaxCapacity    int         `json:"max_capacity"`
	TicketPrice    float64     `json:"ticket_price"`
	Status         EventStatus `json:"status"`
	CategoryID     int64       `json:"category_id"`
	CategoryName   string      `json:"category_name,omitempty"`
	OrganizerID    int64       `json:"organizer_id"`
	OrganizerName  string      `json:"organizer_name,omitempty"`
	ImageURL       *string     `json:"image_url,omitempty"`
	Tags           *string     `json:"tags,omitempty"`
	ConfirmedCount int         `json:"current_registrations"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsOrganizedBy reports whether userID is the event's organizer.
func (e *Event) IsOrganizedBy(userID int64) bool {
	return e.OrganizerID == userID
}

// EnsureEditable fails for events whose details can no longer change.
func (e *Event) EnsureEditable() error {
	switch e.Status {
	case EventDraft, EventPublished:
		return nil
	}
	return Conflictf("event in status %s cannot be updated", e.Status)
}

// Publish moves a draft to PUBLISHED. It reports false without error when the
// event is already published.
func (e *Event) Publish() (bool, error) {
	switch e.Status {
	case EventDraft:
		e.Status = EventPublished
		return true, nil
	case EventPublished:
		return false, nil
	}
	return false, Conflictf("event in status %s cannot be published", e.Status)
}

// Cancel moves a draft or published event to CANCELLED. It reports false
// without error when the event is already cancelled.
func (e *Event) Cancel() (bool, error) {
	switch e.Status {
	case EventDraft, EventPublished:
		e.Status = EventCancelled
		return true, nil
	case EventCancelled:
		return false, nil
	}
	return false, Conflictf("event in status %s cannot be cancelled", e.Status)
}

// CreateEventInput carries the fields of a new event.
type CreateEventInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Location    string
	MaxCapacity int
	TicketPrice float64
	CategoryID  int64
	ImageURL    *string
	Tags        *string
}

// UpdateEventInput carries optional changes; nil fields are left unchanged.
type UpdateEventInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Location    *string
	MaxCapacity *int
	TicketPrice *float64
	CategoryID  *int64
	ImageURL    *string
	Tags        *string
}

// EventRepository defines the interface for event storage.
// Paginated list methods return the page content and the total row count.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	// GetByIDForUpdate loads the event and locks its row until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id int64) error
	ListByStatus(ctx context.Context, status EventStatus, page PageRequest) ([]*Event, int, error)
	ListAll(ctx context.Context, page PageRequest) ([]*Event, int, error)
	ListByCategoryID(ctx context.Context, categoryID int64, page PageRequest) ([]*Event, int, error)
	ListByOrganizerID(ctx context.Context, organizerID int64, page PageRequest) ([]*Event, int, error)
	// Search matches term case-insensitively against title or description of published events.
	Search(ctx context.Context, term string, page PageRequest) ([]*Event, int, error)
	// ListUpcoming returns published events starting after now, earliest first.
	ListUpcoming(ctx context.Context, now time.Time) ([]*Event, error)
	// ListWithAvailableCapacity returns published events whose confirmed count is below capacity.
	ListWithAvailableCapacity(ctx context.Context) ([]*Event, error)
	ExistsByCategoryID(ctx context.Context, categoryID int64) (bool, error)
	IsFull(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

// EventService defines the event lifecycle. Mutating operations take the acting
// organizer's user ID and fail with ErrNotOrganizer for anyone else.
type EventService interface {
	Create(ctx context.Context, in CreateEventInput, organizerID int64) (*Event, error)
	Update(ctx context.Context, id int64, in UpdateEventInput, organizerID int64) (*Event, error)
	Publish(ctx context.Context, id, organizerID int64) (*Event, error)
	Cancel(ctx context.Context, id, organizerID int64) (*Event, error)
	Delete(ctx context.Context, id, organizerID int64) error

	GetByID(ctx context.Context, id int64) (*Event, error)
	GetAll(ctx context.Context, page PageRequest) (*Page[*Event], error)
	GetAllRegardlessOfStatus(ctx context.Context, page PageRequest) (*Page[*Event], error)
	Search(ctx context.Context, term string, page PageRequest) (*Page[*Event], error)
	GetUpcoming(ctx context.Context) ([]*Event, error)
	GetByCategory(ctx context.Context, categoryID int64, page PageRequest) (*Page[*Event], error)
	GetByOrganizer(ctx context.Context, organizerID int64, page PageRequest) (*Page[*Event], error)
	GetWithAvailableCapacity(ctx context.Context) ([]*Event, error)
	Count(ctx context.Context) (int, error)
}
