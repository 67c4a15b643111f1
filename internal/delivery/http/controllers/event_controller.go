package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"eventmanagement/internal/delivery/http/helpers"
	"eventmanagement/internal/delivery/http/middleware"
	"eventmanagement/internal/domain"
)

// CreateEventRequest is the request body for POST /events. The authenticated
// user becomes the organizer; the event starts as DRAFT.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Location    string    `json:"location"`
	MaxCapacity int       `json:"max_capacity"`
	TicketPrice float64   `json:"ticket_price"`
	CategoryID  int64     `json:"category_id"`
	ImageURL    *string   `json:"image_url"`
	Tags        *string   `json:"tags"`
}

// Validate implements Validator. Whether start_date lies in the future is
// checked by the service against its clock.
func (e CreateEventRequest) Validate() []string {
	var errs checks
	errs.length("title", e.Title, 3, 100)
	errs.length("description", e.Description, 10, 1000)
	errs.required("location", e.Location)
	errs.add(e.StartDate.IsZero(), "start_date is required")
	errs.add(e.EndDate.IsZero(), "end_date is required")
	errs.add(!e.StartDate.IsZero() && e.EndDate.Before(e.StartDate), "end_date must not be before start_date")
	errs.validCapacity(e.MaxCapacity)
	errs.validPrice(e.TicketPrice)
	errs.add(e.CategoryID <= 0, "category_id is required")
	return errs
}

// UpdateEventRequest is the request body for PUT /events/{eventID}. All fields
// are optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Location    *string    `json:"location"`
	MaxCapacity *int       `json:"max_capacity"`
	TicketPrice *float64   `json:"ticket_price"`
	CategoryID  *int64     `json:"category_id"`
	ImageURL    *string    `json:"image_url"`
	Tags        *string    `json:"tags"`
}

// Validate implements Validator.
func (e UpdateEventRequest) Validate() []string {
	var errs checks
	if e.Title != nil {
		errs.length("title", *e.Title, 3, 100)
	}
	if e.Description != nil {
		errs.length("description", *e.Description, 10, 1000)
	}
	if e.Location != nil {
		errs.required("location", *e.Location)
	}
	if e.StartDate != nil && e.EndDate != nil {
		errs.add(e.EndDate.Before(*e.StartDate), "end_date must not be before start_date")
	}
	if e.MaxCapacity != nil {
		errs.validCapacity(*e.MaxCapacity)
	}
	if e.TicketPrice != nil {
		errs.validPrice(*e.TicketPrice)
	}
	errs.add(e.CategoryID != nil && *e.CategoryID <= 0, "category_id must be positive")
	return errs
}

func (c *checks) validCapacity(capacity int) {
	c.add(capacity < domain.MinEventCapacity || capacity > domain.MaxEventCapacity,
		fmt.Sprintf("max_capacity must be between %d and %d", domain.MinEventCapacity, domain.MaxEventCapacity))
}

func (c *checks) validPrice(price float64) {
	if price < 0 {
		c.add(true, "ticket_price must not be negative")
		return
	}
	c.add(!domain.ValidTicketPrice(price),
		fmt.Sprintf("ticket_price must be at most %.2f with at most two decimals", domain.MaxTicketPrice))
}

// EventSuccessResponse is the success envelope for single-event responses.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for unpaginated event lists.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventPage is a page of events.
type EventPage struct {
	Content       []*domain.Event `json:"content"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
	TotalElements int             `json:"total_elements"`
	TotalPages    int             `json:"total_pages"`
}

// EventPageSuccessResponse is the success envelope for paginated event lists.
type EventPageSuccessResponse struct {
	Data  EventPage         `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventController handles event endpoints.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{Logger: logger, Service: svc}
}

// organizerID returns the authenticated user, writing 401 when there is none.
func organizerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return id, ok
}

// Create godoc
// @Summary Create an event
// @Description Creates a DRAFT event organized by the authenticated user. start_date must be in the future.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (category or organizer)"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := organizerID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.Create(r.Context(), domain.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		MaxCapacity: req.MaxCapacity,
		TicketPrice: req.TicketPrice,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	}, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// Update godoc
// @Summary Update an event
// @Description Only the organizer may update. Cancelled and completed events cannot be updated.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := organizerID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.Update(r.Context(), id, domain.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		MaxCapacity: req.MaxCapacity,
		TicketPrice: req.TicketPrice,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
	}, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

type eventTransition func(r *http.Request, id, organizerID int64) (*domain.Event, error)

func (c *EventController) transition(w http.ResponseWriter, r *http.Request, apply eventTransition) {
	id, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := organizerID(w, r)
	if !ok {
		return
	}
	event, err := apply(r, id, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Publish godoc
// @Summary Publish an event
// @Description Moves a DRAFT event to PUBLISHED. Publishing a published event is a no-op.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (cancelled or completed)"
// @Router /events/{eventID}/publish [patch]
func (c *EventController) Publish(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, func(r *http.Request, id, userID int64) (*domain.Event, error) {
		return c.Service.Publish(r.Context(), id, userID)
	})
}

// Cancel godoc
// @Summary Cancel an event
// @Description Moves a DRAFT or PUBLISHED event to CANCELLED. Cancelling a cancelled event is a no-op.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (completed)"
// @Router /events/{eventID}/cancel [patch]
func (c *EventController) Cancel(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, func(r *http.Request, id, userID int64) (*domain.Event, error) {
		return c.Service.Cancel(r.Context(), id, userID)
	})
}

// Delete godoc
// @Summary Delete an event
// @Description Deletes the event and its registrations. Only the organizer may delete.
// @Tags events
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 204
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := organizerID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

func (c *EventController) writePage(w http.ResponseWriter, r *http.Request, page *domain.Page[*domain.Event], err error) {
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventPage(*page))
}

func (c *EventController) writeList(w http.ResponseWriter, r *http.Request, events []*domain.Event, err error) {
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListPublished godoc
// @Summary List published events
// @Tags events
// @Produce json
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size (max 100)" default(10)
// @Success 200 {object} controllers.EventPageSuccessResponse
// @Router /events [get]
func (c *EventController) ListPublished(w http.ResponseWriter, r *http.Request) {
	page, err := c.Service.GetAll(r.Context(), helpers.ParsePageRequest(r))
	c.writePage(w, r, page, err)
}

// ListAll godoc
// @Summary List events in any status
// @Tags events
// @Produce json
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size (max 100)" default(10)
// @Success 200 {object} controllers.EventPageSuccessResponse
// @Router /events/all [get]
func (c *EventController) ListAll(w http.ResponseWriter, r *http.Request) {
	page, err := c.Service.GetAllRegardlessOfStatus(r.Context(), helpers.ParsePageRequest(r))
	c.writePage(w, r, page, err)
}

// Search godoc
// @Summary Search published events
// @Description Case-insensitive match of q against title or description.
// @Tags events
// @Produce json
// @Param q query string true "Search term"
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size (max 100)" default(10)
// @Success 200 {object} controllers.EventPageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (empty term)"
// @Router /events/search [get]
func (c *EventController) Search(w http.ResponseWriter, r *http.Request) {
	page, err := c.Service.Search(r.Context(), r.URL.Query().Get("q"), helpers.ParsePageRequest(r))
	c.writePage(w, r, page, err)
}

// ListUpcoming godoc
// @Summary List upcoming published events
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Router /events/upcoming [get]
func (c *EventController) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.GetUpcoming(r.Context())
	c.writeList(w, r, events, err)
}

// ListAvailable godoc
// @Summary List published events with free seats
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Router /events/available [get]
func (c *EventController) ListAvailable(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.GetWithAvailableCapacity(r.Context())
	c.writeList(w, r, events, err)
}

// ListByCategory godoc
// @Summary List events in a category
// @Tags events
// @Produce json
// @Param categoryID path int true "Category ID"
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size (max 100)" default(10)
// @Success 200 {object} controllers.EventPageSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/category/{categoryID} [get]
func (c *EventController) ListByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "categoryID")
	if !ok {
		return
	}
	page, err := c.Service.GetByCategory(r.Context(), id, helpers.ParsePageRequest(r))
	c.writePage(w, r, page, err)
}

// ListByOrganizer godoc
// @Summary List events of an organizer
// @Tags events
// @Produce json
// @Param organizerID path int true "Organizer user ID"
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size (max 100)" default(10)
// @Success 200 {object} controllers.EventPageSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/organizer/{organizerID} [get]
func (c *EventController) ListByOrganizer(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "organizerID")
	if !ok {
		return
	}
	page, err := c.Service.GetByOrganizer(r.Context(), id, helpers.ParsePageRequest(r))
	c.writePage(w, r, page, err)
}
