package controllers

import (
	"log/slog"
	"net/http"

	"eventmanagement/internal/delivery/http/helpers"
	"eventmanagement/internal/domain"
)

const statusConfirmed = "confirmed"

// CreateRegistrationRequest is the request body for POST /registrations.
type CreateRegistrationRequest struct {
	EventID             int64   `json:"event_id"`
	UserID              int64   `json:"user_id"`
	SpecialRequirements *string `json:"special_requirements"`
}

// Validate implements Validator.
func (c CreateRegistrationRequest) Validate() []string {
	var errs checks
	errs.add(c.EventID <= 0, "event_id is required")
	errs.add(c.UserID <= 0, "user_id is required")
	errs.maxLength("special_requirements", c.SpecialRequirements, 500)
	return errs
}

// RegistrationSuccessResponse is the success envelope for single-registration responses.
type RegistrationSuccessResponse struct {
	Data  *domain.EventRegistration `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// RegistrationListSuccessResponse is the success envelope for registration lists.
type RegistrationListSuccessResponse struct {
	Data  []*domain.EventRegistration `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// RegistrationCount is the body of GET /registrations/event/{eventID}/count.
type RegistrationCount struct {
	EventID   int64 `json:"event_id"`
	Confirmed int   `json:"confirmed"`
}

// RegistrationCountSuccessResponse is the success envelope for the confirmed count.
type RegistrationCountSuccessResponse struct {
	Data  RegistrationCount `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RegistrationController handles registration endpoints.
type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{Logger: logger, Service: svc}
}

// Register godoc
// @Summary Register a user for an event
// @Description Admits a PENDING registration when the event is published, has a free seat and the user holds no active registration for it.
// @Tags registrations
// @Accept json
// @Produce json
// @Param registration body CreateRegistrationRequest true "Registration data"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or user)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not published, full or already registered)"
// @Router /registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	var req CreateRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Service.Register(r.Context(), req.EventID, req.UserID, req.SpecialRequirements)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

func (c *RegistrationController) writeOne(w http.ResponseWriter, r *http.Request, op func(id int64) (*domain.EventRegistration, error)) {
	id, ok := helpers.PathID(w, r, "registrationID")
	if !ok {
		return
	}
	reg, err := op(id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// Get godoc
// @Summary Get a registration by ID
// @Tags registrations
// @Produce json
// @Param registrationID path int true "Registration ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{registrationID} [get]
func (c *RegistrationController) Get(w http.ResponseWriter, r *http.Request) {
	c.writeOne(w, r, func(id int64) (*domain.EventRegistration, error) {
		return c.Service.GetByID(r.Context(), id)
	})
}

// Confirm godoc
// @Summary Confirm a registration
// @Description Moves a PENDING registration to CONFIRMED while a seat is free. Confirming a confirmed registration is a no-op.
// @Tags registrations
// @Produce json
// @Param registrationID path int true "Registration ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (full, cancelled or refunded)"
// @Router /registrations/{registrationID}/confirm [patch]
func (c *RegistrationController) Confirm(w http.ResponseWriter, r *http.Request) {
	c.writeOne(w, r, func(id int64) (*domain.EventRegistration, error) {
		return c.Service.Confirm(r.Context(), id)
	})
}

// Cancel godoc
// @Summary Cancel a registration
// @Description Moves a PENDING or CONFIRMED registration to CANCELLED. Cancelling a cancelled registration is a no-op.
// @Tags registrations
// @Produce json
// @Param registrationID path int true "Registration ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (refunded)"
// @Router /registrations/{registrationID}/cancel [patch]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	c.writeOne(w, r, func(id int64) (*domain.EventRegistration, error) {
		return c.Service.Cancel(r.Context(), id)
	})
}

// Delete godoc
// @Summary Delete a registration
// @Tags registrations
// @Param registrationID path int true "Registration ID"
// @Success 204
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{registrationID} [delete]
func (c *RegistrationController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "registrationID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type registrationLister func(r *http.Request, id int64) ([]*domain.EventRegistration, error)

func (c *RegistrationController) list(w http.ResponseWriter, r *http.Request, pathKey string, all, confirmed registrationLister) {
	id, ok := helpers.PathID(w, r, pathKey)
	if !ok {
		return
	}
	lister := all
	switch status := r.URL.Query().Get("status"); status {
	case "":
	case statusConfirmed:
		lister = confirmed
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "status filter must be \"confirmed\"")
		return
	}
	regs, err := lister(r, id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// ListByEvent godoc
// @Summary List registrations of an event
// @Tags registrations
// @Produce json
// @Param eventID path int true "Event ID"
// @Param status query string false "Only \"confirmed\""
// @Success 200 {object} controllers.RegistrationListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /registrations/event/{eventID} [get]
func (c *RegistrationController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, "eventID",
		func(r *http.Request, id int64) ([]*domain.EventRegistration, error) {
			return c.Service.GetByEvent(r.Context(), id)
		},
		func(r *http.Request, id int64) ([]*domain.EventRegistration, error) {
			return c.Service.GetConfirmedByEvent(r.Context(), id)
		})
}

// ListByUser godoc
// @Summary List registrations of a user
// @Tags registrations
// @Produce json
// @Param userID path int true "User ID"
// @Param status query string false "Only \"confirmed\""
// @Success 200 {object} controllers.RegistrationListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /registrations/user/{userID} [get]
func (c *RegistrationController) ListByUser(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, "userID",
		func(r *http.Request, id int64) ([]*domain.EventRegistration, error) {
			return c.Service.GetByUser(r.Context(), id)
		},
		func(r *http.Request, id int64) ([]*domain.EventRegistration, error) {
			return c.Service.GetConfirmedByUser(r.Context(), id)
		})
}

// CountConfirmed godoc
// @Summary Count confirmed registrations of an event
// @Tags registrations
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.RegistrationCountSuccessResponse
// @Router /registrations/event/{eventID}/count [get]
func (c *RegistrationController) CountConfirmed(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	n, err := c.Service.CountConfirmedByEvent(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RegistrationCount{EventID: id, Confirmed: n})
}
