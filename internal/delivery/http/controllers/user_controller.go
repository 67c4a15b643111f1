package controllers

import (
	"log/slog"
	"net/http"

	"eventmanagement/internal/delivery/http/helpers"
	"eventmanagement/internal/domain"
)

// RegisterUserRequest is the request body for POST /users/register.
type RegisterUserRequest struct {
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	FirstName       string      `json:"first_name"`
	LastName        string      `json:"last_name"`
	PhoneNumber     *string     `json:"phone_number"`
	Role            domain.Role `json:"role"`
	ProfileImageURL *string     `json:"profile_image_url"`
	Active          *bool       `json:"is_active"`
}

// Validate implements Validator.
func (u RegisterUserRequest) Validate() []string {
	var errs checks
	errs.length("username", u.Username, 3, 50)
	errs.email("email", u.Email)
	errs.required("password", u.Password)
	errs.length("first_name", u.FirstName, 2, 50)
	errs.length("last_name", u.LastName, 2, 50)
	if errs.required("role", string(u.Role)) {
		errs.add(!u.Role.Valid(), "role must be one of USER, ORGANIZER, ADMIN")
	}
	return errs
}

// UpdateUserRequest is the request body for PUT /users/{userID}. Role and
// is_active keep their stored values when omitted.
type UpdateUserRequest struct {
	Username        string       `json:"username"`
	Email           string       `json:"email"`
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	PhoneNumber     *string      `json:"phone_number"`
	Role            *domain.Role `json:"role"`
	ProfileImageURL *string      `json:"profile_image_url"`
	Active          *bool        `json:"is_active"`
}

// Validate implements Validator.
func (u UpdateUserRequest) Validate() []string {
	var errs checks
	errs.length("username", u.Username, 3, 50)
	errs.email("email", u.Email)
	errs.length("first_name", u.FirstName, 2, 50)
	errs.length("last_name", u.LastName, 2, 50)
	errs.add(u.Role != nil && !u.Role.Valid(), "role must be one of USER, ORGANIZER, ADMIN")
	return errs
}

// UserSuccessResponse is the success envelope for single-user responses.
type UserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserListSuccessResponse is the success envelope for GET /users.
type UserListSuccessResponse struct {
	Data  []*domain.User    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserController handles user endpoints.
type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{Logger: logger, Service: svc}
}

// Register godoc
// @Summary Register a user
// @Description Creates a user. The password is stored as a salted bcrypt hash and never returned.
// @Tags users
// @Accept json
// @Produce json
// @Param user body RegisterUserRequest true "User data"
// @Success 201 {object} controllers.UserSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (username or email taken)"
// @Router /users/register [post]
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Register(r.Context(), domain.RegisterUserInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		Role:            req.Role,
		ProfileImageURL: req.ProfileImageURL,
		Active:          req.Active,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Update godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Param userID path int true "User ID"
// @Param user body UpdateUserRequest true "User data"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (username or email taken)"
// @Router /users/{userID} [put]
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "userID")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Update(r.Context(), id, domain.UpdateUserInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		Role:            req.Role,
		ProfileImageURL: req.ProfileImageURL,
		Active:          req.Active,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// Delete godoc
// @Summary Delete a user
// @Description Fails with 409 while the user organizes events or holds registrations.
// @Tags users
// @Param userID path int true "User ID"
// @Success 204
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID} [delete]
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "userID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get godoc
// @Summary Get a user by ID
// @Tags users
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userID} [get]
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "userID")
	if !ok {
		return
	}
	c.writeUser(w, r)(c.Service.GetByID(r.Context(), id))
}

// GetByUsername godoc
// @Summary Get a user by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/username/{username} [get]
func (c *UserController) GetByUsername(w http.ResponseWriter, r *http.Request) {
	c.writeUser(w, r)(c.Service.GetByUsername(r.Context(), r.PathValue("username")))
}

// GetByEmail godoc
// @Summary Get a user by email
// @Tags users
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/email/{email} [get]
func (c *UserController) GetByEmail(w http.ResponseWriter, r *http.Request) {
	c.writeUser(w, r)(c.Service.GetByEmail(r.Context(), r.PathValue("email")))
}

func (c *UserController) writeUser(w http.ResponseWriter, r *http.Request) func(*domain.User, error) {
	return func(user *domain.User, err error) {
		if err != nil {
			helpers.WriteServiceError(w, r, c.Logger, err)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, user)
	}
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param role query string false "Filter by role (USER, ORGANIZER, ADMIN)"
// @Success 200 {object} controllers.UserListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown role)"
// @Router /users [get]
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	var (
		users []*domain.User
		err   error
	)
	if role := r.URL.Query().Get("role"); role != "" {
		users, err = c.Service.ListByRole(r.Context(), domain.Role(role))
	} else {
		users, err = c.Service.List(r.Context())
	}
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}
