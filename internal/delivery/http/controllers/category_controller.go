package controllers

import (
	"log/slog"
	"net/http"

	"eventmanagement/internal/delivery/http/helpers"
	"eventmanagement/internal/domain"
)

// CategoryRequest is the request body for POST and PUT /categories.
type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
}

// Validate implements Validator.
func (c CategoryRequest) Validate() []string {
	var errs checks
	errs.length("name", c.Name, 2, 50)
	errs.maxLength("description", c.Description, 200)
	errs.maxLength("icon", c.Icon, 10)
	errs.maxLength("color", c.Color, 7)
	return errs
}

func (c CategoryRequest) input() domain.CategoryInput {
	return domain.CategoryInput{Name: c.Name, Description: c.Description, Icon: c.Icon, Color: c.Color}
}

// CategorySuccessResponse is the success envelope for single-category responses.
type CategorySuccessResponse struct {
	Data  *domain.Category  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CategoryListSuccessResponse is the success envelope for GET /categories.
type CategoryListSuccessResponse struct {
	Data  []*domain.Category `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CategoryController handles category endpoints.
type CategoryController struct {
	Logger  *slog.Logger
	Service domain.CategoryService
}

func NewCategoryController(logger *slog.Logger, svc domain.CategoryService) *CategoryController {
	return &CategoryController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body CategoryRequest true "Category data"
// @Success 201 {object} controllers.CategorySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /categories [post]
func (c *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.Create(r.Context(), req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, category)
}

// Update godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Param categoryID path int true "Category ID"
// @Param category body CategoryRequest true "Category data"
// @Success 200 {object} controllers.CategorySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name taken)"
// @Router /categories/{categoryID} [put]
func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "categoryID")
	if !ok {
		return
	}
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.Update(r.Context(), id, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, category)
}

// Delete godoc
// @Summary Delete a category
// @Description Fails with 409 while any event references the category.
// @Tags categories
// @Param categoryID path int true "Category ID"
// @Success 204
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (category in use)"
// @Router /categories/{categoryID} [delete]
func (c *CategoryController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "categoryID")
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
// @Summary Get a category by ID
// @Tags categories
// @Produce json
// @Param categoryID path int true "Category ID"
// @Success 200 {object} controllers.CategorySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{categoryID} [get]
func (c *CategoryController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "categoryID")
	if !ok {
		return
	}
	category, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, category)
}

// List godoc
// @Summary List categories
// @Description Lists all categories ordered by name, or those whose name contains the name query (case-insensitive).
// @Tags categories
// @Produce json
// @Param name query string false "Name fragment"
// @Success 200 {object} controllers.CategoryListSuccessResponse
// @Router /categories [get]
func (c *CategoryController) List(w http.ResponseWriter, r *http.Request) {
	var (
		categories []*domain.Category
		err        error
	)
	if name := r.URL.Query().Get("name"); name != "" {
		categories, err = c.Service.ListByNameContaining(r.Context(), name)
	} else {
		categories, err = c.Service.List(r.Context())
	}
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, categories)
}
