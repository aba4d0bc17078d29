// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/app/middleware"
	businessflow "github.com/Zarcastral/farmops/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ProjectHandlerInterface defines the contract for project handlers
type ProjectHandlerInterface interface {
	Create(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	ListByBarangay(c fiber.Ctx) error
}

// ProjectHandler handles farm project HTTP requests
type ProjectHandler struct {
	flow      businessflow.ProjectFlow
	validator *validator.Validate
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(flow businessflow.ProjectFlow) *ProjectHandler {
	return &ProjectHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *ProjectHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ProjectHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create opens a new farm project under a barangay
func (h *ProjectHandler) Create(c fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.flow.Create(h.createRequestContext(c, "/api/v1/projects"), &req, actor, metadata)
	if err != nil {
		if businessflow.IsBarangayNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Barangay not found", dto.ErrorBarangayNotFound, nil)
		}
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Lead farmer not found", dto.ErrorUserNotFound, nil)
		}
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Start date cannot be after end date", "INVALID_DATE_RANGE", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Project creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Project creation failed", "CREATE_PROJECT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Project created", result)
}

// UpdateStatus transitions a project between ongoing, completed, and cancelled
func (h *ProjectHandler) UpdateStatus(c fiber.Ctx) error {
	projectID, err := parseID(c, "project_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid project id", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateProjectStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.flow.UpdateStatus(h.createRequestContext(c, "/api/v1/projects"), projectID, &req, actor, metadata)
	if err != nil {
		if businessflow.IsProjectNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", dto.ErrorProjectNotFound, nil)
		}
		if businessflow.IsInvalidProjectStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid project status", dto.ErrorInvalidProjectStatus, nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Project update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Project update failed", "UPDATE_PROJECT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Project updated", result)
}

// Get returns a single project by display id
func (h *ProjectHandler) Get(c fiber.Ctx) error {
	projectID, err := parseID(c, "project_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid project id", "INVALID_REQUEST", nil)
	}

	result, err := h.flow.Get(h.createRequestContext(c, "/api/v1/projects"), projectID)
	if err != nil {
		if businessflow.IsProjectNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", dto.ErrorProjectNotFound, nil)
		}

		log.Println("Project lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Project lookup failed", "GET_PROJECT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Project retrieved", result)
}

// ListByBarangay returns a page of projects within a barangay
func (h *ProjectHandler) ListByBarangay(c fiber.Ctx) error {
	barangayID, err := parseID(c, "barangay_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid barangay id", "INVALID_REQUEST", nil)
	}
	limit, offset := parsePagination(c)

	result, err := h.flow.ListByBarangay(h.createRequestContext(c, "/api/v1/projects"), barangayID, limit, offset)
	if err != nil {
		if businessflow.IsBarangayNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Barangay not found", dto.ErrorBarangayNotFound, nil)
		}

		log.Println("Project listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Project listing failed", "LIST_PROJECTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Projects listed", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ProjectHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
