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

// BarangayHandlerInterface defines the contract for barangay handlers
type BarangayHandlerInterface interface {
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// BarangayHandler handles locality management HTTP requests
type BarangayHandler struct {
	flow      businessflow.BarangayFlow
	validator *validator.Validate
}

// NewBarangayHandler creates a new barangay handler
func NewBarangayHandler(flow businessflow.BarangayFlow) *BarangayHandler {
	return &BarangayHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *BarangayHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *BarangayHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create registers a new barangay
func (h *BarangayHandler) Create(c fiber.Ctx) error {
	var req dto.CreateBarangayRequest
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

	result, err := h.flow.Create(h.createRequestContext(c, "/api/v1/barangays"), &req, actor, metadata)
	if err != nil {
		if businessflow.IsBarangayNameTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Barangay name already in use", "BARANGAY_NAME_TAKEN", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Barangay creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Barangay creation failed", "CREATE_BARANGAY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Barangay created", result)
}

// Update modifies a barangay's name or municipality
func (h *BarangayHandler) Update(c fiber.Ctx) error {
	barangayID, err := parseID(c, "barangay_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid barangay id", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateBarangayRequest
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

	result, err := h.flow.Update(h.createRequestContext(c, "/api/v1/barangays"), barangayID, &req, actor, metadata)
	if err != nil {
		if businessflow.IsBarangayNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Barangay not found", dto.ErrorBarangayNotFound, nil)
		}
		if businessflow.IsBarangayNameTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Barangay name already in use", "BARANGAY_NAME_TAKEN", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Barangay update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Barangay update failed", "UPDATE_BARANGAY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Barangay updated", result)
}

// Delete removes a barangay with no dependent records
func (h *BarangayHandler) Delete(c fiber.Ctx) error {
	barangayID, err := parseID(c, "barangay_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid barangay id", "INVALID_REQUEST", nil)
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	if err := h.flow.Delete(h.createRequestContext(c, "/api/v1/barangays"), barangayID, actor, metadata); err != nil {
		if businessflow.IsBarangayNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Barangay not found", dto.ErrorBarangayNotFound, nil)
		}
		if businessflow.IsBarangayReferenced(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Barangay still has users, teams, or projects", "BARANGAY_REFERENCED", nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Barangay deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Barangay deletion failed", "DELETE_BARANGAY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Barangay deleted", nil)
}

// Get returns a single barangay by display id
func (h *BarangayHandler) Get(c fiber.Ctx) error {
	barangayID, err := parseID(c, "barangay_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid barangay id", "INVALID_REQUEST", nil)
	}

	result, err := h.flow.Get(h.createRequestContext(c, "/api/v1/barangays"), barangayID)
	if err != nil {
		if businessflow.IsBarangayNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Barangay not found", dto.ErrorBarangayNotFound, nil)
		}

		log.Println("Barangay lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Barangay lookup failed", "GET_BARANGAY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Barangay retrieved", result)
}

// List returns a page of barangays ordered by name
func (h *BarangayHandler) List(c fiber.Ctx) error {
	limit, offset := parsePagination(c)

	result, err := h.flow.List(h.createRequestContext(c, "/api/v1/barangays"), limit, offset)
	if err != nil {
		log.Println("Barangay listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Barangay listing failed", "LIST_BARANGAYS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Barangays listed", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *BarangayHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
