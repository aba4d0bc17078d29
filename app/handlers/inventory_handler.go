// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/app/middleware"
	businessflow "github.com/Zarcastral/farmops/business_flow"
	"github.com/Zarcastral/farmops/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// InventoryHandlerInterface defines the contract for inventory handlers
type InventoryHandlerInterface interface {
	RegisterResource(c fiber.Ctx) error
	Replenish(c fiber.Ctx) error
	Consume(c fiber.Ctx) error
	GetStock(c fiber.Ctx) error
	ListByOwner(c fiber.Ctx) error
	ListUsageLogs(c fiber.Ctx) error
	ExportUsageLogs(c fiber.Ctx) error
	DeleteResource(c fiber.Ctx) error
}

// InventoryHandler handles stock and usage log HTTP requests
type InventoryHandler struct {
	flow      businessflow.InventoryFlow
	validator *validator.Validate
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(flow businessflow.InventoryFlow) *InventoryHandler {
	return &InventoryHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *InventoryHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *InventoryHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RegisterResource creates a stock record for a resource not yet tracked
func (h *InventoryHandler) RegisterResource(c fiber.Ctx) error {
	var req dto.RegisterResourceRequest
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

	result, err := h.flow.RegisterResource(h.createRequestContext(c, "/api/v1/inventory/resources"), &req, actor, metadata)
	if err != nil {
		if businessflow.IsDuplicateResource(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Resource already registered", dto.ErrorDuplicateResource, nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Resource registration failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Resource registration failed", "REGISTER_RESOURCE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// Replenish adds quantity to an existing stock record
func (h *InventoryHandler) Replenish(c fiber.Ctx) error {
	var req dto.ReplenishStockRequest
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

	result, err := h.flow.Replenish(h.createRequestContext(c, "/api/v1/inventory/replenish"), &req, actor, metadata)
	if err != nil {
		if businessflow.IsResourceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Resource not found", dto.ErrorResourceNotFound, nil)
		}
		if businessflow.IsInvalidQuantity(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Quantity must be greater than zero", dto.ErrorInvalidQuantity, nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Stock replenishment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Stock replenishment failed", "REPLENISH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Consume deducts stock where applicable and appends an immutable usage log
func (h *InventoryHandler) Consume(c fiber.Ctx) error {
	var req dto.ConsumeStockRequest
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

	result, err := h.flow.Consume(h.createRequestContext(c, "/api/v1/inventory/consume"), &req, actor, metadata)
	if err != nil {
		if businessflow.IsResourceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Resource not found", dto.ErrorResourceNotFound, nil)
		}
		if businessflow.IsInvalidQuantity(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Quantity must be greater than zero", dto.ErrorInvalidQuantity, nil)
		}
		if businessflow.IsInsufficientStock(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Requested quantity exceeds current stock", dto.ErrorInsufficientStock, nil)
		}
		if businessflow.IsMissingDetails(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Details are required for damaged or missing stock", dto.ErrorMissingDetails, nil)
		}
		if businessflow.IsInvalidUsageStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid usage status", "INVALID_USAGE_STATUS", nil)
		}

		log.Println("Stock consumption failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Stock consumption failed", "CONSUME_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetStock returns a single stock record by kind and display id
func (h *InventoryHandler) GetStock(c fiber.Ctx) error {
	kind := c.Params("kind")
	resourceID, err := parseID(c, "resource_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid resource id", "INVALID_REQUEST", nil)
	}

	result, err := h.flow.GetStock(h.createRequestContext(c, "/api/v1/inventory/stock"), kind, resourceID)
	if err != nil {
		if businessflow.IsResourceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Resource not found", dto.ErrorResourceNotFound, nil)
		}
		if businessflow.IsInvalidResourceKind(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown resource kind", "INVALID_RESOURCE_KIND", nil)
		}

		log.Println("Stock lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Stock lookup failed", "GET_STOCK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Stock retrieved", result)
}

// ListByOwner returns the stock records of one owner partition
func (h *InventoryHandler) ListByOwner(c fiber.Ctx) error {
	kind := c.Params("kind")
	ownedBy := c.Query("owned_by")

	result, err := h.flow.ListByOwner(h.createRequestContext(c, "/api/v1/inventory/stock"), kind, ownedBy)
	if err != nil {
		if businessflow.IsInvalidResourceKind(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown resource kind", "INVALID_RESOURCE_KIND", nil)
		}

		log.Println("Stock listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Stock listing failed", "LIST_STOCK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Stock listed", result)
}

// ListUsageLogs returns a filtered page of immutable usage log entries
func (h *InventoryHandler) ListUsageLogs(c fiber.Ctx) error {
	limit, offset := parsePagination(c)

	var filter models.InventoryUsageLogFilter
	if v := c.Query("kind"); v != "" {
		kind := models.ResourceKind(v)
		filter.Kind = &kind
	}
	if v := c.Query("status"); v != "" {
		status := models.UsageStatus(v)
		filter.Status = &status
	}
	if v := c.Query("project_id"); v != "" {
		filter.ProjectID = &v
	}

	result, err := h.flow.ListUsageLogs(h.createRequestContext(c, "/api/v1/inventory/usage-logs"), filter, limit, offset)
	if err != nil {
		log.Println("Usage log listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Usage log listing failed", "LIST_USAGE_LOGS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Usage logs listed", result)
}

// ExportUsageLogs streams the usage logs of a project as an Excel workbook
func (h *InventoryHandler) ExportUsageLogs(c fiber.Ctx) error {
	projectID := c.Query("project_id")

	filename, data, err := h.flow.ExportUsageLogs(h.createRequestContext(c, "/api/v1/inventory/usage-logs/export"), projectID)
	if err != nil {
		log.Println("Usage log export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Usage log export failed", "EXPORT_USAGE_LOGS_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// DeleteResource removes a stock record. Usage logs referencing it are kept.
func (h *InventoryHandler) DeleteResource(c fiber.Ctx) error {
	kind := c.Params("kind")
	resourceID, err := parseID(c, "resource_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid resource id", "INVALID_REQUEST", nil)
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	if err := h.flow.DeleteResource(h.createRequestContext(c, "/api/v1/inventory/resources"), kind, resourceID, actor, metadata); err != nil {
		if businessflow.IsResourceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Resource not found", dto.ErrorResourceNotFound, nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Resource deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Resource deletion failed", "DELETE_RESOURCE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Resource deleted", nil)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *InventoryHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
