// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/Zarcastral/farmops/app/dto"
	businessflow "github.com/Zarcastral/farmops/business_flow"
	"github.com/Zarcastral/farmops/models"
	"github.com/gofiber/fiber/v3"
)

// ActivityLogHandlerInterface defines the contract for audit trail handlers
type ActivityLogHandlerInterface interface {
	List(c fiber.Ctx) error
	ListByUser(c fiber.Ctx) error
	ListFailed(c fiber.Ctx) error
}

// ActivityLogHandler handles audit trail HTTP requests
type ActivityLogHandler struct {
	flow businessflow.ActivityLogFlow
}

// NewActivityLogHandler creates a new activity log handler
func NewActivityLogHandler(flow businessflow.ActivityLogFlow) *ActivityLogHandler {
	return &ActivityLogHandler{flow: flow}
}

func (h *ActivityLogHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ActivityLogHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// List returns a filtered page of audit entries
func (h *ActivityLogHandler) List(c fiber.Ctx) error {
	limit, offset := parsePagination(c)

	var filter models.ActivityLogFilter
	if v := c.Query("action"); v != "" {
		filter.Action = &v
	}
	if v := c.Query("success"); v != "" {
		success := v == "true"
		filter.Success = &success
	}

	result, err := h.flow.List(h.createRequestContext(c, "/api/v1/activity-logs"), filter, limit, offset)
	if err != nil {
		log.Println("Activity log listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Activity log listing failed", "LIST_ACTIVITY_LOGS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Activity logs listed", result)
}

// ListByUser returns one user's audit entries
func (h *ActivityLogHandler) ListByUser(c fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("user_id"), 10, 32)
	if err != nil || userID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user id", "INVALID_REQUEST", nil)
	}
	limit, offset := parsePagination(c)

	result, err := h.flow.ListByUser(h.createRequestContext(c, "/api/v1/activity-logs"), uint(userID), limit, offset)
	if err != nil {
		log.Println("Activity log listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Activity log listing failed", "LIST_ACTIVITY_LOGS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Activity logs listed", result)
}

// ListFailed returns audit entries for failed operations
func (h *ActivityLogHandler) ListFailed(c fiber.Ctx) error {
	limit, offset := parsePagination(c)

	result, err := h.flow.ListFailed(h.createRequestContext(c, "/api/v1/activity-logs/failed"), limit, offset)
	if err != nil {
		log.Println("Activity log listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Activity log listing failed", "LIST_ACTIVITY_LOGS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Failed activity logs listed", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ActivityLogHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
