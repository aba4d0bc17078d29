// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/app/middleware"
	businessflow "github.com/Zarcastral/farmops/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AttendanceHandlerInterface defines the contract for attendance handlers
type AttendanceHandlerInterface interface {
	Record(c fiber.Ctx) error
	ListByTask(c fiber.Ctx) error
	ListByFarmer(c fiber.Ctx) error
}

// AttendanceHandler handles attendance HTTP requests
type AttendanceHandler struct {
	flow      businessflow.AttendanceFlow
	validator *validator.Validate
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(flow businessflow.AttendanceFlow) *AttendanceHandler {
	return &AttendanceHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *AttendanceHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AttendanceHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Record marks a farmer present or absent for a task day
func (h *AttendanceHandler) Record(c fiber.Ctx) error {
	var req dto.RecordAttendanceRequest
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

	result, err := h.flow.Record(h.createRequestContext(c, "/api/v1/attendance"), &req, actor, metadata)
	if err != nil {
		if businessflow.IsTaskNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Task not found", dto.ErrorTaskNotFound, nil)
		}
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Farmer not found", dto.ErrorUserNotFound, nil)
		}

		log.Println("Attendance recording failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Attendance recording failed", "RECORD_ATTENDANCE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Attendance recorded", result)
}

// ListByTask returns the attendance sheet of a task, optionally filtered to one day
func (h *AttendanceHandler) ListByTask(c fiber.Ctx) error {
	taskID, err := parseID(c, "task_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task id", "INVALID_REQUEST", nil)
	}

	var date *time.Time
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", "INVALID_REQUEST", nil)
		}
		date = &parsed
	}

	result, err := h.flow.ListByTask(h.createRequestContext(c, "/api/v1/attendance"), taskID, date)
	if err != nil {
		if businessflow.IsTaskNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Task not found", dto.ErrorTaskNotFound, nil)
		}

		log.Println("Attendance listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Attendance listing failed", "LIST_ATTENDANCE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Attendance listed", result)
}

// ListByFarmer returns a farmer's attendance history
func (h *AttendanceHandler) ListByFarmer(c fiber.Ctx) error {
	farmerID, err := strconv.ParseUint(c.Params("farmer_id"), 10, 32)
	if err != nil || farmerID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid farmer id", "INVALID_REQUEST", nil)
	}
	limit, offset := parsePagination(c)

	result, err := h.flow.ListByFarmer(h.createRequestContext(c, "/api/v1/attendance"), uint(farmerID), limit, offset)
	if err != nil {
		log.Println("Attendance listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Attendance listing failed", "LIST_ATTENDANCE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Attendance listed", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *AttendanceHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
