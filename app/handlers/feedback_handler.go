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

// FeedbackHandlerInterface defines the contract for feedback handlers
type FeedbackHandlerInterface interface {
	Submit(c fiber.Ctx) error
	Acknowledge(c fiber.Ctx) error
	ListByTask(c fiber.Ctx) error
	ListPending(c fiber.Ctx) error
}

// FeedbackHandler handles feedback HTTP requests
type FeedbackHandler struct {
	flow      businessflow.FeedbackFlow
	validator *validator.Validate
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(flow businessflow.FeedbackFlow) *FeedbackHandler {
	return &FeedbackHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *FeedbackHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *FeedbackHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Submit files a feedback entry on a task
func (h *FeedbackHandler) Submit(c fiber.Ctx) error {
	var req dto.SubmitFeedbackRequest
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

	result, err := h.flow.Submit(h.createRequestContext(c, "/api/v1/feedback"), &req, actor, metadata)
	if err != nil {
		if businessflow.IsTaskNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Task not found", dto.ErrorTaskNotFound, nil)
		}

		log.Println("Feedback submission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Feedback submission failed", "SUBMIT_FEEDBACK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Feedback submitted", result)
}

// Acknowledge marks a pending feedback entry as seen
func (h *FeedbackHandler) Acknowledge(c fiber.Ctx) error {
	feedbackID, err := parseID(c, "feedback_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid feedback id", "INVALID_REQUEST", nil)
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.flow.Acknowledge(h.createRequestContext(c, "/api/v1/feedback"), feedbackID, actor, metadata)
	if err != nil {
		if businessflow.IsFeedbackNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Feedback not found", dto.ErrorFeedbackNotFound, nil)
		}
		if businessflow.IsFeedbackAlreadyAcknowledged(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Feedback already acknowledged", dto.ErrorFeedbackAlreadyAcknowledged, nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Feedback acknowledgement failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Feedback acknowledgement failed", "ACKNOWLEDGE_FEEDBACK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Feedback acknowledged", result)
}

// ListByTask returns the feedback entries of a task
func (h *FeedbackHandler) ListByTask(c fiber.Ctx) error {
	taskID, err := parseID(c, "task_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task id", "INVALID_REQUEST", nil)
	}
	limit, offset := parsePagination(c)

	result, err := h.flow.ListByTask(h.createRequestContext(c, "/api/v1/feedback"), taskID, limit, offset)
	if err != nil {
		if businessflow.IsTaskNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Task not found", dto.ErrorTaskNotFound, nil)
		}

		log.Println("Feedback listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Feedback listing failed", "LIST_FEEDBACK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Feedback listed", result)
}

// ListPending returns the unacknowledged feedback queue, oldest first
func (h *FeedbackHandler) ListPending(c fiber.Ctx) error {
	limit, offset := parsePagination(c)

	result, err := h.flow.ListPending(h.createRequestContext(c, "/api/v1/feedback/pending"), limit, offset)
	if err != nil {
		log.Println("Feedback listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Feedback listing failed", "LIST_FEEDBACK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Pending feedback listed", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *FeedbackHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
