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

// TaskHandlerInterface defines the contract for task handlers
type TaskHandlerInterface interface {
	Create(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	UpdateSubtaskStatus(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	ListByProject(c fiber.Ctx) error
}

// TaskHandler handles task assignment HTTP requests
type TaskHandler struct {
	flow      businessflow.TaskFlow
	validator *validator.Validate
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(flow businessflow.TaskFlow) *TaskHandler {
	return &TaskHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *TaskHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TaskHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create assigns work under an ongoing project
func (h *TaskHandler) Create(c fiber.Ctx) error {
	var req dto.CreateTaskRequest
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

	result, err := h.flow.Create(h.createRequestContext(c, "/api/v1/tasks"), &req, actor, metadata)
	if err != nil {
		if businessflow.IsProjectNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Project not found", dto.ErrorProjectNotFound, nil)
		}
		if businessflow.IsProjectClosed(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Project is no longer ongoing", dto.ErrorProjectClosed, nil)
		}
		if businessflow.IsTeamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Team not found", dto.ErrorTeamNotFound, nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Task creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Task creation failed", "CREATE_TASK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Task created", result)
}

// UpdateStatus transitions a task
func (h *TaskHandler) UpdateStatus(c fiber.Ctx) error {
	taskID, err := parseID(c, "task_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task id", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateTaskStatusRequest
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

	result, err := h.flow.UpdateStatus(h.createRequestContext(c, "/api/v1/tasks"), taskID, &req, actor, metadata)
	if err != nil {
		if businessflow.IsTaskNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Task not found", dto.ErrorTaskNotFound, nil)
		}
		if businessflow.IsInvalidTaskStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task status", dto.ErrorInvalidTaskStatus, nil)
		}

		log.Println("Task update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Task update failed", "UPDATE_TASK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Task updated", result)
}

// UpdateSubtaskStatus transitions one checklist item under a task
func (h *TaskHandler) UpdateSubtaskStatus(c fiber.Ctx) error {
	taskID, err := parseID(c, "task_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task id", "INVALID_REQUEST", nil)
	}
	subtaskID, err := strconv.ParseUint(c.Params("subtask_id"), 10, 32)
	if err != nil || subtaskID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid subtask id", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateTaskStatusRequest
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

	result, err := h.flow.UpdateSubtaskStatus(h.createRequestContext(c, "/api/v1/tasks"), taskID, uint(subtaskID), &req, actor, metadata)
	if err != nil {
		if businessflow.IsTaskNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Task not found", dto.ErrorTaskNotFound, nil)
		}
		if businessflow.IsSubtaskNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Subtask not found", dto.ErrorSubtaskNotFound, nil)
		}
		if businessflow.IsInvalidTaskStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task status", dto.ErrorInvalidTaskStatus, nil)
		}

		log.Println("Subtask update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Subtask update failed", "UPDATE_SUBTASK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Subtask updated", result)
}

// Get returns a single task with its subtasks
func (h *TaskHandler) Get(c fiber.Ctx) error {
	taskID, err := parseID(c, "task_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid task id", "INVALID_REQUEST", nil)
	}

	result, err := h.flow.Get(h.createRequestContext(c, "/api/v1/tasks"), taskID)
	if err != nil {
		if businessflow.IsTaskNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Task not found", dto.ErrorTaskNotFound, nil)
		}

		log.Println("Task lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Task lookup failed", "GET_TASK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Task retrieved", result)
}

// ListByProject returns a page of tasks under a project
func (h *TaskHandler) ListByProject(c fiber.Ctx) error {
	projectID, err := parseID(c, "project_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid project id", "INVALID_REQUEST", nil)
	}
	limit, offset := parsePagination(c)

	result, err := h.flow.ListByProject(h.createRequestContext(c, "/api/v1/tasks"), projectID, limit, offset)
	if err != nil {
		if businessflow.IsProjectNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", dto.ErrorProjectNotFound, nil)
		}

		log.Println("Task listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Task listing failed", "LIST_TASKS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tasks listed", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *TaskHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
