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

// HarvestHandlerInterface defines the contract for harvest handlers
type HarvestHandlerInterface interface {
	Record(c fiber.Ctx) error
	ListByProject(c fiber.Ctx) error
	Summary(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// HarvestHandler handles harvest HTTP requests
type HarvestHandler struct {
	flow      businessflow.HarvestFlow
	validator *validator.Validate
}

// NewHarvestHandler creates a new harvest handler
func NewHarvestHandler(flow businessflow.HarvestFlow) *HarvestHandler {
	return &HarvestHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *HarvestHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *HarvestHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Record logs harvested produce against an ongoing project
func (h *HarvestHandler) Record(c fiber.Ctx) error {
	var req dto.RecordHarvestRequest
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

	result, err := h.flow.Record(h.createRequestContext(c, "/api/v1/harvests"), &req, actor, metadata)
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
		if businessflow.IsInvalidQuantity(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Quantity must be greater than zero", dto.ErrorInvalidQuantity, nil)
		}

		log.Println("Harvest recording failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Harvest recording failed", "RECORD_HARVEST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Harvest recorded", result)
}

// ListByProject returns a page of harvests under a project
func (h *HarvestHandler) ListByProject(c fiber.Ctx) error {
	projectID, err := parseID(c, "project_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid project id", "INVALID_REQUEST", nil)
	}
	limit, offset := parsePagination(c)

	result, err := h.flow.ListByProject(h.createRequestContext(c, "/api/v1/harvests"), projectID, limit, offset)
	if err != nil {
		if businessflow.IsProjectNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", dto.ErrorProjectNotFound, nil)
		}

		log.Println("Harvest listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Harvest listing failed", "LIST_HARVESTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Harvests listed", result)
}

// Summary aggregates total harvested quantity for one crop
func (h *HarvestHandler) Summary(c fiber.Ctx) error {
	cropName := c.Query("crop_name")
	if cropName == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "crop_name is required", "INVALID_REQUEST", nil)
	}
	unit := c.Query("unit", "kg")

	result, err := h.flow.SummaryByCrop(h.createRequestContext(c, "/api/v1/harvests/summary"), cropName, unit)
	if err != nil {
		log.Println("Harvest summary failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Harvest summary failed", "HARVEST_SUMMARY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Harvest summary", result)
}

// Export streams a project's harvests as an Excel workbook
func (h *HarvestHandler) Export(c fiber.Ctx) error {
	projectID, err := parseID(c, "project_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid project id", "INVALID_REQUEST", nil)
	}

	filename, data, err := h.flow.Export(h.createRequestContext(c, "/api/v1/harvests/export"), projectID)
	if err != nil {
		if businessflow.IsProjectNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Project not found", dto.ErrorProjectNotFound, nil)
		}

		log.Println("Harvest export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Harvest export failed", "EXPORT_HARVESTS_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *HarvestHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
