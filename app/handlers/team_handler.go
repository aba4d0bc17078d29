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

// TeamHandlerInterface defines the contract for team handlers
type TeamHandlerInterface interface {
	Create(c fiber.Ctx) error
	AddMember(c fiber.Ctx) error
	RemoveMember(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	ListByBarangay(c fiber.Ctx) error
}

// TeamHandler handles team membership HTTP requests
type TeamHandler struct {
	flow      businessflow.TeamFlow
	validator *validator.Validate
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(flow businessflow.TeamFlow) *TeamHandler {
	return &TeamHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *TeamHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TeamHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Create forms a team under a head farmer
func (h *TeamHandler) Create(c fiber.Ctx) error {
	var req dto.CreateTeamRequest
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

	result, err := h.flow.Create(h.createRequestContext(c, "/api/v1/teams"), &req, actor, metadata)
	if err != nil {
		if businessflow.IsBarangayNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Barangay not found", dto.ErrorBarangayNotFound, nil)
		}
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Farmer not found", dto.ErrorUserNotFound, nil)
		}
		if businessflow.IsFarmerAlreadyInTeam(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Farmer already belongs to a team", dto.ErrorFarmerAlreadyInTeam, nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Team creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Team creation failed", "CREATE_TEAM_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Team created", result)
}

// AddMember links a farmer to a team
func (h *TeamHandler) AddMember(c fiber.Ctx) error {
	teamID, err := parseID(c, "team_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id", "INVALID_REQUEST", nil)
	}

	var req dto.AddTeamMemberRequest
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

	result, err := h.flow.AddMember(h.createRequestContext(c, "/api/v1/teams"), teamID, &req, actor, metadata)
	if err != nil {
		if businessflow.IsTeamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Team not found", dto.ErrorTeamNotFound, nil)
		}
		if businessflow.IsUserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Farmer not found", dto.ErrorUserNotFound, nil)
		}
		if businessflow.IsFarmerAlreadyInTeam(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Farmer already belongs to a team", dto.ErrorFarmerAlreadyInTeam, nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Team member addition failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Team member addition failed", "ADD_MEMBER_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Member added", result)
}

// RemoveMember unlinks a farmer from a team
func (h *TeamHandler) RemoveMember(c fiber.Ctx) error {
	teamID, err := parseID(c, "team_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id", "INVALID_REQUEST", nil)
	}
	farmerID, err := strconv.ParseUint(c.Params("farmer_id"), 10, 32)
	if err != nil || farmerID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid farmer id", "INVALID_REQUEST", nil)
	}

	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	if err := h.flow.RemoveMember(h.createRequestContext(c, "/api/v1/teams"), teamID, uint(farmerID), actor, metadata); err != nil {
		if businessflow.IsTeamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Team not found", dto.ErrorTeamNotFound, nil)
		}
		if businessflow.IsFarmerNotInTeam(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Farmer is not on this team", dto.ErrorFarmerNotInTeam, nil)
		}
		if businessflow.IsAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Role does not permit this operation", "ACCESS_DENIED", nil)
		}

		log.Println("Team member removal failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Team member removal failed", "REMOVE_MEMBER_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Member removed", nil)
}

// Get returns a single team with its members
func (h *TeamHandler) Get(c fiber.Ctx) error {
	teamID, err := parseID(c, "team_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid team id", "INVALID_REQUEST", nil)
	}

	result, err := h.flow.Get(h.createRequestContext(c, "/api/v1/teams"), teamID)
	if err != nil {
		if businessflow.IsTeamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Team not found", dto.ErrorTeamNotFound, nil)
		}

		log.Println("Team lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Team lookup failed", "GET_TEAM_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Team retrieved", result)
}

// ListByBarangay returns the teams within a barangay
func (h *TeamHandler) ListByBarangay(c fiber.Ctx) error {
	barangayID, err := parseID(c, "barangay_id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid barangay id", "INVALID_REQUEST", nil)
	}

	result, err := h.flow.ListByBarangay(h.createRequestContext(c, "/api/v1/teams"), barangayID)
	if err != nil {
		if businessflow.IsBarangayNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Barangay not found", dto.ErrorBarangayNotFound, nil)
		}

		log.Println("Team listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Team listing failed", "LIST_TEAMS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Teams listed", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *TeamHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, "request_id", c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
