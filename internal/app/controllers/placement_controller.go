package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/app/models/dto"
	"github.com/yigit/unicluster/internal/middleware"
	"github.com/yigit/unicluster/internal/pkg/helpers"
)

// PlacementController handles placement runs, manual overrides and placement reads
type PlacementController struct {
	placementService PlacementService
}

// NewPlacementController creates a new PlacementController
func NewPlacementController(placementService PlacementService) *PlacementController {
	return &PlacementController{
		placementService: placementService,
	}
}

// RunAutoPlacement triggers an automatic placement run
// @Summary Run automatic placement
// @Description Places every pending application for the given intake year, highest ranked first
// @Tags placements
// @Produce json
// @Security BearerAuth
// @Param year query int true "Intake year" minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.AutoPlacementResponse} "Run completed"
// @Failure 400 {object} dto.ErrorResponse "Invalid year"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Failure 500 {object} dto.ErrorResponse "Storage failure, run aborted"
// @Router /placements/auto [post]
func (c *PlacementController) RunAutoPlacement(ctx *gin.Context) {
	year, ok := parseYearQuery(ctx, true)
	if !ok {
		return
	}

	placements, err := c.placementService.RunAutoPlacement(ctx.Request.Context(), *year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.AutoPlacementResponse{
		Year:       *year,
		Placed:     len(placements),
		Placements: dto.FromPlacements(placements),
	}, "Automatic placement completed"))
}

// CreatePlacement places an application manually
// @Summary Create a manual placement
// @Description Places a pending application on a chosen offering, taking one of its seats
// @Tags placements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePlacementRequest true "Placement information"
// @Success 201 {object} dto.APIResponse{data=dto.PlacementResponse} "Placement created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Application or offering not found"
// @Failure 409 {object} dto.ErrorResponse "No seats left or application no longer pending"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /placements [post]
func (c *PlacementController) CreatePlacement(ctx *gin.Context) {
	var req dto.CreatePlacementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	placement, err := c.placementService.CreateManualPlacement(ctx.Request.Context(), req.ApplicationID, req.OfferingID, req.Year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromPlacement(placement), "Placement created"))
}

// DeletePlacement removes a placement
// @Summary Delete a placement
// @Description Deletes a placement, releases its seat and returns the application to pending
// @Tags placements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Placement ID"
// @Success 200 {object} dto.APIResponse "Placement deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid placement ID"
// @Failure 404 {object} dto.ErrorResponse "Placement not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /placements/{id} [delete]
func (c *PlacementController) DeletePlacement(ctx *gin.Context) {
	id, ok := parsePositiveParam(ctx, "id", "placement ID")
	if !ok {
		return
	}

	if err := c.placementService.DeletePlacement(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Placement deleted"))
}

// GetPlacement retrieves a placement by ID
// @Summary Get placement by ID
// @Tags placements
// @Produce json
// @Param id path int true "Placement ID"
// @Success 200 {object} dto.APIResponse{data=dto.PlacementResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid placement ID"
// @Failure 404 {object} dto.ErrorResponse "Placement not found"
// @Router /placements/{id} [get]
func (c *PlacementController) GetPlacement(ctx *gin.Context) {
	id, ok := parsePositiveParam(ctx, "id", "placement ID")
	if !ok {
		return
	}

	placement, err := c.placementService.GetPlacement(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromPlacement(placement), ""))
}

// ListPlacements lists placements
// @Summary List placements
// @Tags placements
// @Produce json
// @Param year query int false "Filter by intake year"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PlacementListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Router /placements [get]
func (c *PlacementController) ListPlacements(ctx *gin.Context) {
	year, ok := parseYearQuery(ctx, false)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	placements, total, err := c.placementService.ListPlacements(ctx.Request.Context(), models.PlacementFilter{
		Year: year,
		Page: page,
		Size: size,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PlacementListResponse{
		Placements: dto.FromPlacements(placements),
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}, ""))
}

// ListStudentPlacements lists a student's placements
// @Summary List student placements
// @Tags placements
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.PlacementResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Router /placements/student/{studentId} [get]
func (c *PlacementController) ListStudentPlacements(ctx *gin.Context) {
	studentID, ok := parsePositiveParam(ctx, "studentId", "student ID")
	if !ok {
		return
	}

	placements, err := c.placementService.ListStudentPlacements(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromPlacements(placements), ""))
}

// ListOfferings lists the university offerings of a programme
// @Summary List programme offerings
// @Description Lists the universities offering a programme with their capacity and filled seats
// @Tags offerings
// @Produce json
// @Param id path int true "Programme ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.OfferingResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid programme ID"
// @Router /programmes/{id}/offerings [get]
func (c *PlacementController) ListOfferings(ctx *gin.Context) {
	programmeID, ok := parsePositiveParam(ctx, "id", "programme ID")
	if !ok {
		return
	}

	offerings, err := c.placementService.ListOfferings(ctx.Request.Context(), programmeID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromOfferings(offerings), ""))
}
