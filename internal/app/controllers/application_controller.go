package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/app/models/dto"
	"github.com/yigit/unicluster/internal/app/services"
	"github.com/yigit/unicluster/internal/middleware"
	"github.com/yigit/unicluster/internal/pkg/helpers"
)

// ApplicationController handles application intake and reads
type ApplicationController struct {
	applicationService ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService ApplicationService) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
	}
}

// CreateApplication submits an application
// @Summary Submit an application
// @Description Scores the student against the programme's clusters and stores a pending application
// @Tags applications
// @Accept json
// @Produce json
// @Param request body dto.CreateApplicationRequest true "Application information"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Already applied for this programme"
// @Failure 422 {object} dto.ErrorResponse "Not eligible or programme has no cluster"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /applications [post]
func (c *ApplicationController) CreateApplication(ctx *gin.Context) {
	var req dto.CreateApplicationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.applicationService.Submit(ctx.Request.Context(), services.SubmitApplication{
		StudentID:   req.StudentID,
		ProgrammeID: req.ProgrammeID,
		ChoiceOrder: req.ChoiceOrder,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromApplication(app), "Application submitted"))
}

// UpdateApplicationStatus withdraws or rejects an application
// @Summary Withdraw or reject an application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application is no longer pending"
// @Router /applications/{id}/status [patch]
func (c *ApplicationController) UpdateApplicationStatus(ctx *gin.Context) {
	id, ok := parsePositiveParam(ctx, "id", "application ID")
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	status, err := models.ParseApplicationStatus(req.Status)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status").WithField("status")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	app, err := c.applicationService.UpdateStatus(ctx.Request.Context(), id, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromApplication(app), "Application status updated"))
}

// GetApplication retrieves an application by ID
// @Summary Get application by ID
// @Tags applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid application ID"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) GetApplication(ctx *gin.Context) {
	id, ok := parsePositiveParam(ctx, "id", "application ID")
	if !ok {
		return
	}

	app, err := c.applicationService.GetApplication(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromApplication(app), ""))
}

// ListApplications lists applications
// @Summary List applications
// @Tags applications
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, placed, not_placed, withdrawn, rejected)
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Router /applications [get]
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	filter := models.ApplicationFilter{}
	if raw := ctx.Query("status"); raw != "" {
		status, err := models.ParseApplicationStatus(raw)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid status").
				WithField("status").
				WithDetails(err.Error())
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		filter.Status = &status
	}
	filter.Page, filter.Size = helpers.ParsePaginationParams(ctx)

	apps, total, err := c.applicationService.ListApplications(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ApplicationListResponse{
		Applications: dto.FromApplications(apps),
		Pagination:   helpers.NewPaginationInfo(total, filter.Page, filter.Size),
	}, ""))
}

// ListStudentApplications lists a student's applications
// @Summary List student applications
// @Tags applications
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Router /applications/student/{studentId} [get]
func (c *ApplicationController) ListStudentApplications(ctx *gin.Context) {
	studentID, ok := parsePositiveParam(ctx, "studentId", "student ID")
	if !ok {
		return
	}

	apps, err := c.applicationService.ListStudentApplications(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromApplications(apps), ""))
}

// GetEligibility previews a student's eligibility for a cluster
// @Summary Preview cluster eligibility
// @Description Evaluates the student's results against a cluster without storing anything
// @Tags students
// @Produce json
// @Param id path int true "Student ID"
// @Param clusterId query int true "Cluster ID"
// @Success 200 {object} dto.APIResponse{data=dto.EligibilityResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid student or cluster ID"
// @Failure 404 {object} dto.ErrorResponse "Student or cluster not found"
// @Router /students/{id}/eligibility [get]
func (c *ApplicationController) GetEligibility(ctx *gin.Context) {
	studentID, ok := parsePositiveParam(ctx, "id", "student ID")
	if !ok {
		return
	}

	clusterID, err := strconv.ParseInt(ctx.Query("clusterId"), 10, 64)
	if err != nil || clusterID <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid cluster ID").
			WithField("clusterId").
			WithDetails("clusterId query parameter must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	eval, err := c.applicationService.EvaluateStudent(ctx.Request.Context(), studentID, clusterID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.EligibilityResponse{
		StudentID:   studentID,
		ClusterID:   eval.ClusterID,
		ClusterCode: eval.Code,
		ClusterName: eval.Name,
		Eligible:    eval.Result.Eligible,
		Score:       eval.Result.Score,
	}, ""))
}
