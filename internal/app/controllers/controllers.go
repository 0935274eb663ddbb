package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/unicluster/internal/app/models"
	"github.com/yigit/unicluster/internal/app/models/dto"
	"github.com/yigit/unicluster/internal/app/services"
)

// PlacementService is what the placement and offering handlers need
type PlacementService interface {
	RunAutoPlacement(ctx context.Context, year int) ([]*models.Placement, error)
	CreateManualPlacement(ctx context.Context, applicationID, offeringID int64, year int) (*models.Placement, error)
	DeletePlacement(ctx context.Context, id int64) error
	GetPlacement(ctx context.Context, id int64) (*models.Placement, error)
	ListPlacements(ctx context.Context, filter models.PlacementFilter) ([]*models.Placement, int64, error)
	ListStudentPlacements(ctx context.Context, studentID int64) ([]*models.Placement, error)
	ListOfferings(ctx context.Context, programmeID int64) ([]*models.Offering, error)
}

// ApplicationService is what the application and eligibility handlers need
type ApplicationService interface {
	Submit(ctx context.Context, req services.SubmitApplication) (*models.Application, error)
	UpdateStatus(ctx context.Context, id int64, to models.ApplicationStatus) (*models.Application, error)
	GetApplication(ctx context.Context, id int64) (*models.Application, error)
	ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int64, error)
	ListStudentApplications(ctx context.Context, studentID int64) ([]*models.Application, error)
	EvaluateStudent(ctx context.Context, studentID, clusterID int64) (*services.ClusterEvaluation, error)
}

// parsePositiveParam reads a positive integer path parameter, writing a 400 response when it is not one
func parsePositiveParam(ctx *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+label).
			WithField(name).
			WithDetails(label + " must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// parseYearQuery reads an optional positive year query parameter
func parseYearQuery(ctx *gin.Context, required bool) (*int, bool) {
	raw, present := ctx.GetQuery("year")
	if !present || raw == "" {
		if required {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Year is required").WithField("year")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return nil, false
		}
		return nil, true
	}

	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid year").
			WithField("year").
			WithDetails(fmt.Sprintf("year must be a positive integer, got %q", raw))
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return &year, true
}
