package dto

import (
	"time"

	"github.com/yigit/unicluster/internal/app/models"
)

// CreateApplicationRequest is the body of an application submission
type CreateApplicationRequest struct {
	StudentID   int64 `json:"studentId" binding:"required,gt=0" example:"7"`
	ProgrammeID int64 `json:"programmeId" binding:"required,gt=0" example:"10"`
	ChoiceOrder int   `json:"choiceOrder" binding:"required,min=1,max=6" example:"1"`
}

// UpdateApplicationStatusRequest withdraws or rejects an application
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=withdrawn rejected" example:"withdrawn" enums:"withdrawn,rejected"`
}

// ApplicationResponse is an application as returned by the API
type ApplicationResponse struct {
	ID              int64     `json:"id" example:"12"`
	StudentID       int64     `json:"studentId" example:"7"`
	ProgrammeID     int64     `json:"programmeId" example:"10"`
	ClusterID       *int64    `json:"clusterId,omitempty" example:"3"`
	ChoiceOrder     int       `json:"choiceOrder" example:"1"`
	ApplicationDate time.Time `json:"applicationDate"`
	Status          string    `json:"status" example:"pending" enums:"pending,placed,not_placed,withdrawn,rejected"`
	ClusterScore    float64   `json:"clusterScore" example:"42"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ApplicationListResponse is a page of applications
type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// FromApplication converts a models.Application to an ApplicationResponse
func FromApplication(app *models.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:              app.ID,
		StudentID:       app.StudentID,
		ProgrammeID:     app.ProgrammeID,
		ClusterID:       app.ClusterID,
		ChoiceOrder:     app.ChoiceOrder,
		ApplicationDate: app.ApplicationDate,
		Status:          app.Status.String(),
		ClusterScore:    app.ClusterScore,
		UpdatedAt:       app.UpdatedAt,
	}
}

// FromApplications converts a slice of applications, never returning nil
func FromApplications(apps []*models.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, FromApplication(app))
	}
	return out
}
