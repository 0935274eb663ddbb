package dto

import (
	"time"

	"github.com/yigit/unicluster/internal/app/models"
)

// CreatePlacementRequest is the body of a manual placement
type CreatePlacementRequest struct {
	ApplicationID int64 `json:"applicationId" binding:"required,gt=0" example:"12"`
	OfferingID    int64 `json:"offeringId" binding:"required,gt=0" example:"3"`
	Year          int   `json:"year" binding:"required,gt=0" example:"2026"`
}

// PlacementResponse is a placement as returned by the API
type PlacementResponse struct {
	ID            int64     `json:"id" example:"41"`
	StudentID     int64     `json:"studentId" example:"7"`
	ProgrammeID   int64     `json:"programmeId" example:"10"`
	UniversityID  int64     `json:"universityId" example:"2"`
	OfferingID    int64     `json:"offeringId" example:"3"`
	ApplicationID int64     `json:"applicationId" example:"12"`
	Year          int       `json:"year" example:"2026"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PlacementListResponse is a page of placements
type PlacementListResponse struct {
	Placements []PlacementResponse `json:"placements"`
	Pagination PaginationInfo      `json:"pagination"`
}

// AutoPlacementResponse summarises an automatic run for the caller
type AutoPlacementResponse struct {
	Year       int                 `json:"year" example:"2026"`
	Placed     int                 `json:"placed" example:"120"`
	Placements []PlacementResponse `json:"placements"`
}

// FromPlacement converts a models.Placement to a PlacementResponse
func FromPlacement(p *models.Placement) PlacementResponse {
	return PlacementResponse{
		ID:            p.ID,
		StudentID:     p.StudentID,
		ProgrammeID:   p.ProgrammeID,
		UniversityID:  p.UniversityID,
		OfferingID:    p.OfferingID,
		ApplicationID: p.ApplicationID,
		Year:          p.Year,
		CreatedAt:     p.CreatedAt,
	}
}

// FromPlacements converts a slice of placements, never returning nil
func FromPlacements(placements []*models.Placement) []PlacementResponse {
	out := make([]PlacementResponse, 0, len(placements))
	for _, p := range placements {
		out = append(out, FromPlacement(p))
	}
	return out
}
