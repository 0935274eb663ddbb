package dto

import "github.com/yigit/unicluster/internal/app/models"

// OfferingResponse is a university offering with its seat counts
type OfferingResponse struct {
	ID             int64  `json:"id" example:"3"`
	UniversityID   int64  `json:"universityId" example:"2"`
	UniversityName string `json:"universityName,omitempty" example:"University of Nairobi"`
	ProgrammeID    int64  `json:"programmeId" example:"10"`
	Capacity       int    `json:"capacity" example:"120"`
	FilledSlots    int    `json:"filledSlots" example:"87"`
	Remaining      int    `json:"remaining" example:"33"`
}

// FromOfferings converts offerings, never returning nil
func FromOfferings(offerings []*models.Offering) []OfferingResponse {
	out := make([]OfferingResponse, 0, len(offerings))
	for _, o := range offerings {
		out = append(out, OfferingResponse{
			ID:             o.ID,
			UniversityID:   o.UniversityID,
			UniversityName: o.UniversityName,
			ProgrammeID:    o.ProgrammeID,
			Capacity:       o.Capacity,
			FilledSlots:    o.FilledSlots,
			Remaining:      o.Remaining(),
		})
	}
	return out
}

// EligibilityResponse previews a student's standing against a cluster
type EligibilityResponse struct {
	StudentID   int64   `json:"studentId" example:"7"`
	ClusterID   int64   `json:"clusterId" example:"3"`
	ClusterCode string  `json:"clusterCode" example:"CL3"`
	ClusterName string  `json:"clusterName" example:"Computing, IT & Related"`
	Eligible    bool    `json:"eligible" example:"true"`
	Score       float64 `json:"score" example:"40"`
}
