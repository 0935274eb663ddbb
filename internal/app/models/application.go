package models

import "time"

// Application is a student's request for a programme.
// ClusterID and ClusterScore are resolved once at submission; a nil ClusterID
// means the programme had no cluster mapping.
type Application struct {
	ID              int64             `json:"id" db:"id"`
	StudentID       int64             `json:"studentId" db:"student_id"`
	ProgrammeID     int64             `json:"programmeId" db:"programme_id"`
	ClusterID       *int64            `json:"clusterId,omitempty" db:"cluster_id"`
	ChoiceOrder     int               `json:"choiceOrder" db:"choice_order"`
	ApplicationDate time.Time         `json:"applicationDate" db:"application_date"`
	Status          ApplicationStatus `json:"status" db:"status"`
	ClusterScore    float64           `json:"clusterScore" db:"cluster_score"`
	UpdatedAt       time.Time         `json:"updatedAt" db:"updated_at"`
}

// ApplicationFilter narrows application listings
type ApplicationFilter struct {
	Status *ApplicationStatus
	Page   int
	Size   int
}
