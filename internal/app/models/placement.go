package models

import "time"

// Placement is the durable record of a seat assigned to an application.
type Placement struct {
	ID            int64     `json:"id" db:"id"`
	StudentID     int64     `json:"studentId" db:"student_id"`
	ProgrammeID   int64     `json:"programmeId" db:"programme_id"`
	UniversityID  int64     `json:"universityId" db:"university_id"`
	OfferingID    int64     `json:"offeringId" db:"offering_id"`
	ApplicationID int64     `json:"applicationId" db:"application_id"`
	Year          int       `json:"year" db:"year"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// PlacementFilter narrows placement listings
type PlacementFilter struct {
	Year *int
	Page int
	Size int
}

// Notification is an in-app message for a student
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	StudentID int64     `json:"studentId" db:"student_id"`
	Message   string    `json:"message" db:"message"`
	IsRead    bool      `json:"isRead" db:"is_read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
