package models

import "fmt"

// RoleType defines the role carried in access tokens
type RoleType string

const (
	RoleStudent RoleType = "student"
	RoleAdmin   RoleType = "admin"
)

// ApplicationStatus is the closed set of states an application can be in.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusPlaced    ApplicationStatus = "placed"
	StatusNotPlaced ApplicationStatus = "not_placed"
	StatusWithdrawn ApplicationStatus = "withdrawn"
	StatusRejected  ApplicationStatus = "rejected"
)

// ApplicationStatuses lists every valid status, in lifecycle order
var ApplicationStatuses = []ApplicationStatus{
	StatusPending,
	StatusPlaced,
	StatusNotPlaced,
	StatusWithdrawn,
	StatusRejected,
}

// ParseApplicationStatus converts a stored or user-supplied value into an ApplicationStatus.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	switch ApplicationStatus(s) {
	case StatusPending, StatusPlaced, StatusNotPlaced, StatusWithdrawn, StatusRejected:
		return ApplicationStatus(s), nil
	default:
		return "", fmt.Errorf("unknown application status %q", s)
	}
}

// IsTerminal reports whether the status can no longer be changed by the scheduler.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case StatusPending:
		return false
	case StatusPlaced, StatusNotPlaced, StatusWithdrawn, StatusRejected:
		return true
	default:
		return false
	}
}

// IsAdministrative reports whether the status is set by an administrator rather than the scheduler.
func (s ApplicationStatus) IsAdministrative() bool {
	return s == StatusWithdrawn || s == StatusRejected
}

func (s ApplicationStatus) String() string {
	return string(s)
}
