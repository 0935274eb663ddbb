package models

// Student is an applicant. Only the fields the placement engine reads are mapped.
type Student struct {
	ID        int64           `json:"id" db:"id"`
	FirstName string          `json:"firstName" db:"first_name"`
	LastName  string          `json:"lastName" db:"last_name"`
	Email     string          `json:"email" db:"email"`
	KcseIndex string          `json:"kcseIndex" db:"kcse_index"`
	MeanGrade string          `json:"meanGrade" db:"mean_grade"`
	AGP       int             `json:"agp" db:"agp"`
	Results   []SubjectResult `json:"results,omitempty"`
}

// SubjectResult is one KCSE subject result. Points may be missing on imported rows.
type SubjectResult struct {
	SubjectCode string `json:"subjectCode" db:"subject_code"`
	SubjectName string `json:"subjectName" db:"subject_name"`
	Grade       string `json:"grade" db:"grade"`
	Points      *int   `json:"points" db:"points"`
}
