package models

// Cluster is a named scoring rubric shared by one or more programmes
type Cluster struct {
	ID           int64                       `json:"id" db:"id"`
	Code         string                      `json:"code" db:"code"`
	Name         string                      `json:"name" db:"name"`
	Requirements []ClusterSubjectRequirement `json:"requirements,omitempty"`
}

// ClusterSubjectRequirement is one subject threshold of a cluster.
// Requirements sharing a non-nil AlternativeGroup are substitutes for each other;
// requirements without a group are all mandatory.
type ClusterSubjectRequirement struct {
	ID               int64  `json:"id" db:"id"`
	ClusterID        int64  `json:"clusterId" db:"cluster_id"`
	SubjectCode      string `json:"subjectCode" db:"subject_code"`
	SubjectName      string `json:"subjectName" db:"subject_name"`
	MinPoints        int    `json:"minPoints" db:"min_points"`
	AlternativeGroup *int   `json:"alternativeGroup,omitempty" db:"alternative_group"`
}

// IsMandatory reports whether the requirement belongs to no alternative group
func (r ClusterSubjectRequirement) IsMandatory() bool {
	return r.AlternativeGroup == nil
}
