// Package eligibility scores a student's KCSE results against a cluster's
// subject requirements. Everything here is a pure function of its inputs.
package eligibility

import (
	"github.com/yigit/unicluster/internal/app/models"
)

// Result is the outcome of evaluating one student against one cluster
type Result struct {
	Eligible bool    `json:"eligible"`
	Score    float64 `json:"score"`
}

// Candidate pairs a cluster with the student's result against it
type Candidate struct {
	ClusterID int64
	Result    Result
}

// Evaluate decides whether results satisfy requirements and computes the cluster score.
//
// Mandatory requirements (no alternative group) must each be met. Every
// alternative group must have at least one member met, and only its best
// qualifying member counts towards the score. A missing subject contributes nothing
// and satisfies nothing; a subject with no recorded points counts as zero. An empty
// requirement list passes with score 0.
func Evaluate(requirements []models.ClusterSubjectRequirement, results []models.SubjectResult) Result {
	points := indexPoints(results)
	res := Result{Eligible: true}

	groups := make(map[int][]models.ClusterSubjectRequirement)
	var groupOrder []int

	for _, req := range requirements {
		if req.IsMandatory() {
			p, ok := points[req.SubjectCode]
			if ok && p >= req.MinPoints {
				res.Score += float64(p)
			} else {
				res.Eligible = false
			}
			continue
		}

		g := *req.AlternativeGroup
		if _, seen := groups[g]; !seen {
			groupOrder = append(groupOrder, g)
		}
		groups[g] = append(groups[g], req)
	}

	for _, g := range groupOrder {
		best, ok := bestInGroup(groups[g], points)
		if !ok {
			res.Eligible = false
			continue
		}
		res.Score += float64(best)
	}

	return res
}

// Best returns the eligible candidate with the highest score; ties go to the lower cluster ID.
func Best(candidates []Candidate) (Candidate, bool) {
	var best Candidate
	found := false
	for _, c := range candidates {
		if !c.Result.Eligible {
			continue
		}
		if !found ||
			c.Result.Score > best.Result.Score ||
			(c.Result.Score == best.Result.Score && c.ClusterID < best.ClusterID) {
			best = c
			found = true
		}
	}
	return best, found
}

func bestInGroup(members []models.ClusterSubjectRequirement, points map[string]int) (int, bool) {
	best, found := 0, false
	for _, req := range members {
		p, ok := points[req.SubjectCode]
		if !ok || p < req.MinPoints {
			continue
		}
		if !found || p > best {
			best, found = p, true
		}
	}
	return best, found
}

// indexPoints maps subject code to points, keeping the highest when a code repeats.
// A result without points counts as zero.
func indexPoints(results []models.SubjectResult) map[string]int {
	points := make(map[string]int, len(results))
	for _, r := range results {
		p := 0
		if r.Points != nil {
			p = *r.Points
		}
		if cur, ok := points[r.SubjectCode]; !ok || p > cur {
			points[r.SubjectCode] = p
		}
	}
	return points
}
