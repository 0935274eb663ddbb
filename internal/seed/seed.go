package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/unicluster/internal/app/models"
)

// Transactor runs a function inside a database transaction
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ClusterWriter stores clusters and their requirement sets
type ClusterWriter interface {
	UpsertCluster(ctx context.Context, c *models.Cluster) error
	ReplaceRequirements(ctx context.Context, clusterID int64, reqs []models.ClusterSubjectRequirement) error
}

func group(n int) *int { return &n }

func req(code, name string, minPoints int) models.ClusterSubjectRequirement {
	return models.ClusterSubjectRequirement{SubjectCode: code, SubjectName: name, MinPoints: minPoints}
}

func altReq(code, name string, minPoints, alternativeGroup int) models.ClusterSubjectRequirement {
	r := req(code, name, minPoints)
	r.AlternativeGroup = group(alternativeGroup)
	return r
}

// DefaultClusters returns the KUCCPS reference clusters with their subject thresholds
func DefaultClusters() []models.Cluster {
	return []models.Cluster{
		{Code: "CL1", Name: "Law", Requirements: []models.ClusterSubjectRequirement{
			req("101", "English", 11),
			req("102", "Kiswahili", 9),
			req("311", "History", 9),
		}},
		{Code: "CL2", Name: "Business, Hospitality & Related", Requirements: []models.ClusterSubjectRequirement{
			req("101", "English", 9),
			req("121", "Mathematics", 9),
			req("502", "Business Studies", 8),
			altReq("565", "Computer Studies", 8, 1),
		}},
		{Code: "CL3", Name: "Computing, IT & Related", Requirements: []models.ClusterSubjectRequirement{
			req("121", "Mathematics", 9),
			req("565", "Computer Studies", 10),
			req("101", "English", 9),
			req("233", "Chemistry", 8),
		}},
		{Code: "CL4", Name: "Education & Related"},
		{Code: "CL5", Name: "Health & Related", Requirements: []models.ClusterSubjectRequirement{
			req("121", "Mathematics", 11),
			req("233", "Chemistry", 11),
			req("231", "Biology", 11),
			req("101", "English", 10),
		}},
		{Code: "CL6", Name: "Engineering & Technology", Requirements: []models.ClusterSubjectRequirement{
			req("121", "Mathematics", 11),
			req("233", "Chemistry", 11),
			req("232", "Physics", 11),
			req("101", "English", 10),
		}},
		{Code: "CL7", Name: "Natural Sciences", Requirements: []models.ClusterSubjectRequirement{
			req("121", "Mathematics", 10),
			req("233", "Chemistry", 10),
			req("231", "Biology", 10),
		}},
		{Code: "CL8", Name: "Arts & Humanities", Requirements: []models.ClusterSubjectRequirement{
			req("101", "English", 10),
			req("102", "Kiswahili", 9),
			req("311", "History", 8),
		}},
		{Code: "CL9", Name: "Agriculture & Environment", Requirements: []models.ClusterSubjectRequirement{
			req("443", "Agriculture", 9),
			req("121", "Mathematics", 9),
			req("101", "English", 9),
		}},
		{Code: "CL10", Name: "Social Sciences", Requirements: []models.ClusterSubjectRequirement{
			req("101", "English", 10),
			req("102", "Kiswahili", 9),
			req("311", "History", 8),
		}},
	}
}

// CreateDefaultData upserts the reference clusters and replaces their
// requirement sets. Each cluster is written in its own transaction; failures
// are collected and the remaining clusters are still attempted.
func CreateDefaultData(ctx context.Context, tx Transactor, clusters ClusterWriter, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating reference clusters...")
	var finalErr error

	for _, cluster := range DefaultClusters() {
		err := tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := clusters.UpsertCluster(ctx, &cluster); err != nil {
				return err
			}
			return clusters.ReplaceRequirements(ctx, cluster.ID, cluster.Requirements)
		})
		if err != nil {
			lgr.Error().Err(err).Str("cluster", cluster.Code).Msg("Error seeding cluster")
			finalErr = errors.Join(finalErr, fmt.Errorf("cluster %s: %w", cluster.Code, err))
			continue
		}
		lgr.Debug().Str("cluster", cluster.Code).Int64("id", cluster.ID).Int("requirements", len(cluster.Requirements)).Msg("Cluster seeded")
	}

	if finalErr == nil {
		lgr.Info().Msg("Reference clusters are up to date")
	}
	return finalErr
}
