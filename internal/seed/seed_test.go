package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/unicluster/internal/app/models"
)

type passthroughTx struct{ calls int }

func (p *passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type fakeClusterWriter struct {
	ids          map[string]int64
	requirements map[int64][]models.ClusterSubjectRequirement
	failCode     string
}

func newFakeClusterWriter() *fakeClusterWriter {
	return &fakeClusterWriter{
		ids:          map[string]int64{},
		requirements: map[int64][]models.ClusterSubjectRequirement{},
	}
}

func (f *fakeClusterWriter) UpsertCluster(_ context.Context, c *models.Cluster) error {
	if c.Code == f.failCode {
		return errors.New("insert failed")
	}
	id, ok := f.ids[c.Code]
	if !ok {
		id = int64(len(f.ids) + 1)
		f.ids[c.Code] = id
	}
	c.ID = id
	return nil
}

func (f *fakeClusterWriter) ReplaceRequirements(_ context.Context, clusterID int64, reqs []models.ClusterSubjectRequirement) error {
	f.requirements[clusterID] = reqs
	return nil
}

func TestDefaultClusters(t *testing.T) {
	clusters := DefaultClusters()
	require.Len(t, clusters, 10)

	seen := map[string]bool{}
	for _, c := range clusters {
		assert.False(t, seen[c.Code], "duplicate code %s", c.Code)
		seen[c.Code] = true
		for _, r := range c.Requirements {
			assert.NotEmpty(t, r.SubjectCode)
			assert.Positive(t, r.MinPoints)
			assert.LessOrEqual(t, r.MinPoints, 12)
		}
	}

	cl2 := clusters[1]
	require.Equal(t, "CL2", cl2.Code)
	alt := cl2.Requirements[3]
	require.NotNil(t, alt.AlternativeGroup)
	assert.Equal(t, 1, *alt.AlternativeGroup)
	assert.True(t, cl2.Requirements[0].IsMandatory())
}

func TestCreateDefaultData_IsIdempotent(t *testing.T) {
	tx := &passthroughTx{}
	writer := newFakeClusterWriter()

	require.NoError(t, CreateDefaultData(context.Background(), tx, writer, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(context.Background(), tx, writer, zerolog.Nop()))

	assert.Len(t, writer.ids, 10)
	assert.Equal(t, 20, tx.calls)
	assert.Len(t, writer.requirements[writer.ids["CL3"]], 4)
	assert.Empty(t, writer.requirements[writer.ids["CL4"]])
}

func TestCreateDefaultData_ContinuesPastFailure(t *testing.T) {
	writer := newFakeClusterWriter()
	writer.failCode = "CL5"

	err := CreateDefaultData(context.Background(), &passthroughTx{}, writer, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CL5")
	assert.Len(t, writer.ids, 9)
	assert.Contains(t, writer.ids, "CL10")
}
