package s3sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ae-kit/tools/internal/cli/config"
)

func TestMapping(t *testing.T) {
	m := FromConfig(config.AWSConfig{
		DagRoot:           "/home/me/airflow/dags",
		PluginsRoot:       "/home/me/airflow/plugins",
		S3DagLocation:     "s3://bucket/dags",
		S3PluginsLocation: "",
	})

	assert.Equal(t, []string{"/home/me/airflow/dags", "/home/me/airflow/plugins"}, m.Sources())

	dst, err := m.Target("/home/me/airflow/dags")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/dags", dst)

	_, err = m.Target("/home/me/airflow/plugins")
	assert.EqualError(t, err, "aws-info.s3-plugins-location is not set for /home/me/airflow/plugins")

	_, err = m.Target("/tmp")
	assert.Error(t, err)

	_, err = m.Target("")
	assert.ErrorContains(t, err, "aws-info.dag-root")
}

func TestEmptyMapping(t *testing.T) {
	assert.Empty(t, FromConfig(config.AWSConfig{}).Sources())
}

func TestCommand(t *testing.T) {
	c := Command("/dags", "s3://bucket/dags", false)
	assert.Equal(t, "aws s3 sync /dags s3://bucket/dags --exclude '**/.DS_Store' --exclude '**/__pycache__/**' --exclude .DS_Store", c.String())

	assert.Equal(t, "--dryrun", Args("a", "b", true)[len(Args("a", "b", true))-1])
}
