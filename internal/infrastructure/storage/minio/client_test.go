package minio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/keyip-molkit/internal/testutil"
	"github.com/turtacn/keyip-molkit/pkg/errors"
)

type ClientTestSuite struct {
	suite.Suite
	log *testutil.MockLogger
}

func (s *ClientTestSuite) SetupTest() {
	s.log = testutil.NewMockLogger()
}

func (s *ClientTestSuite) TestApplyDefaults() {
	cfg := &MinIOConfig{}
	applyDefaults(cfg)

	assert.Equal(s.T(), "us-east-1", cfg.Region)
	assert.Equal(s.T(), "molkit-molfiles", cfg.Bucket)
	assert.Equal(s.T(), int64(16<<20), cfg.MaxObjectBytes)
	assert.Equal(s.T(), 10*time.Second, cfg.ConnectTimeout)
}

func (s *ClientTestSuite) TestEnsureBucket_Creates() {
	api := newMemoryAPI()
	c := NewMinIOClientWithAPI(api, &MinIOConfig{Bucket: "mols"}, s.log)

	require.NoError(s.T(), c.EnsureBucket(context.Background()))
	ok, _ := api.BucketExists(context.Background(), "mols")
	assert.True(s.T(), ok)
	assert.True(s.T(), s.log.HasMessage("info", "bucket created"))
	assert.Equal(s.T(), "mols", c.Bucket())
}

func (s *ClientTestSuite) TestEnsureBucket_Unreachable() {
	api := newMemoryAPI()
	api.err = assert.AnError
	c := NewMinIOClientWithAPI(api, &MinIOConfig{}, s.log)

	err := c.EnsureBucket(context.Background())
	assert.True(s.T(), errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func (s *ClientTestSuite) TestHealthCheck() {
	api := newMemoryAPI("mols")
	c := NewMinIOClientWithAPI(api, &MinIOConfig{Bucket: "mols"}, s.log)
	assert.NoError(s.T(), c.HealthCheck(context.Background()))

	missing := NewMinIOClientWithAPI(api, &MinIOConfig{Bucket: "other"}, s.log)
	assert.Error(s.T(), missing.HealthCheck(context.Background()))

	require.NoError(s.T(), c.Close())
	assert.Error(s.T(), c.HealthCheck(context.Background()))
}

func (s *ClientTestSuite) TestNewMinIOClient_RequiresEndpoint() {
	_, err := NewMinIOClient(&MinIOConfig{}, s.log)
	assert.True(s.T(), errors.IsValidation(err))
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

//Personal.AI order the ending
