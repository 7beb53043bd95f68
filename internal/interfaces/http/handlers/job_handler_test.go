package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-molkit/internal/application/ingest"
	"github.com/turtacn/keyip-molkit/internal/testutil"
	"github.com/turtacn/keyip-molkit/pkg/errors"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

type stubSubmitter struct {
	got *mtypes.MolfileInput
	err error
}

func (s *stubSubmitter) Submit(_ context.Context, in *mtypes.MolfileInput) (*ingest.SubmitResult, error) {
	s.got = in
	if s.err != nil {
		return nil, s.err
	}
	return &ingest.SubmitResult{JobID: "job-1", ObjectKey: "jobs/job-1.mol", Topic: "molfile.ingest", QueuedAt: time.Now()}, nil
}

func TestJobHandler_Submit(t *testing.T) {
	sub := &stubSubmitter{}
	r := newEngine(NewJobHandler(sub).RegisterRoutes)
	w, env := postJSON(t, r, "/api/v1/jobs", mtypes.MolfileInput{Molfile: testutil.EthanolMolfile()})

	require.Equal(t, http.StatusAccepted, w.Code)
	var res ingest.SubmitResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "job-1", res.JobID)
	assert.Equal(t, testutil.EthanolMolfile(), sub.got.Molfile)
}

func TestJobHandler_Errors(t *testing.T) {
	sub := &stubSubmitter{err: errors.New(errors.ErrCodeExternalService, "broker unreachable: 10.0.0.1")}
	r := newEngine(NewJobHandler(sub).RegisterRoutes)
	w, env := postJSON(t, r, "/api/v1/jobs", mtypes.MolfileInput{Molfile: testutil.EthanolMolfile()})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "COMMON_014", env.Error.Code)
	assert.Equal(t, "external service error", env.Error.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.1")

	sub.err = errors.New(errors.ErrCodeValidation, "molfile cannot be empty")
	w, _ = postJSON(t, r, "/api/v1/jobs", mtypes.MolfileInput{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

//Personal.AI order the ending
