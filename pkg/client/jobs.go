package client

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/keyip-molkit/pkg/errors"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

// JobReceipt identifies an accepted ingest job.  The annotation result is
// published on the annotated topic, not returned by the API.
type JobReceipt struct {
	JobID     string    `json:"job_id"`
	ObjectKey string    `json:"object_key,omitempty"`
	Topic     string    `json:"topic"`
	QueuedAt  time.Time `json:"queued_at"`
}

// JobsClient calls /api/v1/jobs.
type JobsClient struct {
	client *Client
}

// Submit queues in for asynchronous annotation.  Submissions are not
// retried on server errors since each accepted call creates a new job.
func (j *JobsClient) Submit(ctx context.Context, in *mtypes.MolfileInput) (*JobReceipt, error) {
	if in == nil {
		return nil, errors.New(errors.ErrCodeValidation, "input is required")
	}
	if err := in.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid input")
	}
	var out JobReceipt
	if err := j.client.do(ctx, http.MethodPost, "/api/v1/jobs", in, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
