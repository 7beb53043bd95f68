// Package ingest moves molfile jobs through object storage and the message
// bus.  The Submitter enqueues jobs; the Processor annotates them in the
// worker and publishes the results.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/keyip-molkit/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/storage/minio"
	"github.com/turtacn/keyip-molkit/pkg/errors"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

// Source is the event source recorded on every envelope this package emits.
const Source = "molkit"

// Publisher sends one message.  *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, msg *kafka.ProducerMessage) error
}

// SubmitResult identifies an enqueued job.
type SubmitResult struct {
	JobID     string    `json:"job_id"`
	ObjectKey string    `json:"object_key,omitempty"`
	Topic     string    `json:"topic"`
	QueuedAt  time.Time `json:"queued_at"`
}

// Submitter stores molfile text and publishes ingest messages.  With a nil
// store the text travels inline in the message.
type Submitter struct {
	store  minio.MolfileStore
	pub    Publisher
	topic  string
	logger logging.Logger
}

func NewSubmitter(store minio.MolfileStore, pub Publisher, topic string, log logging.Logger) (*Submitter, error) {
	if pub == nil {
		return nil, errors.New(errors.ErrCodeValidation, "publisher is required")
	}
	if topic == "" {
		topic = kafka.TopicMolfileIngest
	}
	return &Submitter{store: store, pub: pub, topic: topic, logger: logging.OrNop(log)}, nil
}

// objectKey places job payloads under jobs/ with an extension matching the
// input format.
func objectKey(jobID string, format mtypes.InputFormat) string {
	ext := "mol"
	if format == mtypes.FormatSDF {
		ext = "sdf"
	}
	return fmt.Sprintf("jobs/%s.%s", jobID, ext)
}

// Submit enqueues in for annotation by the worker.
func (s *Submitter) Submit(ctx context.Context, in *mtypes.MolfileInput) (*SubmitResult, error) {
	if in == nil {
		return nil, errors.New(errors.ErrCodeValidation, "input required")
	}
	if err := in.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid input")
	}

	jobID := uuid.NewString()
	msg := mtypes.IngestMessage{JobID: jobID, Input: *in}
	if s.store != nil {
		key := objectKey(jobID, in.Format)
		if _, err := s.store.Put(ctx, key, in.Molfile); err != nil {
			return nil, err
		}
		msg.ObjectKey = key
		msg.Input.Molfile = ""
	}

	env, err := kafka.NewEventEnvelope(kafka.EventMolfileIngest, Source, msg)
	if err != nil {
		return nil, err
	}
	pm, err := env.ToMessage(s.topic, jobID)
	if err != nil {
		return nil, err
	}
	if err := s.pub.Publish(ctx, pm); err != nil {
		if msg.ObjectKey != "" {
			if delErr := s.store.Delete(ctx, msg.ObjectKey); delErr != nil {
				s.logger.Warn("orphaned job object", logging.String("key", msg.ObjectKey), logging.Err(delErr))
			}
		}
		return nil, err
	}

	s.logger.Info("ingest job queued",
		logging.String("job_id", jobID),
		logging.String("object_key", msg.ObjectKey),
		logging.String("topic", s.topic))
	return &SubmitResult{JobID: jobID, ObjectKey: msg.ObjectKey, Topic: s.topic, QueuedAt: env.Timestamp}, nil
}

//Personal.AI order the ending
