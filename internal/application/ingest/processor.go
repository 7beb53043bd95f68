package ingest

import (
	"context"
	"time"

	"github.com/turtacn/keyip-molkit/internal/application/annotation"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/database/redis"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/storage/minio"
	"github.com/turtacn/keyip-molkit/pkg/errors"
	"github.com/turtacn/keyip-molkit/pkg/types/common"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

// Locker grants exclusive processing of one job.  Acquire returns an error
// with code ErrCodeConflict when another holder owns the job.
type Locker interface {
	Acquire(ctx context.Context, jobID string) (release func(context.Context), err error)
}

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker returns a Locker backed by one redis lease per job.
func NewRedisLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisLocker{client: client, ttl: ttl}
}

func (l *redisLocker) Acquire(ctx context.Context, jobID string) (func(context.Context), error) {
	m := redis.NewMutex(l.client, "job:"+jobID, l.ttl)
	if err := m.TryLock(ctx); err != nil {
		return nil, err
	}
	return func(ctx context.Context) { _ = m.Unlock(ctx) }, nil
}

// ProcessorConfig tunes the worker handler.
type ProcessorConfig struct {
	OutputTopic string
	Timeout     time.Duration
}

// ProcessorDeps are the collaborators of a Processor.  Store, Locker,
// Metrics and Logger may be nil.
type ProcessorDeps struct {
	Service   annotation.Service
	Store     minio.MolfileStore
	Publisher Publisher
	Locker    Locker
	Metrics   *prometheus.AppMetrics
	Logger    logging.Logger
}

// Processor annotates ingest jobs and publishes one IngestResult per job.
// Data errors are reported in the result; infrastructure errors are returned
// so the consumer retries and eventually dead-letters the message.
type Processor struct {
	cfg     ProcessorConfig
	svc     annotation.Service
	store   minio.MolfileStore
	pub     Publisher
	locks   Locker
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	now     func() time.Time
}

func NewProcessor(cfg ProcessorConfig, deps ProcessorDeps) (*Processor, error) {
	if deps.Service == nil {
		return nil, errors.New(errors.ErrCodeValidation, "annotation service is required")
	}
	if deps.Publisher == nil {
		return nil, errors.New(errors.ErrCodeValidation, "publisher is required")
	}
	if cfg.OutputTopic == "" {
		cfg.OutputTopic = kafka.TopicMolfileAnnotated
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &Processor{
		cfg:     cfg,
		svc:     deps.Service,
		store:   deps.Store,
		pub:     deps.Publisher,
		locks:   deps.Locker,
		metrics: deps.Metrics,
		logger:  logging.OrNop(deps.Logger).Named("ingest"),
		now:     time.Now,
	}, nil
}

// Handle is a kafka.MessageHandler.
func (p *Processor) Handle(ctx context.Context, msg *kafka.Message) error {
	done := p.metrics.WorkerStarted(msg.Topic)
	defer done()

	err := p.handle(ctx, msg)
	status := prometheus.StatusSuccess
	if err != nil {
		status = prometheus.StatusError
	}
	p.metrics.RecordWorkerMessage(msg.Topic, status)
	return err
}

func (p *Processor) handle(ctx context.Context, msg *kafka.Message) error {
	log := p.logger.With(logging.String("topic", msg.Topic), logging.Int64("offset", msg.Offset))

	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		log.Warn("dropping undecodable message", logging.Err(err))
		return nil
	}
	if env.EventType != kafka.EventMolfileIngest {
		log.Debug("ignoring event", logging.String("event_type", env.EventType))
		return nil
	}
	var job mtypes.IngestMessage
	if err := env.DecodePayload(&job); err != nil {
		log.Warn("dropping message with bad payload", logging.Err(err))
		return nil
	}
	if job.JobID == "" {
		log.Warn("dropping message without job id")
		return nil
	}
	log = log.With(logging.String("job_id", job.JobID))
	if err := job.Validate(); err != nil {
		return p.publish(ctx, p.failure(job, errors.Wrap(err, errors.ErrCodeValidation, "invalid ingest message")))
	}

	if p.locks != nil {
		release, err := p.locks.Acquire(ctx, job.JobID)
		if errors.IsCode(err, errors.ErrCodeConflict) {
			log.Info("job already in progress elsewhere")
			return nil
		}
		if err != nil {
			return err
		}
		defer release(context.WithoutCancel(ctx))
	}

	in := job.Input
	if job.ObjectKey != "" {
		if p.store == nil {
			return p.publish(ctx, p.failure(job, errors.New(errors.ErrCodeMoleculeSourceError, "object storage is not configured")))
		}
		text, err := p.store.Fetch(ctx, job.ObjectKey)
		if err != nil {
			if permanent(err) {
				return p.publish(ctx, p.failure(job, err))
			}
			return err
		}
		in.Molfile = text
	}

	actx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	start := p.now()
	anns, err := p.svc.AnnotateAll(actx, &in)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !permanent(err) {
			return err
		}
		log.Info("ingest job rejected", logging.Err(err))
		return p.publish(ctx, p.failure(job, err))
	}

	log.Info("ingest job annotated",
		logging.Int("records", len(anns)),
		logging.Duration("elapsed", p.now().Sub(start)))
	return p.publish(ctx, &mtypes.IngestResult{
		JobID:       job.JobID,
		ObjectKey:   job.ObjectKey,
		Annotations: anns,
		ProcessedAt: common.Timestamp(p.now().UTC()),
	})
}

// permanent reports whether err is a property of the job itself, so that
// retrying cannot help.
func permanent(err error) bool {
	return errors.IsClientError(errors.GetCode(err))
}

func (p *Processor) failure(job mtypes.IngestMessage, err error) *mtypes.IngestResult {
	detail := &common.ErrorDetail{Code: string(errors.GetCode(err)), Message: err.Error()}
	if fe, ok := errors.AsFormatError(err); ok && fe.Line > 0 {
		detail.Details = map[string]interface{}{"line": fe.Line}
	}
	return &mtypes.IngestResult{
		JobID:       job.JobID,
		ObjectKey:   job.ObjectKey,
		Error:       detail,
		ProcessedAt: common.Timestamp(p.now().UTC()),
	}
}

func (p *Processor) publish(ctx context.Context, res *mtypes.IngestResult) error {
	env, err := kafka.NewEventEnvelope(kafka.EventMolfileAnnotated, Source, res)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(p.cfg.OutputTopic, res.JobID)
	if err != nil {
		return err
	}
	return p.pub.Publish(ctx, msg)
}

//Personal.AI order the ending
