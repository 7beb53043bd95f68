package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/keyip-molkit/internal/application/ingest"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/storage/minio"
	"github.com/turtacn/keyip-molkit/pkg/errors"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

// JobSubmitter queues a structure for the ingest worker.
type JobSubmitter interface {
	Submit(ctx context.Context, in *mtypes.MolfileInput) (*ingest.SubmitResult, error)
}

// SubmitterFactory connects a JobSubmitter.  inline skips object storage and
// carries the text in the message.  The returned func releases connections.
type SubmitterFactory func(ctx context.Context, cc *CLIContext, inline bool) (JobSubmitter, func(), error)

// defaultSubmitter connects to MinIO (unless inline) and the Kafka brokers
// named in the configuration.
func defaultSubmitter(ctx context.Context, cc *CLIContext, inline bool) (JobSubmitter, func(), error) {
	cfg, log := cc.Config, cc.Logger
	var (
		store   minio.MolfileStore
		closers []func() error
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("close failed", logging.Err(err))
			}
		}
	}

	if !inline {
		client, err := minio.NewMinIOClient(&cfg.MinIO, log)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		if err := client.EnsureBucket(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		store = minio.NewMolfileStore(client, log)
	}

	producer, err := kafka.NewProducer(cfg.ProducerConfig(), log)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	closers = append(closers, producer.Close)

	sub, err := ingest.NewSubmitter(store, producer, cfg.Worker.InputTopic, log)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return sub, closeAll, nil
}

func newSubmitCmd() *cobra.Command {
	var (
		in                 inputFlags
		inline             bool
		relaxedAromaticity bool
	)
	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Queue a molfile or SD file for the ingest worker",
		Long:  "Submit stores FILE in object storage and publishes an ingest job. Results\nappear on the annotated topic. FILE may be - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			input, err := in.input(cmd, args[0])
			if err != nil {
				return err
			}
			if relaxedAromaticity {
				input.Annotate.Aromaticity = "relaxed"
			}
			if err := input.Validate(); err != nil {
				return errors.Wrap(err, errors.ErrCodeValidation, "invalid input")
			}

			sub, release, err := cc.Submitter(cmd.Context(), cc, inline)
			if err != nil {
				return err
			}
			defer release()

			res, err := sub.Submit(cmd.Context(), input)
			if err != nil {
				return err
			}
			return PrintResult(cmd, submitView(*res))
		},
	}
	in.register(cmd.Flags())
	cmd.Flags().BoolVar(&inline, "inline", false, "send the text inside the message instead of object storage")
	cmd.Flags().BoolVar(&relaxedAromaticity, "relaxed-aromaticity", false, "use the relaxed aromaticity model")
	return cmd
}

type submitView ingest.SubmitResult

func (v submitView) JSONValue() interface{} { return ingest.SubmitResult(v) }

func (v submitView) String() string {
	s := fmt.Sprintf("job %s queued on %s at %s\n", v.JobID, v.Topic, v.QueuedAt.Format(time.RFC3339))
	if v.ObjectKey != "" {
		s += fmt.Sprintf("object %s\n", v.ObjectKey)
	}
	return s
}

//Personal.AI order the ending
