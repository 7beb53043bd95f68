// Package annotation parses submitted molfiles and derives their annotation
// summaries.  It is shared by the HTTP API, the CLI and the ingest worker.
package annotation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/turtacn/keyip-molkit/internal/domain/aromaticity"
	"github.com/turtacn/keyip-molkit/internal/domain/meta"
	"github.com/turtacn/keyip-molkit/internal/domain/molfile"
	"github.com/turtacn/keyip-molkit/internal/domain/stereo"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/keyip-molkit/pkg/errors"
	"github.com/turtacn/keyip-molkit/pkg/types/common"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

const cacheName = "annotation"

// Service is the molfile application API.
type Service interface {
	// Parse decodes a single molfile and reports its structure and
	// compliance without derived annotations.
	Parse(ctx context.Context, in *mtypes.MolfileInput) (*mtypes.AnnotationDTO, error)
	// Annotate decodes a single molfile and computes its annotations.
	Annotate(ctx context.Context, in *mtypes.MolfileInput) (*mtypes.AnnotationDTO, error)
	// AnnotateAll accepts a molfile or an SD file and annotates every record.
	AnnotateAll(ctx context.Context, in *mtypes.MolfileInput) ([]mtypes.AnnotationDTO, error)
	Equivalence(ctx context.Context, req *mtypes.EquivalenceRequest) (*mtypes.EquivalenceDTO, error)
}

// Cache is the read-through store for annotation summaries.
type Cache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
}

// Config holds service defaults.  Request options can only switch reader
// leniency on, never off.
type Config struct {
	Relaxed            bool          `mapstructure:"relaxed"`
	Extended           bool          `mapstructure:"extended"`
	ParseHeader        bool          `mapstructure:"parse_header"`
	Rescale            bool          `mapstructure:"rescale"`
	Aromaticity        string        `mapstructure:"aromaticity"`
	ComputeStereo      bool          `mapstructure:"compute_stereo"`
	ComputeHashes      bool          `mapstructure:"compute_hashes"`
	EquivalenceTimeout time.Duration `mapstructure:"equivalence_timeout"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	BatchConcurrency   int           `mapstructure:"batch_concurrency"`
}

// DefaultConfig returns strict reading with strict aromaticity and all
// annotations enabled.
func DefaultConfig() Config {
	return Config{
		ParseHeader:        true,
		Aromaticity:        string(aromaticity.ModeStrict),
		ComputeStereo:      true,
		ComputeHashes:      true,
		EquivalenceTimeout: 5 * time.Second,
		CacheTTL:           24 * time.Hour,
		BatchConcurrency:   4,
	}
}

// Deps are the collaborators of the service.  Cache and Metrics may be nil.
type Deps struct {
	Hooks   meta.Hooks
	Cache   Cache
	Metrics *prometheus.AppMetrics
	Logger  logging.Logger
}

type serviceImpl struct {
	cfg     Config
	hooks   meta.Hooks
	cache   Cache
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	now     func() time.Time
}

// NewService validates cfg and builds a Service.
func NewService(cfg Config, deps Deps) (Service, error) {
	if cfg.Aromaticity == "" {
		cfg.Aromaticity = string(aromaticity.ModeStrict)
	}
	if _, err := aromaticity.ParseMode(cfg.Aromaticity); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid annotation config")
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 1
	}
	return &serviceImpl{
		cfg:     cfg,
		hooks:   deps.Hooks,
		cache:   deps.Cache,
		metrics: deps.Metrics,
		logger:  logging.OrNop(deps.Logger),
		now:     time.Now,
	}, nil
}

func (s *serviceImpl) Parse(ctx context.Context, in *mtypes.MolfileInput) (*mtypes.AnnotationDTO, error) {
	if err := s.validateSingle(in); err != nil {
		return nil, err
	}
	res, err := s.parse(in.Molfile, s.readerOptions(in.Reader))
	if err != nil {
		return nil, err
	}
	dto := s.baseDTO(res, digest(in.Molfile, s.readerOptions(in.Reader), annotateOptions{}))
	return dto, nil
}

func (s *serviceImpl) Annotate(ctx context.Context, in *mtypes.MolfileInput) (*mtypes.AnnotationDTO, error) {
	if err := s.validateSingle(in); err != nil {
		return nil, err
	}
	ropts := s.readerOptions(in.Reader)
	aopts := s.annotateOptions(in.Annotate)
	return s.annotateCached(ctx, in.Molfile, ropts, aopts)
}

func (s *serviceImpl) AnnotateAll(ctx context.Context, in *mtypes.MolfileInput) ([]mtypes.AnnotationDTO, error) {
	if in == nil {
		return nil, errors.New(errors.ErrCodeValidation, "input required")
	}
	if err := in.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid input")
	}
	ropts := s.readerOptions(in.Reader)
	aopts := s.annotateOptions(in.Annotate)

	records := []string{in.Molfile}
	if in.Format == mtypes.FormatSDF {
		records = molfile.SplitSDF(in.Molfile)
		if len(records) == 0 {
			return nil, errors.New(errors.ErrCodeValidation, "sd file has no records")
		}
	}
	out, err := runBatch(ctx, records, s.cfg.BatchConcurrency, func(ctx context.Context, rec string) (mtypes.AnnotationDTO, error) {
		dto, err := s.annotateCached(ctx, rec, ropts, aopts)
		if err != nil {
			return mtypes.AnnotationDTO{}, err
		}
		return *dto, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("molfiles annotated", logging.Int("records", len(out)), logging.String("format", string(in.Format)))
	return out, nil
}

func (s *serviceImpl) Equivalence(ctx context.Context, req *mtypes.EquivalenceRequest) (*mtypes.EquivalenceDTO, error) {
	if req == nil {
		return nil, errors.New(errors.ErrCodeValidation, "request required")
	}
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid equivalence request")
	}
	start := s.now()

	a, err := s.parse(req.A.Molfile, s.readerOptions(req.A.Reader))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "molfile a")
	}
	b, err := s.parse(req.B.Molfile, s.readerOptions(req.B.Reader))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "molfile b")
	}
	ma, mb := meta.New(a.Molecule, s.hooks), meta.New(b.Molecule, s.hooks)

	timeout := s.cfg.EquivalenceTimeout
	if req.TimeoutMS > 0 {
		timeout = time.Duration(req.TimeoutMS) * time.Millisecond
	}
	if dl, ok := ctx.Deadline(); ok {
		left := dl.Sub(s.now())
		if left <= 0 {
			return nil, errors.New(errors.ErrCodeTimeout, "deadline exceeded before equivalence check")
		}
		if timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	eq, err := ma.EquivalentTo(mb, timeout)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.metrics.RecordEquivalence(prometheus.StatusError, elapsed)
		s.logger.Warn("equivalence check failed", logging.Err(err))
		return nil, err
	}
	outcome := "different"
	if eq {
		outcome = "equivalent"
	}
	s.metrics.RecordEquivalence(outcome, elapsed)

	dto := &mtypes.EquivalenceDTO{Equivalent: eq, DurationMS: elapsed.Milliseconds()}
	if s.hooks.Hash != nil {
		dto.HashA, _ = ma.SkeletonHash()
		dto.HashB, _ = mb.SkeletonHash()
	}
	return dto, nil
}

func (s *serviceImpl) validateSingle(in *mtypes.MolfileInput) error {
	if in == nil {
		return errors.New(errors.ErrCodeValidation, "input required")
	}
	if err := in.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid input")
	}
	if in.Format == mtypes.FormatSDF {
		return errors.New(errors.ErrCodeValidation, "sd files are accepted by batch annotation only")
	}
	return nil
}

func (s *serviceImpl) annotateCached(ctx context.Context, text string, ropts molfile.Options, aopts annotateOptions) (*mtypes.AnnotationDTO, error) {
	key := digest(text, ropts, aopts)
	if s.cache == nil {
		return s.annotate(text, ropts, aopts, key)
	}
	var (
		dto    mtypes.AnnotationDTO
		loaded bool
	)
	err := s.cache.GetOrSet(ctx, "ann:"+key, &dto, s.cfg.CacheTTL, func(context.Context) (interface{}, error) {
		loaded = true
		return s.annotate(text, ropts, aopts, key)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordCache(cacheName, !loaded)
	s.stamp(&dto)
	return &dto, nil
}

// stamp gives a result its own identity; cached entries carry the identity of
// the request that filled them.
func (s *serviceImpl) stamp(dto *mtypes.AnnotationDTO) {
	dto.ID = common.NewID()
	dto.CreatedAt = common.Timestamp(s.now().UTC())
}

func (s *serviceImpl) parse(text string, opts molfile.Options) (*molfile.Result, error) {
	start := s.now()
	res, err := molfile.Parse(text, opts)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.metrics.RecordParse("", 0, elapsed, err)
		s.logger.Debug("molfile rejected", logging.Err(err))
		return nil, err
	}
	s.metrics.RecordParse(res.Version, res.Molecule.NumAtoms(), elapsed, nil)

	kinds := make([]string, 0, res.Compliance.Len())
	for _, n := range res.Compliance.Notes() {
		kinds = append(kinds, n.Kind.String())
	}
	s.metrics.RecordCompliance(res.Compliance.Level().String(), res.Compliance.Invalid(), kinds)
	return res, nil
}

func (s *serviceImpl) annotate(text string, ropts molfile.Options, aopts annotateOptions, key string) (*mtypes.AnnotationDTO, error) {
	res, err := s.parse(text, ropts)
	if err != nil {
		return nil, err
	}
	dto := s.baseDTO(res, key)
	m := meta.New(res.Molecule, s.hooks)

	flags := m.Aromaticity(aopts.mode)
	dto.AromaticityMode = string(aopts.mode)
	dto.AromaticAtoms = nonNil(flags.AromaticAtoms())
	dto.AromaticBonds = nonNil(flags.AromaticBonds())

	counts := map[string]int{}
	if aopts.stereo {
		r := m.Stereo(nil)
		dto.Stereo = map[string][]int{}
		for _, c := range append(append([]stereo.Category{}, stereo.AtomCategories...), stereo.DoubleBondSide) {
			if idx := r.Candidates(c); len(idx) > 0 {
				dto.Stereo[c.String()] = idx
				counts[c.String()] = len(idx)
			}
		}
	}
	if aopts.hashes {
		if dto.SkeletonHash, err = m.SkeletonHash(); err != nil {
			return nil, err
		}
		if dto.HeavyHash, err = m.HeavyHash(); err != nil {
			return nil, err
		}
	}
	s.metrics.RecordAnnotation(dto.AromaticityMode, len(flags.Rings), counts)
	return dto, nil
}

func (s *serviceImpl) baseDTO(res *molfile.Result, key string) *mtypes.AnnotationDTO {
	dto := &mtypes.AnnotationDTO{
		Digest:         key,
		Name:           res.Name,
		Comment:        res.Comment,
		Version:        res.Version,
		Atoms:          res.Molecule.NumAtoms(),
		Bonds:          res.Molecule.NumBonds(),
		Elements:       meta.New(res.Molecule, meta.Hooks{}).UniqueElements(),
		Compliance:     complianceDTO(res.Compliance),
		ResonanceBonds: res.ResonanceBonds,
	}
	s.stamp(dto)
	return dto
}

// annotateOptions is the resolved form of AnnotateOptionsDTO.
type annotateOptions struct {
	mode   aromaticity.Mode
	stereo bool
	hashes bool
}

func (s *serviceImpl) readerOptions(dto mtypes.ReaderOptionsDTO) molfile.Options {
	opts := molfile.Options{
		Relaxed:     s.cfg.Relaxed || dto.Relaxed,
		Extended:    s.cfg.Extended || dto.Extended,
		ParseHeader: s.cfg.ParseHeader,
		Rescale:     s.cfg.Rescale || dto.Rescale,
		Logger:      s.logger,
	}
	if dto.ParseHeader != nil {
		opts.ParseHeader = *dto.ParseHeader
	}
	return opts
}

func (s *serviceImpl) annotateOptions(dto mtypes.AnnotateOptionsDTO) annotateOptions {
	mode := aromaticity.Mode(s.cfg.Aromaticity)
	if dto.Aromaticity != "" {
		mode = aromaticity.Mode(dto.Aromaticity)
	}
	return annotateOptions{
		mode:   mode,
		stereo: s.cfg.ComputeStereo || dto.Stereo,
		hashes: s.cfg.ComputeHashes || dto.Hashes,
	}
}

// digest keys a molfile and the options that shape its annotation.
func digest(text string, ropts molfile.Options, aopts annotateOptions) string {
	h := sha256.New()
	fmt.Fprintf(h, "r%t%t%t%t|a%s%t%t|", ropts.Relaxed, ropts.Extended, ropts.ParseHeader, ropts.Rescale,
		aopts.mode, aopts.stereo, aopts.hashes)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func nonNil(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

//Personal.AI order the ending
