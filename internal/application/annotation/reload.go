package annotation

import (
	"context"
	"sync/atomic"

	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

// Reloadable is a Service whose configuration can be replaced while requests
// are in flight.  Each call runs entirely against the service that was
// current when it started.
type Reloadable struct {
	deps    Deps
	current atomic.Pointer[Service]
}

// NewReloadable builds the initial service from cfg.
func NewReloadable(cfg Config, deps Deps) (*Reloadable, error) {
	r := &Reloadable{deps: deps}
	if err := r.Reload(cfg); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload swaps in a service built from cfg.  An invalid cfg leaves the
// current service in place.
func (r *Reloadable) Reload(cfg Config) error {
	svc, err := NewService(cfg, r.deps)
	if err != nil {
		return err
	}
	r.current.Store(&svc)
	return nil
}

func (r *Reloadable) svc() Service { return *r.current.Load() }

func (r *Reloadable) Parse(ctx context.Context, in *mtypes.MolfileInput) (*mtypes.AnnotationDTO, error) {
	return r.svc().Parse(ctx, in)
}

func (r *Reloadable) Annotate(ctx context.Context, in *mtypes.MolfileInput) (*mtypes.AnnotationDTO, error) {
	return r.svc().Annotate(ctx, in)
}

func (r *Reloadable) AnnotateAll(ctx context.Context, in *mtypes.MolfileInput) ([]mtypes.AnnotationDTO, error) {
	return r.svc().AnnotateAll(ctx, in)
}

func (r *Reloadable) Equivalence(ctx context.Context, req *mtypes.EquivalenceRequest) (*mtypes.EquivalenceDTO, error) {
	return r.svc().Equivalence(ctx, req)
}

var _ Service = (*Reloadable)(nil)

//Personal.AI order the ending
