package client

import (
	"context"
	"net/http"

	"github.com/turtacn/keyip-molkit/pkg/errors"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

// MolfilesClient calls the /api/v1/molfiles resource.  Its operations are
// pure functions of the input and are retried on server errors.
type MolfilesClient struct {
	client *Client
}

func validateInput(in *mtypes.MolfileInput) error {
	if in == nil {
		return errors.New(errors.ErrCodeValidation, "input is required")
	}
	if err := in.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid input")
	}
	return nil
}

// Parse decodes a single molfile without derived annotations.
func (m *MolfilesClient) Parse(ctx context.Context, in *mtypes.MolfileInput) (*mtypes.AnnotationDTO, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var out mtypes.AnnotationDTO
	if err := m.client.do(ctx, http.MethodPost, "/api/v1/molfiles/parse", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// Annotate annotates a single molfile.  in.Format must not be sdf.
func (m *MolfilesClient) Annotate(ctx context.Context, in *mtypes.MolfileInput) (*mtypes.AnnotationDTO, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Format == mtypes.FormatSDF {
		return nil, errors.New(errors.ErrCodeValidation, "use AnnotateSDF for sdf input")
	}
	var out mtypes.AnnotationDTO
	if err := m.client.do(ctx, http.MethodPost, "/api/v1/molfiles/annotate", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnnotateSDF annotates every record of an SD file, in record order.
func (m *MolfilesClient) AnnotateSDF(ctx context.Context, in *mtypes.MolfileInput) ([]mtypes.AnnotationDTO, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	req := *in
	req.Format = mtypes.FormatSDF
	var out []mtypes.AnnotationDTO
	if err := m.client.do(ctx, http.MethodPost, "/api/v1/molfiles/annotate", &req, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// Equivalence compares the skeletons of two molfiles.
func (m *MolfilesClient) Equivalence(ctx context.Context, req *mtypes.EquivalenceRequest) (*mtypes.EquivalenceDTO, error) {
	if req == nil {
		return nil, errors.New(errors.ErrCodeValidation, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid request")
	}
	var out mtypes.EquivalenceDTO
	if err := m.client.do(ctx, http.MethodPost, "/api/v1/molfiles/equivalence", req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
