package annotation

import (
	"github.com/turtacn/keyip-molkit/internal/domain/compliance"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

func complianceDTO(r *compliance.Report) mtypes.ComplianceDTO {
	out := mtypes.ComplianceDTO{Level: r.Level().String(), Invalid: r.Invalid()}
	for _, n := range r.Notes() {
		note := mtypes.NoteDTO{
			Kind:    n.Kind.String(),
			Level:   n.Kind.Level().String(),
			Invalid: n.Kind.Invalid(),
			Atoms:   n.Atoms,
			Bonds:   n.Bonds,
		}
		if n.Source != nil {
			note.Source = &mtypes.SpanDTO{Row: n.Source.Row, Col: n.Source.Col, Len: n.Source.Len}
		}
		out.Notes = append(out.Notes, note)
	}
	return out
}

//Personal.AI order the ending
