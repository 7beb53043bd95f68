package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/keyip-molkit/internal/application/annotation"
	"github.com/turtacn/keyip-molkit/internal/infrastructure/monitoring/logging"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

// MolfileHandler serves the synchronous parse, annotate and equivalence
// endpoints.
type MolfileHandler struct {
	svc    annotation.Service
	logger logging.Logger
}

func NewMolfileHandler(svc annotation.Service, logger logging.Logger) *MolfileHandler {
	return &MolfileHandler{svc: svc, logger: logging.OrNop(logger).Named("molfiles")}
}

// RegisterRoutes mounts the handler under rg (normally /api/v1).
func (h *MolfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/molfiles")
	g.POST("/parse", h.Parse)
	g.POST("/annotate", h.Annotate)
	g.POST("/equivalence", h.Equivalence)
}

// Parse handles POST /molfiles/parse.
func (h *MolfileHandler) Parse(c *gin.Context) {
	var in mtypes.MolfileInput
	if !bindJSON(c, &in) {
		return
	}
	dto, err := h.svc.Parse(c.Request.Context(), &in)
	if err != nil {
		writeAppError(c, err)
		return
	}
	respond(c, http.StatusOK, dto)
}

// Annotate handles POST /molfiles/annotate.  A single molfile yields one
// annotation object; an SD file yields a list in record order.
func (h *MolfileHandler) Annotate(c *gin.Context) {
	var in mtypes.MolfileInput
	if !bindJSON(c, &in) {
		return
	}
	if in.Format == mtypes.FormatSDF {
		anns, err := h.svc.AnnotateAll(c.Request.Context(), &in)
		if err != nil {
			writeAppError(c, err)
			return
		}
		respond(c, http.StatusOK, anns)
		return
	}
	dto, err := h.svc.Annotate(c.Request.Context(), &in)
	if err != nil {
		writeAppError(c, err)
		return
	}
	respond(c, http.StatusOK, dto)
}

// Equivalence handles POST /molfiles/equivalence.
func (h *MolfileHandler) Equivalence(c *gin.Context) {
	var req mtypes.EquivalenceRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.svc.Equivalence(c.Request.Context(), &req)
	if err != nil {
		writeAppError(c, err)
		return
	}
	h.logger.Debug("equivalence checked",
		logging.Bool("equivalent", out.Equivalent),
		logging.Int64("duration_ms", out.DurationMS))
	respond(c, http.StatusOK, out)
}

//Personal.AI order the ending
