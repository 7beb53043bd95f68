package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/keyip-molkit/internal/application/ingest"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

// JobSubmitter queues a structure for asynchronous annotation.
type JobSubmitter interface {
	Submit(ctx context.Context, in *mtypes.MolfileInput) (*ingest.SubmitResult, error)
}

// JobHandler accepts ingest jobs.  Results are published on the annotated
// topic, not returned over HTTP.
type JobHandler struct {
	submitter JobSubmitter
}

func NewJobHandler(s JobSubmitter) *JobHandler {
	return &JobHandler{submitter: s}
}

func (h *JobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.Submit)
}

// Submit handles POST /jobs and answers 202 with the job reference.
func (h *JobHandler) Submit(c *gin.Context) {
	var in mtypes.MolfileInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.submitter.Submit(c.Request.Context(), &in)
	if err != nil {
		writeAppError(c, err)
		return
	}
	respond(c, http.StatusAccepted, res)
}

//Personal.AI order the ending
