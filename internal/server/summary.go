package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	consultationdomain "github.com/smallbiznis/consultinvoice/internal/consultation/domain"
)

type summaryRequest struct {
	Consultations []consultationdomain.Record `json:"consultations"`
}

type summaryResponse struct {
	Success bool                       `json:"success"`
	Summary consultationdomain.Summary `json:"summary"`
}

// Summarize totals the posted records. An empty body is an empty list; a
// body that does not parse is a server error.
func (s *Server) Summarize(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: %v", ErrInvalidBody, err))
		return
	}

	var req summaryRequest
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			AbortWithError(c, fmt.Errorf("%w: %v", ErrInvalidBody, err))
			return
		}
	}
	if req.Consultations == nil {
		req.Consultations = []consultationdomain.Record{}
	}

	summary, err := s.consultationSvc.Summarize(c.Request.Context(), consultationdomain.SummaryRequest{
		Consultations: req.Consultations,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaryResponse{Success: true, Summary: summary})
}
