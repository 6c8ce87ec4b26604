package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	consultationdomain "github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	obstracing "github.com/smallbiznis/consultinvoice/internal/observability/tracing"
)

type listConsultationsResponse struct {
	Success bool `json:"success"`
	consultationdomain.ListResponse
}

func (s *Server) ListConsultations(c *gin.Context) {
	period, err := parsePeriod(c.Query("year"), c.Query("month"), s.clock.Now(), s.cfg.Location())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Set(obstracing.PeriodKey, period.Key())

	resp, err := s.consultationSvc.List(c.Request.Context(), consultationdomain.ListRequest{Period: period})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, listConsultationsResponse{Success: true, ListResponse: resp})
}
