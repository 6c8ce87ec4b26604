package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ratesResponse struct {
	Success     bool                       `json:"success"`
	Rates       map[string]decimal.Decimal `json:"rates"`
	DefaultRate decimal.Decimal            `json:"defaultRate"`
}

func (s *Server) ListRates(c *gin.Context) {
	table := s.ratingSvc.Table()
	c.JSON(http.StatusOK, ratesResponse{
		Success:     true,
		Rates:       table.Rates,
		DefaultRate: table.Default,
	})
}
