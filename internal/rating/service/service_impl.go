package service

import (
	"github.com/shopspring/decimal"
	ratingdomain "github.com/smallbiznis/consultinvoice/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log    *zap.Logger
	source ratingdomain.TableSource
}

type ServiceParam struct {
	fx.In

	Log    *zap.Logger
	Source ratingdomain.TableSource `optional:"true"`
}

func NewService(p ServiceParam) ratingdomain.Service {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		log:    log.Named("rating.service"),
		source: p.Source,
	}
}

// NewStatic builds a resolver over a fixed table.
func NewStatic(table ratingdomain.Table) ratingdomain.Service {
	return &Service{log: zap.NewNop(), source: staticSource{table: table}}
}

func (s *Service) Table() ratingdomain.Table {
	if s.source == nil {
		return ratingdomain.DefaultTable()
	}
	return s.source.Get().Clone()
}

func (s *Service) Resolve(serviceType string) decimal.Decimal {
	if s.source == nil {
		return ratingdomain.Resolve(ratingdomain.DefaultTable(), serviceType)
	}
	return ratingdomain.Resolve(s.source.Get(), serviceType)
}

type staticSource struct {
	table ratingdomain.Table
}

func (s staticSource) Get() ratingdomain.Table {
	return s.table
}
