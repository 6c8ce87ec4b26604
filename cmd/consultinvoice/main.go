package main

import (
	"github.com/smallbiznis/consultinvoice/internal/cache"
	"github.com/smallbiznis/consultinvoice/internal/clock"
	"github.com/smallbiznis/consultinvoice/internal/config"
	"github.com/smallbiznis/consultinvoice/internal/consultation"
	"github.com/smallbiznis/consultinvoice/internal/observability"
	"github.com/smallbiznis/consultinvoice/internal/providers"
	"github.com/smallbiznis/consultinvoice/internal/rating"
	"github.com/smallbiznis/consultinvoice/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		clock.Module,
		cache.Module,

		// Functional Domains
		rating.Module,
		providers.Module,
		consultation.Module,

		server.Module,
	)
	app.Run()
}
