package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	approvaldomain "github.com/smallbiznis/consultinvoice/internal/approval/domain"
	"github.com/smallbiznis/consultinvoice/internal/approval/repository"
	approvalservice "github.com/smallbiznis/consultinvoice/internal/approval/service"
	"github.com/smallbiznis/consultinvoice/internal/clock"
	"github.com/smallbiznis/consultinvoice/internal/config"
	consultationdomain "github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	"github.com/smallbiznis/consultinvoice/internal/observability"
	obscontext "github.com/smallbiznis/consultinvoice/internal/observability/context"
	obslogger "github.com/smallbiznis/consultinvoice/internal/observability/logger"
	"github.com/smallbiznis/consultinvoice/internal/review"
	"github.com/smallbiznis/consultinvoice/pkg/db"
	"go.uber.org/zap"
)

type options struct {
	year      int
	month     int
	apiURL    string
	storePath string
	redisAddr string
}

// app is the per-invocation wiring shared by every command.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	session *review.Session
	out     io.Writer
	closers []func() error
}

func newApp(ctx context.Context, opts options, out io.Writer) (context.Context, *app, error) {
	cfg := config.Load()

	logCfg := observability.LoadConfig(cfg).Logger()
	logCfg.ServiceName = "consultinvoice-reviewer"
	logCfg.Format = "console"
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.IncludeCaller = logCfg.Debug
	log, err := obslogger.Build(logCfg)
	if err != nil {
		return ctx, nil, err
	}

	a := &app{cfg: cfg, log: log, out: out}
	a.closers = append(a.closers, func() error {
		_ = log.Sync()
		return nil
	})

	store, err := a.openStore(opts)
	if err != nil {
		a.close()
		return ctx, nil, err
	}

	period, err := resolvePeriod(opts, clock.NewSystem().Now(), cfg.Location())
	if err != nil {
		a.close()
		return ctx, nil, err
	}

	apiURL := strings.TrimSpace(opts.apiURL)
	if apiURL == "" {
		apiURL = cfg.Reviewer.APIURL
	}

	ctx, _ = obscontext.EnsureCorrelationID(ctx)
	a.session = review.NewSession(review.NewClient(apiURL), store, cfg.Location(), log)
	if err := a.session.Load(ctx, period); err != nil {
		a.close()
		return ctx, nil, err
	}
	return ctx, a, nil
}

func (a *app) openStore(opts options) (approvaldomain.Store, error) {
	redisAddr := strings.TrimSpace(opts.redisAddr)
	if redisAddr == "" {
		redisAddr = a.cfg.Reviewer.RedisAddr
	}

	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: a.cfg.Reviewer.RedisPassword,
			DB:       a.cfg.Reviewer.RedisDB,
		})
		a.closers = append(a.closers, client.Close)
		a.log.Debug("approval store backed by redis", zap.String("addr", redisAddr))
		return approvalservice.New(repository.NewRedisKV(client, ""), a.log), nil
	}

	path := strings.TrimSpace(opts.storePath)
	if path == "" {
		path = a.cfg.Reviewer.StorePath
	}
	conn, err := db.Open(db.Config{Path: path}, a.log)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := conn.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	kv, err := repository.NewGormKV(conn)
	if err != nil {
		return nil, fmt.Errorf("prepare approval store: %w", err)
	}
	a.log.Debug("approval store backed by sqlite", zap.String("path", path))
	return approvalservice.New(kv, a.log), nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func resolvePeriod(opts options, now time.Time, loc *time.Location) (consultationdomain.Period, error) {
	period := consultationdomain.CurrentPeriod(now, loc)
	if opts.year != 0 {
		period.Year = opts.year
	}
	if opts.month != 0 {
		period.Month = time.Month(opts.month)
	}
	if err := period.Validate(); err != nil {
		return consultationdomain.Period{}, errors.New("--year must be 2000-9999 and --month 1-12")
	}
	return period, nil
}
