package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/uber-go/tally/v4"
	"github.com/uber-go/tally/v4/prometheus"
	"go.uber.org/zap"

	imagehost "github.com/bitmark-inc/image-host"
	"github.com/bitmark-inc/image-host/assetHost"
	"github.com/bitmark-inc/image-host/externals/aws/ssm"
	"github.com/bitmark-inc/image-host/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := imagehost.LoadConfig()
	if err != nil {
		panic(fmt.Errorf("fail to load config with error: %s", err.Error()))
	}

	if err := log.Initialize(cfg.Log.Level, cfg.Debug,
		zap.String("service", "image-api"), zap.String("environment", cfg.Environment)); err != nil {
		panic(fmt.Errorf("fail to initialize logger with error: %s", err.Error()))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Environment,
	}); err != nil {
		log.Panic("Sentry initialization failed", zap.Error(err))
	}
	defer sentry.Flush(2 * time.Second)

	if cfg.Cloudflare.APITokenParameter != "" {
		systemManager, err := ssm.New(ctx)
		if err != nil {
			log.Panic("fail to initiate aws system manager", zap.Error(err), log.SourceSSM)
		}
		if err := cfg.ResolveSecrets(ctx, systemManager); err != nil {
			log.Panic("fail to resolve secrets", zap.Error(err), log.SourceSSM)
		}
	}

	store, err := imagehost.OpenStore(ctx, cfg.Store)
	if err != nil {
		log.Panic("fail to initiate image store", zap.Error(err), zap.String("driver", cfg.Store.Driver))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("fail to close image store", zap.Error(err))
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		log.Panic("fail to migrate image store", zap.Error(err))
	}

	host, err := assetHost.NewCloudflareHost(
		cfg.Cloudflare.AccountHash,
		cfg.Cloudflare.AccountID,
		cfg.Cloudflare.APIToken,
		cfg.Debug)
	if err != nil {
		log.Panic("fail to initiate cloudflare client", zap.Error(err), log.SourceCloudflare)
	}

	reporter := prometheus.NewReporter(prometheus.Options{})
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:         cfg.Metrics.Prefix,
		Tags:           map[string]string{"environment": cfg.Environment},
		CachedReporter: reporter,
		Separator:      prometheus.DefaultSeparator,
	}, time.Second)
	defer closer.Close()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	imageEngine := imagehost.NewImageEngine(store, host, scope)

	s := NewImageAPIServer(imageEngine, reporter.HTTPHandler(), cfg.Server.RequestTimeout)
	s.SetupRoute()
	if err := s.Run(ctx, cfg.Server.Port); err != nil {
		log.Panic("server interrupted", zap.Error(err))
	}

	log.Info("image api server terminated")
}
