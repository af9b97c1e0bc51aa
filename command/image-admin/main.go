package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	imagehost "github.com/bitmark-inc/image-host"
	"github.com/bitmark-inc/image-host/assetHost"
	"github.com/bitmark-inc/image-host/externals/aws/ssm"
	"github.com/bitmark-inc/image-host/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newAdminCLI(openBackend, os.Stdout).rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// openBackend builds the image store and engine from the image host config
func openBackend(ctx context.Context) (*backend, error) {
	cfg, err := imagehost.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("fail to load config: %w", err)
	}

	if err := log.Initialize(cfg.Log.Level, cfg.Debug,
		zap.String("service", "image-admin"), zap.String("environment", cfg.Environment)); err != nil {
		return nil, fmt.Errorf("fail to initialize logger: %w", err)
	}

	if cfg.Cloudflare.APITokenParameter != "" {
		systemManager, err := ssm.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("fail to initiate aws system manager: %w", err)
		}
		if err := cfg.ResolveSecrets(ctx, systemManager); err != nil {
			return nil, err
		}
	}

	store, err := imagehost.OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("fail to initiate image store: %w", err)
	}

	host, err := assetHost.NewCloudflareHost(
		cfg.Cloudflare.AccountHash,
		cfg.Cloudflare.AccountID,
		cfg.Cloudflare.APIToken,
		cfg.Debug)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("fail to initiate cloudflare client: %w", err)
	}

	return &backend{
		store:  store,
		engine: imagehost.NewImageEngine(store, host, nil),
	}, nil
}
