package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sbasestarter/rtm-harness/config"
	"github.com/sbasestarter/rtm-harness/internal/controller"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sbasestarter/rtm-harness/internal/fixture"
	"github.com/sbasestarter/rtm-harness/internal/impls"
	"github.com/sbasestarter/rtm-harness/internal/metrics"
	"github.com/sbasestarter/rtm-harness/internal/model"
	"github.com/sbasestarter/rtm-harness/internal/transport"
	"github.com/sbasestarter/rtm-harness/internal/user"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libservicetoolset/servicetoolset"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

const healthService = "rtm.Engine"

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the engine behind a websocket endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(file)
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			return serve(cmd.Context(), cfg)
		},
	}
}

func newEngine(cfg *config.Config, m *metrics.Metrics) (*controller.Controller, error) {
	logger := cfg.Logger

	var (
		mdl defs.Model
		mdi defs.MDI
		err error
	)

	switch cfg.ModelType {
	case config.ModelTypeMongo:
		mdl, err = model.NewMongoModel(&cfg.MongoConfig, logger)
		if err != nil {
			return nil, errors.Wrap(err, "mongo model")
		}
	default:
		mdl = model.NewMemModel()
	}

	switch cfg.MDIType {
	case config.MDITypeRabbitMQ:
		mdi, err = impls.NewRabbitMQMDI(cfg.RabbitMQURL, logger)
		if err != nil {
			return nil, errors.Wrap(err, "rabbitmq mdi")
		}
	default:
		mdi = impls.NewMemMDI(logger)
	}

	var seed *fixture.Fixture

	if cfg.FixtureFile != "" {
		seed, err = fixture.Load(cfg.FixtureFile)
		if err != nil {
			return nil, errors.Wrap(err, "fixture")
		}
	}

	c := controller.NewController(controller.Params{
		MaxCache:    cfg.Engine.MaxRequestCache,
		MDI:         mdi,
		Model:       mdl,
		TokenCenter: user.NewTokenCenter(cfg.AppID, cfg.AppCertificate, time.Duration(cfg.TokenExpireSeconds)*time.Second, nil),
		Options: impls.Options{
			LockRetryTimeout:     time.Duration(cfg.Engine.LockRetryTimeoutSeconds) * time.Second,
			TokenWillExpireAhead: time.Duration(cfg.Engine.TokenWillExpireAheadSeconds) * time.Second,
			MaxMessageSize:       cfg.Engine.MaxMessageSize,
		},
		Fixture: seed,
		Metrics: m,
	}, logger)

	if err = c.LoadErr(); err != nil {
		c.Stop()

		return nil, errors.Wrap(err, "load engine")
	}

	return c, nil
}

func startHealthServer(cfg *config.Config, logger l.Wrapper) (*health.Server, error) {
	tlsConfig, err := servicetoolset.GRPCTlsConfigMap(cfg.GRPCTLSConfig)
	if err != nil {
		return nil, err
	}

	grpcCfg := &servicetoolset.GRPCServerConfig{
		Address:           cfg.GRPCListen,
		TLSConfig:         tlsConfig,
		KeepAliveDuration: time.Minute * 10,
	}

	s, err := servicetoolset.NewGRPCServer(nil, grpcCfg,
		[]grpc.ServerOption{grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             time.Second * 10,
			PermitWithoutStream: true,
		})}, nil, logger)
	if err != nil {
		return nil, err
	}

	hs := health.NewServer()

	err = s.Start(func(s *grpc.Server) error {
		healthpb.RegisterHealthServer(s, hs)

		return nil
	})
	if err != nil {
		return nil, err
	}

	hs.SetServingStatus(healthService, healthpb.HealthCheckResponse_SERVING)

	logger.Info("grpc health listen on: ", cfg.GRPCListen)

	return hs, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Logger

	m := metrics.New("rtm")

	c, err := newEngine(cfg, m)
	if err != nil {
		return err
	}

	defer func() {
		c.Stop()
		<-c.Done()
	}()

	var hs *health.Server

	if cfg.GRPCListen != "" {
		if hs, err = startHealthServer(cfg, logger); err != nil {
			return errors.Wrap(err, "grpc health")
		}

		defer hs.Shutdown()
	}

	wsServer := transport.NewServer(c, m, logger)

	mux := http.NewServeMux()
	mux.Handle(cfg.WebsocketPath, wsServer)
	mux.Handle(cfg.MetricsPath, m.Handler())

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info("websocket listen on: ", cfg.Listen, cfg.WebsocketPath)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	eg.Go(func() error {
		select {
		case <-ctx.Done():
		case <-c.Done():
			logger.Error("EngineStopped")
		}

		logger.Info("ShuttingDown")

		wsServer.Close()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
