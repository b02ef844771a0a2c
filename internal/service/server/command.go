package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/oshokin/work-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/work-alarm/internal/config"
	"github.com/oshokin/work-alarm/internal/logger"
	"github.com/oshokin/work-alarm/internal/service/common"
	"github.com/oshokin/work-alarm/internal/version"
)

// Options controls the work-alarm-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StorePath overrides the configured settings store location.
	StorePath string
	// AllowConcurrent skips the single instance check.
	AllowConcurrent bool
}

var (
	// ErrNoServerAddress indicates missing server configuration.
	ErrNoServerAddress = errors.New("no server address configured")
	// ErrAlreadyRunning is returned when another server process is found.
	ErrAlreadyRunning = errors.New("another work-alarm-server is already running")
)

// Run starts the alarm daemon and blocks until context is canceled or the
// gRPC server stops.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "work-alarm-server")

	// Load configuration first to get server settings.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	} else {
		logger.Warnf(ctx, "Unknown log level %q, using %s", cfg.LogLevel, level)
	}

	if opts.StorePath != "" {
		cfg.Store.Path = opts.StorePath
	}

	if !opts.AllowConcurrent {
		if err := ensureSingleInstance(); err != nil {
			return err
		}
	}

	// Determine listen address: CLI argument overrides config port extraction.
	listenAddress, err := resolveListenAddress(cfg.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	d, err := newDaemon(ctx, cfg)
	if err != nil {
		return err
	}

	defer d.close(ctx)

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	healthServer := health.NewServer()

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(api.UnaryActorInterceptor()))
	api.RegisterAlarmServiceServer(grpcServer, api.NewServer(d.engine))
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// The alarm service is healthy while triggers are armed.
	d.engine.OnStateChange(func(armed bool) {
		healthServer.SetServingStatus(api.ServiceName, servingStatus(armed))
	})

	d.start(ctx)

	logger.InfoKV(ctx, "Alarm server listening",
		"version", version.Short(),
		"listen_address", listenAddress,
		"store", cfg.Store.Backend,
		"store_path", cfg.Store.Path)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

func ensureSingleInstance() error {
	pids, err := common.FindProcesses(common.ExecutableName(common.ServerExecutable))
	if err != nil {
		return fmt.Errorf("check running servers: %w", err)
	}

	if len(pids) > 0 {
		return fmt.Errorf("%w: pid %v", ErrAlreadyRunning, pids)
	}

	return nil
}

func servingStatus(armed bool) healthpb.HealthCheckResponse_ServingStatus {
	if armed {
		return healthpb.HealthCheckResponse_SERVING
	}

	return healthpb.HealthCheckResponse_NOT_SERVING
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise configAddr is used as is.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}
