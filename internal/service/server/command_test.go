package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	api "github.com/oshokin/work-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/work-alarm/internal/config"
	"github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/service/common"
)

// TestResolveListenAddress covers overrides, config addresses and bad input.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("127.0.0.1:50061", ":9090")
	require.NoError(t, err)
	require.Equal(t, ":9090", addr)

	addr, err = resolveListenAddress("127.0.0.1:50061", "")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:50061", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoServerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}

// TestServingStatus maps the armed flag to health statuses.
func TestServingStatus(t *testing.T) {
	t.Parallel()

	require.Equal(t, healthpb.HealthCheckResponse_SERVING, servingStatus(true))
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, servingStatus(false))
}

// testConfig writes a daemon configuration using the JSON store and the log presenter.
func testConfig(t *testing.T, addr string) string {
	t.Helper()

	cfg := config.Default()
	cfg.ServerAddress = addr
	cfg.Store.Path = filepath.Join(t.TempDir(), "settings.json")
	cfg.Notifications.Presenter = config.PresenterLog
	cfg.Audio.Enabled = false

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, config.Save(path, cfg))

	return path
}

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	var lc net.ListenConfig

	l, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// TestNewDaemon_RestoresEnabledSettings verifies a daemon re-arms persisted settings on start.
func TestNewDaemon_RestoresEnabledSettings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cfg, err := config.Load(testConfig(t, "127.0.0.1:0"))
	require.NoError(t, err)

	first, err := newDaemon(ctx, cfg)
	require.NoError(t, err)

	first.start(ctx)
	require.False(t, first.engine.Armed())

	_, err = first.engine.Enable(ctx, &alarm.Actor{Hostname: "desk", Username: "tester"})
	require.NoError(t, err)
	first.close(ctx)
	require.False(t, first.scheduler.Armed())

	second, err := newDaemon(ctx, cfg)
	require.NoError(t, err)

	second.start(ctx)
	defer second.close(ctx)

	require.True(t, second.engine.Settings().Enabled)
	require.True(t, second.engine.Armed())
	require.True(t, second.waker.Registered())
	require.Eventually(t, func() bool {
		return !second.engine.NextWake().IsZero()
	}, 5*time.Second, 10*time.Millisecond)

	_, err = second.engine.Disable(ctx, &alarm.Actor{Hostname: "desk", Username: "tester"})
	require.NoError(t, err)
	require.False(t, second.waker.Registered())
	require.True(t, second.engine.NextWake().IsZero())
}

// TestNewDaemon_MutedAudio verifies a config with audio off yields no beeper.
func TestNewDaemon_MutedAudio(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(testConfig(t, "127.0.0.1:0"))
	require.NoError(t, err)
	require.False(t, cfg.Audio.Enabled)

	d, err := newDaemon(context.Background(), cfg)
	require.NoError(t, err)

	defer d.close(context.Background())

	require.Nil(t, d.beeper)
}

// TestRun_ServesAlarmService starts the daemon and drives it over gRPC.
func TestRun_ServesAlarmService(t *testing.T) {
	t.Parallel()

	addr := reservePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	configPath := testConfig(t, addr)
	errs := make(chan error, 1)

	go func() {
		errs <- Run(ctx, &Options{ConfigPath: configPath, AllowConcurrent: true})
	}()

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
	}()

	healthClient := healthpb.NewHealthClient(conn)
	check := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := healthClient.Check(context.Background(), &healthpb.HealthCheckRequest{Service: api.ServiceName})
		if err != nil {
			return healthpb.HealthCheckResponse_UNKNOWN
		}

		return resp.GetStatus()
	}

	require.Eventually(t, func() bool {
		return check() == healthpb.HealthCheckResponse_NOT_SERVING
	}, 5*time.Second, 20*time.Millisecond)

	client, err := common.Dial(context.Background(), addr,
		common.WithActor(&alarm.Actor{Hostname: "desk", Username: "tester"}))
	require.NoError(t, err)

	defer func() {
		_ = client.Close()
	}()

	st, err := client.Enable(context.Background())
	require.NoError(t, err)
	require.True(t, st.Settings.Enabled)
	require.True(t, st.Armed)
	require.Equal(t, "tester@desk", st.Settings.UpdatedBy.String())
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, check())

	st, err = client.Disable(context.Background())
	require.NoError(t, err)
	require.False(t, st.Armed)
	require.Empty(t, st.Pending)

	cancel()
	require.NoError(t, <-errs)
}
