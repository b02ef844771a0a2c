package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/work-alarm/internal/config"
	"github.com/oshokin/work-alarm/internal/logger"
	"github.com/oshokin/work-alarm/internal/service/common"
)

// Options configures a CLI operation.
type Options struct {
	// ConfigPath to YAML settings file, defaults to the XDG location if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Out receives the rendered output; stdout when nil.
	Out io.Writer
	// Now overrides the wall clock of offline operations.
	Now func() time.Time
}

// session is one connected CLI invocation.
type session struct {
	// cfg is the loaded configuration.
	cfg *config.Config
	// address is the daemon address in use.
	address string
	// client talks to the daemon.
	client *common.Client
	// printer renders output.
	printer *printer
	// now returns the current time.
	now func() time.Time
}

func open(ctx context.Context, opts *Options) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	address := cfg.ServerAddress
	if opts.ServerAddress != "" {
		address = opts.ServerAddress
	}

	// Identify current user and hostname for the audit fields.
	actor, err := common.DetectActor()
	if err != nil {
		return nil, fmt.Errorf("detect actor: %w", err)
	}

	client, err := common.Dial(ctx, address, common.WithCallTimeout(cfg.Timeout), common.WithActor(actor))
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger.DebugKV(ctx, "Connecting to daemon", "server_address", address, "actor", actor.String())

	return &session{
		cfg:     cfg,
		address: address,
		client:  client,
		printer: newPrinter(out),
		now:     now,
	}, nil
}

func (s *session) Close() {
	_ = s.client.Close()
}

// unavailable reports whether err means the daemon could not be reached.
func unavailable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
