//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/work-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/work-alarm/internal/config"
	"github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/record"
	"github.com/oshokin/work-alarm/internal/version"
)

// Client wraps the gRPC AlarmService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the alarm server.
	conn *grpc.ClientConn
	// api is the AlarmService client.
	api api.AlarmServiceClient
	// actor is sent with every call for the audit fields.
	actor *alarm.Actor

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sets the actor reported to the server.
func WithActor(actor *alarm.Actor) Option {
	return func(c *Client) {
		c.actor = actor.Clone()
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errRuleRequired is returned when UpdateRule is called without a rule.
	errRuleRequired = errors.New("rule must be provided")
)

// Dial establishes a gRPC connection to the alarm server.
// The connection uses insecure transport credentials; the daemon listens on
// loopback by default.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent(version.UserAgent()))
	if err != nil {
		return nil, fmt.Errorf("dial alarm server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewAlarmServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Status retrieves the current settings and armed state.
func (c *Client) Status(ctx context.Context) (*api.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetSettings(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return api.DecodeStatus(resp)
}

// Enable turns alarms on.
func (c *Client) Enable(ctx context.Context) (*api.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Enable(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("enable alarms: %w", err)
	}

	return api.DecodeStatus(resp)
}

// Disable turns alarms off.
func (c *Client) Disable(ctx context.Context) (*api.Status, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Disable(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("disable alarms: %w", err)
	}

	return api.DecodeStatus(resp)
}

// UpdateRule replaces the recurrence rule.
func (c *Client) UpdateRule(ctx context.Context, rule *alarm.Rule) (*api.Status, error) {
	if rule == nil {
		return nil, errRuleRequired
	}

	request, err := structpb.NewStruct(record.RuleFields(rule))
	if err != nil {
		return nil, fmt.Errorf("encode rule: %w", err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.UpdateRule(callCtx, request)
	if err != nil {
		return nil, fmt.Errorf("update rule: %w", err)
	}

	return api.DecodeStatus(resp)
}

// Preview lists the alarm instants of the next days.
func (c *Client) Preview(ctx context.Context, days int) ([]time.Time, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	//nolint:gosec // days is bounded by the server.
	resp, err := c.api.Preview(callCtx, wrapperspb.Int32(int32(days)))
	if err != nil {
		return nil, fmt.Errorf("preview alarms: %w", err)
	}

	return api.ListToTimes(resp)
}

// CatchUp asks the daemon to present missed alarms.
func (c *Client) CatchUp(ctx context.Context, lookback time.Duration) ([]time.Time, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.CatchUp(callCtx, durationpb.New(lookback))
	if err != nil {
		return nil, fmt.Errorf("catch up: %w", err)
	}

	return api.ListToTimes(resp)
}

// callContext returns a context carrying the actor, with the client's call
// timeout if configured, otherwise a cancellable child context.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = api.AppendActor(ctx, c.actor)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
