package alarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/record"
)

const (
	// FieldArmed reports whether triggers are armed.
	FieldArmed = "armed"
	// FieldPending lists the armed instants.
	FieldPending = "pending"
	// FieldNextWake is the next background catch-up run, omitted when none is registered.
	FieldNextWake = "next_wake"

	// DefaultPreviewDays is used when Preview is called with zero days.
	DefaultPreviewDays = 7
	// MaxPreviewDays bounds the Preview horizon.
	MaxPreviewDays = 31
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Settings() *domain.Settings
	Armed() bool
	Pending() []time.Time
	Enable(ctx context.Context, actor *domain.Actor) (*domain.Settings, error)
	Disable(ctx context.Context, actor *domain.Actor) (*domain.Settings, error)
	UpdateRule(ctx context.Context, actor *domain.Actor, rule *domain.Rule) (*domain.Settings, error)
	Preview(days int) []time.Time
	CatchUp(ctx context.Context, lookback time.Duration) []time.Time
	NextWake() time.Time
}

// Server implements the AlarmService gRPC API.
type Server struct {
	// service provides the business logic for alarm operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetSettings returns the current settings with the armed state.
func (s *Server) GetSettings(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.settingsResponse(s.service.Settings())
}

// Enable turns alarms on.
func (s *Server) Enable(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	settings, err := s.service.Enable(ctx, ActorFromContext(ctx))
	if err != nil {
		return nil, toStatusError(err, "unable to enable alarms")
	}

	return s.settingsResponse(settings)
}

// Disable turns alarms off.
func (s *Server) Disable(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	settings, err := s.service.Disable(ctx, ActorFromContext(ctx))
	if err != nil {
		return nil, toStatusError(err, "unable to disable alarms")
	}

	return s.settingsResponse(settings)
}

// UpdateRule replaces the recurrence rule.
func (s *Server) UpdateRule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "rule is required")
	}

	rule, err := record.ToRule(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	settings, err := s.service.UpdateRule(ctx, ActorFromContext(ctx), rule)
	if err != nil {
		return nil, toStatusError(err, "unable to update rule")
	}

	return s.settingsResponse(settings)
}

// Preview lists the instants of the current rule for the requested days.
func (s *Server) Preview(_ context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error) {
	days := int(req.GetValue())

	switch {
	case days == 0:
		days = DefaultPreviewDays
	case days < 0 || days > MaxPreviewDays:
		return nil, status.Errorf(codes.InvalidArgument, "days must be between 1 and %d", MaxPreviewDays)
	}

	return timesToList(s.service.Preview(days)), nil
}

// CatchUp presents alarms of the lookback window. A zero lookback takes the
// daemon's default; windows longer than domain.MaxLookback are rejected.
func (s *Server) CatchUp(ctx context.Context, req *durationpb.Duration) (*structpb.ListValue, error) {
	var lookback time.Duration

	if req != nil {
		if err := req.CheckValid(); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		lookback = req.AsDuration()
	}

	if lookback < 0 || lookback > domain.MaxLookback {
		return nil, status.Errorf(codes.InvalidArgument, "lookback must be between 0 and %s", domain.MaxLookback)
	}

	return timesToList(s.service.CatchUp(ctx, lookback)), nil
}

func (s *Server) settingsResponse(settings *domain.Settings) (*structpb.Struct, error) {
	st, err := record.FromSettings(settings)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode settings")
	}

	st.Fields[FieldArmed] = structpb.NewBoolValue(s.service.Armed())
	st.Fields[FieldPending] = structpb.NewListValue(timesToList(s.service.Pending()))

	if next := s.service.NextWake(); !next.IsZero() {
		st.Fields[FieldNextWake] = structpb.NewStringValue(next.Format(time.RFC3339))
	}

	return st, nil
}

// toStatusError maps domain errors to gRPC codes.
func toStatusError(err error, internalMessage string) error {
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrInvalidRule):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, internalMessage)
	}
}

func timesToList(times []time.Time) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(times))
	for _, t := range times {
		values = append(values, structpb.NewStringValue(t.Format(time.RFC3339)))
	}

	return &structpb.ListValue{Values: values}
}

// Status is the decoded response of the settings methods.
type Status struct {
	// Settings are the persisted settings.
	Settings *domain.Settings
	// Armed reports whether triggers are armed.
	Armed bool
	// Pending lists the armed instants.
	Pending []time.Time
	// NextWake is the next background catch-up run; zero when none is registered.
	NextWake time.Time
}

// DecodeStatus decodes a settings response.
func DecodeStatus(st *structpb.Struct) (*Status, error) {
	settings, err := record.ToSettings(st)
	if err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}

	pending, err := ListToTimes(st.GetFields()[FieldPending].GetListValue())
	if err != nil {
		return nil, err
	}

	result := &Status{
		Settings: settings,
		Armed:    st.GetFields()[FieldArmed].GetBoolValue(),
		Pending:  pending,
	}

	if v, ok := st.GetFields()[FieldNextWake]; ok {
		if result.NextWake, err = time.Parse(time.RFC3339, v.GetStringValue()); err != nil {
			return nil, fmt.Errorf("decode next wake: %w", err)
		}
	}

	return result, nil
}

// ListToTimes decodes a list of RFC 3339 strings.
func ListToTimes(list *structpb.ListValue) ([]time.Time, error) {
	result := make([]time.Time, 0, len(list.GetValues()))

	for _, v := range list.GetValues() {
		t, err := time.Parse(time.RFC3339, v.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("decode instant: %w", err)
		}

		result = append(result, t)
	}

	return result, nil
}
