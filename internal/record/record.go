package record

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
)

// Field names of the settings record.
const (
	FieldStartHour = "startHour"
	FieldEndHour   = "endHour"
	FieldInterval  = "intervalMin"
	FieldDays      = "days"
	FieldEnabled   = "enabled"
	FieldUpdatedAt = "updatedAt"
	FieldUpdatedBy = "updatedBy"
)

var (
	// errMissingField is returned when a required record field is absent.
	errMissingField = errors.New("missing field")
	// errNotInteger is returned when a numeric field has a fractional part.
	errNotInteger = errors.New("value is not an integer")
	// errWrongKind is returned when a field has an unexpected JSON type.
	errWrongKind = errors.New("unexpected value type")
)

// FromSettings builds the record for the given settings.
func FromSettings(s *alarm.Settings) (*structpb.Struct, error) {
	if s == nil {
		s = alarm.DefaultSettings()
	}

	fields := RuleFields(s.Rule)
	fields[FieldEnabled] = s.Enabled

	if !s.UpdatedAt.IsZero() {
		fields[FieldUpdatedAt] = s.UpdatedAt.Format(time.RFC3339Nano)
	}

	if s.UpdatedBy != nil {
		fields[FieldUpdatedBy] = s.UpdatedBy.String()
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build settings record: %w", err)
	}

	return st, nil
}

// RuleFields returns the rule part of the record as a plain map.
func RuleFields(rule *alarm.Rule) map[string]any {
	if rule == nil {
		rule = alarm.DefaultRule()
	}

	days := make([]any, 0, len(rule.Days))
	for _, day := range rule.Days {
		days = append(days, int(day))
	}

	return map[string]any{
		FieldStartHour: rule.StartHour,
		FieldEndHour:   rule.EndHour,
		FieldInterval:  rule.IntervalMinutes,
		FieldDays:      days,
	}
}

// ToSettings decodes a record. The rule fields are required and validated;
// enabled defaults to false and the audit fields are optional.
func ToSettings(st *structpb.Struct) (*alarm.Settings, error) {
	rule, err := ToRule(st)
	if err != nil {
		return nil, err
	}

	settings := &alarm.Settings{Rule: rule}
	fields := st.GetFields()

	if v, ok := fields[FieldEnabled]; ok {
		b, isBool := v.GetKind().(*structpb.Value_BoolValue)
		if !isBool {
			return nil, fmt.Errorf("%s: %w", FieldEnabled, errWrongKind)
		}

		settings.Enabled = b.BoolValue
	}

	if v, ok := fields[FieldUpdatedAt]; ok && v.GetStringValue() != "" {
		ts, err := time.Parse(time.RFC3339Nano, v.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", FieldUpdatedAt, err)
		}

		settings.UpdatedAt = ts
	}

	if v, ok := fields[FieldUpdatedBy]; ok && v.GetStringValue() != "" {
		settings.UpdatedBy = ParseActor(v.GetStringValue())
	}

	return settings, nil
}

// ToRule decodes and validates the rule fields of a record.
func ToRule(st *structpb.Struct) (*alarm.Rule, error) {
	fields := st.GetFields()

	startHour, err := intField(fields, FieldStartHour)
	if err != nil {
		return nil, err
	}

	endHour, err := intField(fields, FieldEndHour)
	if err != nil {
		return nil, err
	}

	interval, err := intField(fields, FieldInterval)
	if err != nil {
		return nil, err
	}

	daysValue, ok := fields[FieldDays]
	if !ok {
		return nil, fmt.Errorf("%s: %w", FieldDays, errMissingField)
	}

	list := daysValue.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%s: %w", FieldDays, errWrongKind)
	}

	rule := &alarm.Rule{
		Days:            make([]time.Weekday, 0, len(list.GetValues())),
		StartHour:       startHour,
		EndHour:         endHour,
		IntervalMinutes: interval,
	}

	for _, v := range list.GetValues() {
		day, err := toInt(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", FieldDays, err)
		}

		rule.Days = append(rule.Days, time.Weekday(day))
	}

	rule.Normalize()

	if err := rule.Validate(); err != nil {
		return nil, err
	}

	return rule, nil
}

// Marshal encodes settings as JSON.
func Marshal(s *alarm.Settings) ([]byte, error) {
	st, err := FromSettings(s)
	if err != nil {
		return nil, err
	}

	data, err := protojson.MarshalOptions{Multiline: true}.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	return data, nil
}

// Unmarshal decodes JSON settings. Every failure wraps alarm.ErrPersistenceCorrupt.
func Unmarshal(data []byte) (*alarm.Settings, error) {
	var st structpb.Struct
	if err := protojson.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %w", alarm.ErrPersistenceCorrupt, err)
	}

	settings, err := ToSettings(&st)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", alarm.ErrPersistenceCorrupt, err)
	}

	return settings, nil
}

// ParseActor parses "username@hostname". A value without "@" is a username.
func ParseActor(s string) *alarm.Actor {
	username, hostname, _ := strings.Cut(s, "@")

	return &alarm.Actor{
		Hostname: hostname,
		Username: username,
	}
}

func intField(fields map[string]*structpb.Value, name string) (int, error) {
	v, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, errMissingField)
	}

	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	return n, nil
}

func toInt(v *structpb.Value) (int, error) {
	number, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, errWrongKind
	}

	if number.NumberValue != math.Trunc(number.NumberValue) {
		return 0, errNotInteger
	}

	return int(number.NumberValue), nil
}
