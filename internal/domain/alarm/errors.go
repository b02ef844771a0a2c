package alarm

import "errors"

var (
	// ErrInvalidRule is returned when a recurrence rule violates its invariants.
	ErrInvalidRule = errors.New("invalid recurrence rule")
	// ErrPermissionDenied is returned when notifications are not allowed,
	// so alarms cannot be enabled.
	ErrPermissionDenied = errors.New("notification permission denied")
	// ErrUnsupportedCapability is returned when a presenter or wake mechanism
	// is not available on this system.
	ErrUnsupportedCapability = errors.New("capability not supported")
	// ErrPersistenceCorrupt is returned when stored settings cannot be decoded.
	ErrPersistenceCorrupt = errors.New("persisted settings are corrupt")
	// ErrDeliveryFailure is returned when a presenter rejects a notification.
	ErrDeliveryFailure = errors.New("notification delivery failed")
)
