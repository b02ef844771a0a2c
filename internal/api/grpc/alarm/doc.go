// Package alarm implements the gRPC transport for the alarm service.
//
// The service is described by hand on top of the well-known protobuf types:
// settings travel as a Struct in the same shape as the persisted record,
// lists of instants as a ListValue of RFC 3339 strings. The caller identity
// is carried in request metadata.
package alarm
