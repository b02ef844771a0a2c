// Package record converts alarm Settings to and from the flat settings
// record shared by the settings repositories and the gRPC control API.
//
// The record is a protobuf Struct, so on disk it is plain JSON produced by
// protojson: {"startHour":10,"endHour":18,"intervalMin":20,"days":[0,1,2,3,4],
// "enabled":true}, plus the optional audit fields updatedAt and updatedBy.
package record
