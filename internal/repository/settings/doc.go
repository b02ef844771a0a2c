// Package settings implements persistence for the alarm Settings.
//
// Two backends satisfy the Repository interface: FileRepository keeps the
// settings as a JSON file and BadgerRepository keeps the same JSON record
// under a fixed key in a Badger key-value store. Both report ErrNotFound
// before the first save and alarm.ErrPersistenceCorrupt for records that
// cannot be decoded.
package settings
