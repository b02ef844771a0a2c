// Package store keeps the current alarm settings in memory on top of a
// settings repository. Loading never fails: missing or corrupt records fall
// back to the defaults.
package store
