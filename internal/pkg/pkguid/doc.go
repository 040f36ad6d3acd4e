// Package pkguid provides helpers for generating unique identifiers.
//
// Correlation and event IDs are UUIDv7 strings; batch and history IDs are
// Snowflake numbers so they sort by creation time.
package pkguid
