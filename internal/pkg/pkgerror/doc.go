// Package pkgerror carries application errors from the use cases to the HTTP
// edge.
//
// An Error holds a user-facing message, a Type and a Code; the router turns the
// Code into a status. Validation errors may list one message per field, and
// CodeUpstream marks a failure reported by Fluig. ErrNotFound is the sentinel
// for missing records.
package pkgerror
