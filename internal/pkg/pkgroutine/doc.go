// Package pkgroutine contains helpers for running goroutines safely.
//
// The Manager type limits concurrency, collects returned errors, logs panics
// and runs periodic background jobs such as the Fluig session renewal.
package pkgroutine
