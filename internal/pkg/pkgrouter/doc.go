// Package pkgrouter wraps HTTP routing and common middleware used by the API.
//
// It provides a small router abstraction over httprouter plus shared concerns
// like JSON encoding and binding, error mapping, logging, recovery, requester
// identification and correlation ID propagation.
package pkgrouter
