// Package repository fetches rectangular result sets from the messaging
// product's MySQL database. Repositories are read-only: the insights
// service never writes back to the store. Sentinel errors shared across
// repositories live here so handlers can map them to HTTP statuses.
package repository

import "errors"

// ErrUserNotFound is returned when a user row does not exist. Handlers
// translate this into an HTTP 404 response.
var ErrUserNotFound = errors.New("user not found")
