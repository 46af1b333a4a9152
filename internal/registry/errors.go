package registry

import (
	"errors"
)

var (
	// ErrValidation - required connection fields missing or malformed
	ErrValidation = errors.New("registry: connection name, database kind and connection string are required")

	// ErrUnsupportedKind - database kind outside the supported set
	ErrUnsupportedKind = errors.New("registry: unsupported database kind")

	// ErrConnectFailed - handshake to the external database failed
	ErrConnectFailed = errors.New("registry: failed to connect to database")

	// ErrNotFound - no record for the requested connection
	ErrNotFound = errors.New("registry: connection not found")

	// ErrUnauthorized - record exists but belongs to another owner
	ErrUnauthorized = errors.New("registry: connection owned by another user")

	// ErrConnectionClosed - record was explicitly closed; a new Create is required
	ErrConnectionClosed = errors.New("registry: connection has been closed")
)
