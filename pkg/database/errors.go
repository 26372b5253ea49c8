package database

import "errors"

// Database configuration errors
var (
	ErrInvalidDatabasePath = errors.New("invalid database path")
	ErrInvalidRetention    = errors.New("invalid activity retention")
)

// Database operation errors
var (
	ErrDatabaseNotConnected = errors.New("database not connected")
	ErrInvalidActivity      = errors.New("activity has no id")
)
