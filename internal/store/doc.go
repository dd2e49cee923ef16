// Package store is the sqlite persistence layer for the local library cache:
// song rows with optional hydrated binary content, plus a singleton state row
// tracking the last-synced remote index.
package store
