// Package postgres provides the PostgreSQL implementation of
// store.SubmissionStore, together with connection setup and the embedded
// goose migrations that create its schema.
package postgres
