// Package store defines interfaces for data persistence operations.
// These interfaces abstract the fixture registry and the submission
// collection from the application's core logic, so the lifecycle rules stay
// independent of whether submissions live in a snapshot file or a database.
package store
