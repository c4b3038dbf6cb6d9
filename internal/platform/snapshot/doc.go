// Package snapshot provides a file-backed implementation of
// store.SubmissionStore. The whole collection lives in memory and every
// mutation rewrites the JSON snapshot file atomically.
package snapshot
