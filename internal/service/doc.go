// Package service contains the application use cases of the image-recognition
// mock: listing tasks and catalog items, accepting image submissions and
// looking up their results.
//
// Services depend only on the store interfaces and on small scheduling
// interfaces, never on a concrete backend, so the snapshot and postgres
// stores are interchangeable behind them.
//
// Error handling:
//   - Expected conditions surface as store sentinels (store.ErrTaskNotFound,
//     store.ErrSubmissionNotFound) that callers check with errors.Is
//   - Unexpected failures are wrapped in SubmissionServiceError
//   - The API layer maps both to HTTP status codes
package service
