// Package webhook delivers best-effort completion notifications to
// client-supplied callback URLs.
//
// Delivery runs detached from the request and from the completion job that
// triggered it. Failures are logged and counted, never retried, and never
// reported back to the emitter.
package webhook
