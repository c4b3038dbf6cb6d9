// Package auth verifies request credentials: the shared API key sent in the
// x-api-key header, and optional HS256 bearer tokens minted with the same
// deployment secret.
package auth
