// Package fixture loads the read-only JSON fixtures (recognition tasks and
// catalog items) and serves them from memory in file order.
package fixture
