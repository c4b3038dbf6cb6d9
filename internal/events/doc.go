// Package events provides a small in-process publish/subscribe mechanism.
//
// Producers such as the completion scheduler emit events describing what
// happened to a submission without knowing who listens. Handlers such as the
// webhook notifier subscribe to the emitter and react to the events they care
// about.
package events
