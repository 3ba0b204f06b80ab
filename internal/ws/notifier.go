// Package ws fans out realtime events to live-dashboard connections.
package ws

// Notifier delivers events to connected dashboard viewers and to individual
// users. Delivery is best-effort and fire-and-forget: implementations never
// block the caller and never report failure. A disconnected subscriber simply
// misses the event until the next full refresh.
type Notifier interface {
	BroadcastToDashboards(event string, payload interface{})
	SendToUser(userID string, event string, payload interface{})
}

// NoopNotifier drops every event. Used in tests and headless wiring.
type NoopNotifier struct{}

func (NoopNotifier) BroadcastToDashboards(event string, payload interface{}) {}

func (NoopNotifier) SendToUser(userID string, event string, payload interface{}) {}
