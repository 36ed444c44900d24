package services

// Live update events emitted after committed state changes.
const (
	EventQueueJoined    = "queue_joined"
	EventTableAllocated = "table_allocated"
	EventQueueArchived  = "queue_archived"
	EventPlanUpdated    = "plan_updated"
)

// Notifier delivers change events to whoever subscribed to a restaurant.
type Notifier interface {
	Notify(restaurantID, event string, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, interface{}) {}

func orNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
