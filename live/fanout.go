package live

// Notifier is anything that accepts restaurant events.
type Notifier interface {
	Notify(restaurantID, event string, data interface{})
}

// Fanout forwards every event to each notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(restaurantID, event string, data interface{}) {
	for _, n := range f {
		n.Notify(restaurantID, event, data)
	}
}
