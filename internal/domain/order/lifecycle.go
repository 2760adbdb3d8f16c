// internal/domain/order/lifecycle.go
package order

// transitions is the operator lifecycle. Delivered and cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPacked, OrderStatusCancelled},
	OrderStatusPacked:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable from s
func (s OrderStatus) NextStatuses() []OrderStatus {
	next := transitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}
