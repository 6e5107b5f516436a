package order

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending          Status = "pending"
	StatusConfirmed        Status = "confirmed"
	StatusProcessing       Status = "processing"
	StatusReadyForDelivery Status = "ready_for_delivery"
	StatusOutForDelivery   Status = "out_for_delivery"
	StatusDelivered        Status = "delivered"
	StatusCancelled        Status = "cancelled"
	StatusRefunded         Status = "refunded"
)

var transitions = map[Status][]Status{
	StatusPending:          {StatusConfirmed, StatusCancelled},
	StatusConfirmed:        {StatusProcessing, StatusCancelled},
	StatusProcessing:       {StatusReadyForDelivery, StatusCancelled},
	StatusReadyForDelivery: {StatusOutForDelivery},
	StatusOutForDelivery:   {StatusDelivered, StatusReadyForDelivery},
	StatusDelivered:        {StatusRefunded},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusReadyForDelivery,
		StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether target directly follows s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable from s in one step.
func (s Status) NextStatuses() []Status {
	return append([]Status(nil), transitions[s]...)
}

// IsTerminal reports whether no further transition exists.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CountsAsRevenue reports whether orders in this status contribute to sales figures.
func (s Status) CountsAsRevenue() bool {
	return s != StatusCancelled && s != StatusRefunded
}

// PaymentStatus tracks money received for an order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod is how the customer chose to pay.
type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodCOD    PaymentMethod = "cod"
)

// IsValid reports whether m is a supported method.
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodStripe || m == PaymentMethodCOD
}
